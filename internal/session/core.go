package session

import (
	"context"
	"sync"
	"time"

	"github.com/fekuna/omnipos-cart-service/internal/cart"
	"github.com/fekuna/omnipos-cart-service/internal/inventory"
	"github.com/fekuna/omnipos-cart-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-cart-service/internal/loyalty"
	"github.com/fekuna/omnipos-cart-service/internal/model"
	"github.com/fekuna/omnipos-cart-service/internal/pricing"
	"github.com/fekuna/omnipos-cart-service/internal/promotion"
	"github.com/fekuna/omnipos-cart-service/pkg/logger"
	"go.uber.org/zap"
)

// CartLineView is a cart line resolved against the live catalog.
type CartLineView struct {
	ProductID     string
	Name          string
	Quantity      int
	UnitPrice     int64
	OriginalPrice int64
	LineTotal     int64
	Badge         model.Badge
}

type Summary struct {
	Lines   []CartLineView
	Pricing pricing.Breakdown
	Points  loyalty.Breakdown
	Notices []model.StockNotice
}

type Deps struct {
	Ledger            inventory.UseCase
	Cart              cart.UseCase
	Pricing           *pricing.Engine
	Loyalty           *loyalty.Engine
	Logger            logger.ZapLogger
	LowStockThreshold int
	Now               func() time.Time
}

// Core is the single point through which user actions and scheduler ticks
// reach the catalog and the cart. Every step runs to completion under one
// lock, so a promotion can never land between a stock check and the cart
// mutation it guards.
type Core struct {
	mu      sync.Mutex
	ledger  inventory.UseCase
	cart    cart.UseCase
	pricing *pricing.Engine
	loyalty *loyalty.Engine
	logger  logger.ZapLogger
	now     func() time.Time

	lowStockThreshold int

	obsMu     sync.RWMutex
	observers map[uint64]promotion.Observer
	nextObsID uint64
}

func NewCore(d Deps) *Core {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	threshold := d.LowStockThreshold
	if threshold <= 0 {
		threshold = 5
	}
	return &Core{
		ledger:            d.Ledger,
		cart:              d.Cart,
		pricing:           d.Pricing,
		loyalty:           d.Loyalty,
		logger:            d.Logger,
		now:               now,
		lowStockThreshold: threshold,
		observers:         make(map[uint64]promotion.Observer),
	}
}

// Dispatch runs fn with exclusive access to the session state.
func (c *Core) Dispatch(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

func (c *Core) CatalogSnapshot() []model.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.ListProducts()
}

func (c *Core) CartSnapshot() []CartLineView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cartViewLocked()
}

func (c *Core) AddOne(ctx context.Context, productID string) (model.CartLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, err := c.cart.AddOne(ctx, productID)
	if err != nil {
		c.logger.Info("add rejected", zap.String("product_id", productID), zap.Error(err))
		return line, err
	}
	return line, nil
}

func (c *Core) ChangeQuantity(ctx context.Context, productID string, delta int) (model.CartLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, err := c.cart.ChangeQuantity(ctx, productID, delta)
	if err != nil {
		c.logger.Info("quantity change rejected",
			zap.String("product_id", productID),
			zap.Int("delta", delta),
			zap.Error(err),
		)
		return line, err
	}
	return line, nil
}

func (c *Core) RemoveLine(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.RemoveLine(ctx, productID)
}

func (c *Core) ComputePricing() pricing.Breakdown {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pricing.Compute(c.itemsLocked(), c.now())
}

func (c *Core) ComputePoints(b pricing.Breakdown) loyalty.Breakdown {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loyalty.Compute(c.cart.Lines(), b, c.now())
}

// Summary computes lines, pricing, points and stock notices from one
// consistent view of the session.
func (c *Core) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	priced := c.pricing.Compute(c.itemsLocked(), now)
	return Summary{
		Lines:   c.cartViewLocked(),
		Pricing: priced,
		Points:  c.loyalty.Compute(c.cart.Lines(), priced, now),
		Notices: c.ledger.ListLowStock(c.lowStockThreshold),
	}
}

func (c *Core) StockNotices() []model.StockNotice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.ListLowStock(c.lowStockThreshold)
}

func (c *Core) Movements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.ListMovements(ctx, filters)
}

// Subscribe registers o for promotion events. The returned func removes it.
func (c *Core) Subscribe(o promotion.Observer) func() {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()

	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = o

	var once sync.Once
	return func() {
		once.Do(func() {
			c.obsMu.Lock()
			defer c.obsMu.Unlock()
			delete(c.observers, id)
		})
	}
}

func (c *Core) SubscriberCount() int {
	c.obsMu.RLock()
	defer c.obsMu.RUnlock()
	return len(c.observers)
}

// Notify fans ev out to every subscriber. It must not be called from inside
// Dispatch: observers are free to read the session back.
func (c *Core) Notify(ctx context.Context, ev promotion.Event) {
	c.obsMu.RLock()
	observers := make([]promotion.Observer, 0, len(c.observers))
	for _, o := range c.observers {
		observers = append(observers, o)
	}
	c.obsMu.RUnlock()

	for _, o := range observers {
		o.OnPromotion(ctx, ev)
	}
}

func (c *Core) itemsLocked() []pricing.Item {
	lines := c.cart.Lines()
	items := make([]pricing.Item, 0, len(lines))
	for _, l := range lines {
		p, err := c.ledger.GetProduct(l.ProductID)
		if err != nil {
			c.logger.Error("cart line references unknown product", zap.String("product_id", l.ProductID))
			continue
		}
		items = append(items, pricing.Item{ProductID: p.ID, UnitPrice: p.CurrentPrice, Quantity: l.Quantity})
	}
	return items
}

func (c *Core) cartViewLocked() []CartLineView {
	lines := c.cart.Lines()
	views := make([]CartLineView, 0, len(lines))
	for _, l := range lines {
		p, err := c.ledger.GetProduct(l.ProductID)
		if err != nil {
			continue
		}
		views = append(views, CartLineView{
			ProductID:     p.ID,
			Name:          p.Name,
			Quantity:      l.Quantity,
			UnitPrice:     p.CurrentPrice,
			OriginalPrice: p.OriginalPrice,
			LineTotal:     p.CurrentPrice * int64(l.Quantity),
			Badge:         p.Badge(),
		})
	}
	return views
}
