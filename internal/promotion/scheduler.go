package promotion

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/fekuna/omnipos-cart-service/internal/inventory"
	"github.com/fekuna/omnipos-cart-service/internal/model"
	"github.com/fekuna/omnipos-cart-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Config struct {
	FlashMaxDelay   time.Duration
	FlashInterval   time.Duration
	FlashRate       decimal.Decimal
	SuggestMaxDelay time.Duration
	SuggestInterval time.Duration
	SuggestRate     decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		FlashMaxDelay:   10 * time.Second,
		FlashInterval:   30 * time.Second,
		FlashRate:       decimal.RequireFromString("0.8"),
		SuggestMaxDelay: 20 * time.Second,
		SuggestInterval: 60 * time.Second,
		SuggestRate:     decimal.RequireFromString("0.95"),
	}
}

// CartView is the part of the cart the suggestion sale reads.
type CartView interface {
	IsEmpty() bool
	LastSelected() string
}

// Dispatcher runs fn with exclusive access to the catalog and the cart.
type Dispatcher func(fn func())

// Notifier receives an event after the mutation that produced it completed.
type Notifier func(ctx context.Context, ev Event)

type Option func(*Scheduler)

// WithRandom replaces the source used for delays and flash-sale picks.
func WithRandom(r *rand.Rand) Option {
	return func(s *Scheduler) { s.rng = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler runs the flash sale and the suggestion sale. Each has a random
// initial delay followed by a fixed period.
type Scheduler struct {
	cfg      Config
	catalog  inventory.Repository
	cart     CartView
	dispatch Dispatcher
	notify   Notifier
	logger   logger.ZapLogger
	rng      *rand.Rand
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(cfg Config, catalog inventory.Repository, cart CartView, dispatch Dispatcher, notify Notifier, log logger.ZapLogger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:      cfg,
		catalog:  catalog,
		cart:     cart,
		dispatch: dispatch,
		notify:   notify,
		logger:   log,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches both processes. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	flashDelay := s.randomDelay(s.cfg.FlashMaxDelay)
	suggestDelay := s.randomDelay(s.cfg.SuggestMaxDelay)

	s.logger.Info("promotion scheduler started",
		zap.Duration("flash_delay", flashDelay),
		zap.Duration("suggest_delay", suggestDelay),
	)

	s.wg.Add(2)
	go s.run(ctx, flashDelay, s.cfg.FlashInterval, s.FlashSaleTick)
	go s.run(ctx, suggestDelay, s.cfg.SuggestInterval, s.SuggestionTick)
}

// Stop clears the pending delay timers and the recurring tickers of both
// processes and waits for any in-flight tick. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("promotion scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, delay, period time.Duration, tick func(context.Context) (Event, bool)) {
	defer s.wg.Done()

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	tick(ctx)
	if period <= 0 {
		return
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// FlashSaleTick picks one product at random. A sold-out or already flashed
// pick ends the tick without trying another product.
func (s *Scheduler) FlashSaleTick(ctx context.Context) (Event, bool) {
	var (
		ev    Event
		fired bool
	)
	s.dispatch(func() {
		products := s.catalog.FindAll()
		if len(products) == 0 {
			return
		}
		p := products[s.rng.IntN(len(products))]
		if p.Stock == 0 || p.OnFlashSale {
			s.logger.Debug("flash sale skipped", zap.String("product_id", p.ID))
			return
		}
		p.CurrentPrice = scale(p.OriginalPrice, s.cfg.FlashRate)
		p.OnFlashSale = true
		ev = s.newEvent(KindFlashSale, p, fmt.Sprintf("flash sale on %s", p.Name))
		fired = true
	})
	if fired {
		s.notify(ctx, ev)
	}
	return ev, fired
}

// SuggestionTick discounts the first catalog product, other than the last
// selected one, that is in stock and not yet suggested.
func (s *Scheduler) SuggestionTick(ctx context.Context) (Event, bool) {
	var (
		ev    Event
		fired bool
	)
	s.dispatch(func() {
		last := s.cart.LastSelected()
		if s.cart.IsEmpty() || last == "" {
			return
		}
		for _, p := range s.catalog.FindAll() {
			if p.ID == last || p.Stock == 0 || p.OnSuggestedSale {
				continue
			}
			p.CurrentPrice = scale(p.CurrentPrice, s.cfg.SuggestRate)
			p.OnSuggestedSale = true
			ev = s.newEvent(KindSuggestion, p, fmt.Sprintf("suggested product %s", p.Name))
			fired = true
			return
		}
	})
	if fired {
		s.notify(ctx, ev)
	}
	return ev, fired
}

func (s *Scheduler) newEvent(kind Kind, p *model.Product, msg string) Event {
	return Event{
		ID:          uuid.New().String(),
		Kind:        kind,
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       p.CurrentPrice,
		Message:     msg,
		OccurredAt:  s.now(),
	}
}

func (s *Scheduler) randomDelay(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(s.rng.Int64N(int64(max)))
}

// scale rounds half away from zero, which for prices is half up.
func scale(price int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(price).Mul(rate).Round(0).IntPart()
}
