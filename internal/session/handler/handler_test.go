package handler

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/fekuna/omnipos-cart-service/internal/auth"
	cartUC "github.com/fekuna/omnipos-cart-service/internal/cart/usecase"
	invRepo "github.com/fekuna/omnipos-cart-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-cart-service/internal/inventory/seed"
	invUC "github.com/fekuna/omnipos-cart-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-cart-service/internal/loyalty"
	"github.com/fekuna/omnipos-cart-service/internal/pricing"
	"github.com/fekuna/omnipos-cart-service/internal/promotion"
	"github.com/fekuna/omnipos-cart-service/internal/session"
	"github.com/fekuna/omnipos-cart-service/pkg/logger"
	"github.com/fekuna/omnipos-cart-service/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

var wednesday = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*CartClient, *session.Core) {
	t.Helper()
	client, core, _ := newTestServerWithHandler(t)
	return client, core
}

func newTestServerWithHandler(t *testing.T) (*CartClient, *session.Core, *CartHandler) {
	t.Helper()
	products, err := seed.Load("")
	require.NoError(t, err)

	log := logger.NewNop()
	repo := invRepo.NewMemoryRepository(products)
	ledger := invUC.NewLedgerUseCase(repo, invRepo.NewMemoryMovementRepository(), log)
	core := session.NewCore(session.Deps{
		Ledger:  ledger,
		Cart:    cartUC.NewCartUseCase(ledger, log),
		Pricing: pricing.NewEngine(pricing.DefaultPolicy()),
		Loyalty: loyalty.NewEngine(loyalty.DefaultPolicy()),
		Logger:  log,
		Now:     func() time.Time { return wednesday },
	})

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(middleware.ContextInterceptor(log)),
		grpc.StreamInterceptor(middleware.StreamContextInterceptor(log)),
	)
	h := NewCartHandler(core, log)
	RegisterCartServiceServer(srv, h)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewCartClient(conn), core, h
}

func withClient(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, auth.ClientIDHeader, "kiosk-1")
}

func TestCartHandler_GetCatalog(t *testing.T) {
	client, _ := newTestServer(t)

	out, err := client.GetCatalog(context.Background())
	require.NoError(t, err)

	products := out.AsMap()["products"].([]any)
	require.Len(t, products, 5)
	first := products[0].(map[string]any)
	assert.Equal(t, "keyboard", first["id"])
	assert.Equal(t, float64(10000), first["price"])
	assert.Equal(t, false, first["sold_out"])
	pouch := products[3].(map[string]any)
	assert.Equal(t, true, pouch["sold_out"])
}

func TestCartHandler_AddAndSummary(t *testing.T) {
	ctx := withClient(context.Background())
	client, _ := newTestServer(t)

	for i := 0; i < 10; i++ {
		_, err := client.AddOne(ctx, "keyboard")
		require.NoError(t, err)
	}

	cart, err := client.GetCart(ctx)
	require.NoError(t, err)
	lines := cart.AsMap()["lines"].([]any)
	require.Len(t, lines, 1)
	assert.Equal(t, float64(10), lines[0].(map[string]any)["quantity"])
	assert.Equal(t, float64(100000), lines[0].(map[string]any)["line_total"])

	out, err := client.GetSummary(ctx)
	require.NoError(t, err)
	summary := out.AsMap()

	priced := summary["pricing"].(map[string]any)
	assert.Equal(t, float64(100000), priced["subtotal"])
	assert.Equal(t, "90000", priced["final_total"])
	assert.Equal(t, "10000", priced["total_savings"])
	assert.Len(t, priced["per_item_discounts"], 1)

	points := summary["points"].(map[string]any)
	assert.Equal(t, float64(90), points["base_points"])
	assert.Equal(t, float64(110), points["total_points"])
	assert.Equal(t, map[string]any{"tier": float64(10), "points": float64(20)}, points["quantity_tier_bonus"])
	assert.Len(t, summary["notices"], 1)
}

func TestCartHandler_ErrorCodes(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)

	_, err := client.AddOne(ctx, "laptop-pouch")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = client.AddOne(ctx, "teapot")
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.AddOne(ctx, "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.ChangeQuantity(ctx, "keyboard", 1)
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.AddOne(ctx, "speaker")
	require.NoError(t, err)
	_, err = client.ChangeQuantity(ctx, "speaker", 10)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	bad, err := structpb.NewStruct(map[string]any{"product_id": "speaker", "delta": 1.5})
	require.NoError(t, err)
	_, err = client.call(ctx, MethodChangeQuantity, bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.ListMovements(ctx, mustStruct(t, map[string]any{"movement_type": "theft"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCartHandler_ChangeQuantityAndRemove(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)

	_, err := client.AddOne(ctx, "mouse")
	require.NoError(t, err)

	out, err := client.ChangeQuantity(ctx, "mouse", 2)
	require.NoError(t, err)
	assert.Equal(t, float64(3), out.AsMap()["line"].(map[string]any)["quantity"])
	assert.Equal(t, false, out.AsMap()["removed"])

	out, err = client.ChangeQuantity(ctx, "mouse", -3)
	require.NoError(t, err)
	assert.Equal(t, true, out.AsMap()["removed"])

	_, err = client.RemoveLine(ctx, "mouse")
	require.NoError(t, err)

	out, err = client.ListMovements(ctx, mustStruct(t, map[string]any{"product_id": "mouse", "page": 1, "page_size": 2}))
	require.NoError(t, err)
	res := out.AsMap()
	assert.Equal(t, float64(3), res["total"])
	movements := res["movements"].([]any)
	require.Len(t, movements, 2)
	newest := movements[0].(map[string]any)
	assert.Equal(t, "release", newest["movement_type"])
	assert.Equal(t, float64(3), newest["quantity_change"])
	assert.Equal(t, float64(30), newest["quantity_after"])
}

func TestCartHandler_WatchPromotions(t *testing.T) {
	client, core := newTestServer(t)

	ctx, cancel := context.WithCancel(withClient(context.Background()))
	defer cancel()

	stream, err := client.WatchPromotions(ctx, string(promotion.KindFlashSale))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return core.SubscriberCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	core.Notify(context.Background(), promotion.Event{
		ID:        "ev-1",
		Kind:      promotion.KindSuggestion,
		ProductID: "mouse",
	})
	core.Notify(context.Background(), promotion.Event{
		ID:          "ev-2",
		Kind:        promotion.KindFlashSale,
		ProductID:   "speaker",
		ProductName: "Lo-Fi Coding Speaker",
		Price:       20000,
		Message:     "flash sale on Lo-Fi Coding Speaker",
		OccurredAt:  wednesday,
	})

	msg, err := stream.Recv()
	require.NoError(t, err)
	ev := msg.AsMap()
	assert.Equal(t, "ev-2", ev["id"], "suggestions are filtered out")
	assert.Equal(t, "flash_sale", ev["kind"])
	assert.Equal(t, float64(20000), ev["price"])
	assert.Equal(t, "2026-10-14T10:00:00Z", ev["occurred_at"])

	cancel()
	require.Eventually(t, func() bool { return core.SubscriberCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestCartHandler_WatchPromotionsRejectsUnknownKind(t *testing.T) {
	client, _ := newTestServer(t)

	stream, err := client.WatchPromotions(context.Background(), "clearance")
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCartHandler_CloseEndsWatchers(t *testing.T) {
	client, core, h := newTestServerWithHandler(t)

	stream, err := client.WatchPromotions(context.Background(), "")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return core.SubscriberCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	h.Close()
	h.Close()
	_, err = stream.Recv()
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Zero(t, core.SubscriberCount())
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}
