package execution

import (
	"context"
	"testing"

	"github.com/mselser95/polymarket-mirror/internal/exposure"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(g *fakeGateway, ledger *exposure.Ledger) *Router {
	return NewRouter(newTestSubmitter(g, ledger), 0, zap.NewNop())
}

func routeBuy(shares float64) RouteRequest {
	return RouteRequest{
		Side:             types.SideBuy,
		TokenID:          "tok",
		Shares:           shares,
		BestPrice:        0.55,
		MinSize:          1,
		FeeMultiplier:    1,
		AvailableBalance: 100,
	}
}

func TestRouter_MakerFills(t *testing.T) {
	g := newFakeGateway()
	r := newTestRouter(g, exposure.NewLedger())

	filled := r.Route(context.Background(), routeBuy(10))

	assert.Equal(t, 10.0, filled)
	assert.Equal(t, []types.OrderType{types.OrderTypeGTC}, g.orderTypes)
	require.Len(t, g.built, 1)
	assert.InDelta(t, 0.54, g.built[0].Price, 1e-9)
}

func TestRouter_SellMakerPricedAboveBid(t *testing.T) {
	g := newFakeGateway()
	r := newTestRouter(g, exposure.NewLedger())

	req := routeBuy(10)
	req.Side = types.SideSell
	req.BestPrice = 0.40

	r.Route(context.Background(), req)

	require.Len(t, g.built, 1)
	assert.InDelta(t, 0.41, g.built[0].Price, 1e-9)
}

func TestRouter_RestingMakerFallsBackToOneTaker(t *testing.T) {
	g := newFakeGateway()
	g.responses = []*types.OrderSubmissionResponse{
		{Success: true, OrderID: "maker-1", Status: types.OrderStatusLive},
		{Success: true, OrderID: "taker-1", Status: types.OrderStatusMatched, TakingAmount: "6"},
	}
	g.orders["maker-1"] = &types.OrderQueryResponse{OrderID: "maker-1", SizeFilled: 0}
	ledger := exposure.NewLedger()
	r := newTestRouter(g, ledger)

	filled := r.Route(context.Background(), routeBuy(10))

	assert.Equal(t, 6.0, filled)
	assert.Equal(t, []types.OrderType{types.OrderTypeGTC, types.OrderTypeFAK}, g.orderTypes)
	assert.Equal(t, []string{"maker-1"}, g.canceled)
	require.Len(t, g.built, 2)
	assert.InDelta(t, 0.55, g.built[1].Price, 1e-9)
	assert.Equal(t, 6.0, ledger.Get("tok"))
}

func TestRouter_RestingMakerPartialFill(t *testing.T) {
	g := newFakeGateway()
	g.responses = []*types.OrderSubmissionResponse{
		{Success: true, OrderID: "maker-1", Status: types.OrderStatusLive},
	}
	g.orders["maker-1"] = &types.OrderQueryResponse{OrderID: "maker-1", SizeFilled: 3}
	ledger := exposure.NewLedger()
	r := newTestRouter(g, ledger)

	filled := r.Route(context.Background(), routeBuy(10))

	assert.Equal(t, 3.0, filled)
	assert.Equal(t, 1, g.posts(), "no taker after a partial maker fill")
	assert.Equal(t, 3.0, ledger.Get("tok"))
}

func TestRouter_RejectedMakerFallsBackToTaker(t *testing.T) {
	g := newFakeGateway()
	g.responses = []*types.OrderSubmissionResponse{
		{Success: false, ErrorMsg: "INVALID_ORDER_MIN_TICK_SIZE"},
	}
	r := newTestRouter(g, exposure.NewLedger())

	filled := r.Route(context.Background(), routeBuy(10))

	assert.Equal(t, 10.0, filled)
	assert.Equal(t, []types.OrderType{types.OrderTypeGTC, types.OrderTypeFAK}, g.orderTypes)
	assert.Empty(t, g.canceled)
}

func TestRouter_TakerUnfilled(t *testing.T) {
	g := newFakeGateway()
	g.responses = []*types.OrderSubmissionResponse{
		{Success: true, OrderID: "maker-1", Status: types.OrderStatusLive},
		{Success: true, OrderID: "taker-1", Status: types.OrderStatusUnmatched},
	}
	g.orders["maker-1"] = &types.OrderQueryResponse{OrderID: "maker-1"}
	r := newTestRouter(g, exposure.NewLedger())

	filled := r.Route(context.Background(), routeBuy(10))

	assert.Zero(t, filled)
	assert.Equal(t, 2, g.posts(), "exactly one taker attempt")
}

func TestRouter_BelowMinimumGoesStraightToTaker(t *testing.T) {
	g := newFakeGateway()
	r := newTestRouter(g, exposure.NewLedger())

	req := routeBuy(0.5)
	req.MinSize = 5

	filled := r.Route(context.Background(), req)

	assert.Equal(t, 0.5, filled)
	assert.Equal(t, []types.OrderType{types.OrderTypeFAK}, g.orderTypes)
}
