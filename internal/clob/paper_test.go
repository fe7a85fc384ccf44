package clob

import (
	"context"
	"testing"

	"github.com/mselser95/polymarket-mirror/pkg/retry"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperClient_RestingOrderNeverFills(t *testing.T) {
	paper, err := NewPaperClient(NewClient(&Config{BaseURL: "http://unused", HTTPPolicy: retry.Fixed(1, 0)}))
	require.NoError(t, err)

	order, err := paper.BuildOrder(context.Background(), types.OrderRequest{
		Side: types.SideBuy, TokenID: "42", Shares: 10, Price: 0.49,
	})
	require.NoError(t, err)

	resp, err := paper.PostOrder(context.Background(), order, types.OrderTypeGTC)
	require.NoError(t, err)
	assert.Equal(t, types.OrderStatusLive, resp.Status)

	require.NoError(t, paper.CancelOrder(context.Background(), resp.OrderID))

	status, err := paper.GetOrder(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, status.SizeFilled)
	assert.Equal(t, 10.0, status.Size)
	assert.Equal(t, types.OrderStatusCanceled, status.Status)
}

func TestPaperClient_ForgetsSettledOrders(t *testing.T) {
	paper, err := NewPaperClient(NewClient(&Config{BaseURL: "http://unused", HTTPPolicy: retry.Fixed(1, 0)}))
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		order, buildErr := paper.BuildOrder(ctx, types.OrderRequest{
			Side: types.SideBuy, TokenID: "42", Shares: 10, Price: 0.49,
		})
		require.NoError(t, buildErr)

		resp, postErr := paper.PostOrder(ctx, order, types.OrderTypeGTC)
		require.NoError(t, postErr)
		require.Equal(t, 1, paper.RestingOrders())

		live, getErr := paper.GetOrder(ctx, resp.OrderID)
		require.NoError(t, getErr)
		assert.Equal(t, types.OrderStatusLive, live.Status)
		assert.Equal(t, 1, paper.RestingOrders(), "live orders stay tracked")

		require.NoError(t, paper.CancelOrder(ctx, resp.OrderID))
		_, getErr = paper.GetOrder(ctx, resp.OrderID)
		require.NoError(t, getErr)
		assert.Equal(t, 0, paper.RestingOrders())
	}
}

func TestPaperClient_ImmediateOrderFills(t *testing.T) {
	paper, err := NewPaperClient(NewClient(&Config{BaseURL: "http://unused", HTTPPolicy: retry.Fixed(1, 0)}))
	require.NoError(t, err)

	order, err := paper.BuildOrder(context.Background(), types.OrderRequest{
		Side: types.SideSell, TokenID: "42", Shares: 4, Price: 0.5,
	})
	require.NoError(t, err)

	resp, err := paper.PostOrder(context.Background(), order, types.OrderTypeFAK)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, types.OrderStatusMatched, resp.Status)
	assert.Equal(t, "4.000000", resp.MakingAmount)
	assert.Equal(t, "2.000000", resp.TakingAmount)
}

func TestPaperClient_UnknownOrder(t *testing.T) {
	paper, err := NewPaperClient(NewClient(&Config{BaseURL: "http://unused"}))
	require.NoError(t, err)

	_, err = paper.GetOrder(context.Background(), "missing")
	require.Error(t, err)
	require.Error(t, paper.CancelOrder(context.Background(), "missing"))
}
