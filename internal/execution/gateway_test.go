package execution

import (
	"context"
	"fmt"
	"sync"

	"github.com/mselser95/polymarket-mirror/internal/exposure"
	"github.com/mselser95/polymarket-mirror/pkg/retry"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"github.com/polymarket/go-order-utils/pkg/model"
	"go.uber.org/zap"
)

// fakeGateway records every call. Posts without a queued response fill in full.
type fakeGateway struct {
	mu sync.Mutex

	buildErrs []error
	postErrs  []error
	responses []*types.OrderSubmissionResponse
	orders    map[string]*types.OrderQueryResponse
	getErr    error

	built      []types.OrderRequest
	orderTypes []types.OrderType
	canceled   []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{orders: make(map[string]*types.OrderQueryResponse)}
}

func (g *fakeGateway) BuildOrder(ctx context.Context, req types.OrderRequest) (*model.SignedOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.buildErrs) > 0 {
		err := g.buildErrs[0]
		g.buildErrs = g.buildErrs[1:]
		return nil, err
	}
	g.built = append(g.built, req)
	return &model.SignedOrder{}, nil
}

func (g *fakeGateway) PostOrder(
	ctx context.Context,
	order *model.SignedOrder,
	orderType types.OrderType,
) (*types.OrderSubmissionResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.orderTypes = append(g.orderTypes, orderType)
	if len(g.postErrs) > 0 {
		err := g.postErrs[0]
		g.postErrs = g.postErrs[1:]
		return nil, err
	}
	if len(g.responses) > 0 {
		resp := g.responses[0]
		g.responses = g.responses[1:]
		return resp, nil
	}
	return &types.OrderSubmissionResponse{
		Success: true,
		OrderID: fmt.Sprintf("order-%d", len(g.orderTypes)),
		Status:  types.OrderStatusMatched,
	}, nil
}

func (g *fakeGateway) CancelOrder(ctx context.Context, orderID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.canceled = append(g.canceled, orderID)
	return nil
}

func (g *fakeGateway) GetOrder(ctx context.Context, orderID string) (*types.OrderQueryResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.getErr != nil {
		return nil, g.getErr
	}
	order, ok := g.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("get order: %s not found", orderID)
	}
	snapshot := *order
	return &snapshot, nil
}

func (g *fakeGateway) posts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.orderTypes)
}

func newTestSubmitter(g *fakeGateway, ledger *exposure.Ledger) *Submitter {
	return NewSubmitter(&SubmitterConfig{
		Gateway:     g,
		Exposure:    ledger,
		BuildPolicy: retry.Fixed(3, 0),
		CallPolicy:  retry.Fixed(3, 0),
		Logger:      zap.NewNop(),
	})
}
