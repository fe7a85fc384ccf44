package clob

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"github.com/polymarket/go-order-utils/pkg/model"
	"go.uber.org/zap"
)

// PaperClient reads markets and books from the live API but never sends orders.
// Resting orders are recorded and never fill; immediate orders fill in full.
type PaperClient struct {
	*Client

	mu      sync.Mutex
	resting map[string]*types.OrderQueryResponse
}

// NewPaperClient wraps a read-only client with an ephemeral signing key so that orders
// are still built and signed exactly as in live mode.
func NewPaperClient(reader *Client) (*PaperClient, error) {
	if reader.signer == nil {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("generate paper key: %w", err)
		}
		reader.signer = newSignerFromKey(key, "", int(model.EOA))
	}

	return &PaperClient{
		Client:  reader,
		resting: make(map[string]*types.OrderQueryResponse),
	}, nil
}

// PostOrder simulates submission.
func (p *PaperClient) PostOrder(
	ctx context.Context,
	order *model.SignedOrder,
	orderType types.OrderType,
) (*types.OrderSubmissionResponse, error) {
	orderID := "paper-" + uuid.New().String()
	side := types.SideBuy
	if order.Side.Uint64() == uint64(model.SELL) {
		side = types.SideSell
	}

	p.logger.Info("paper-order-submitted",
		zap.String("order-id", orderID),
		zap.String("side", string(side)),
		zap.String("token-id", order.TokenId.String()),
		zap.String("order-type", string(orderType)),
		zap.String("maker-amount", order.MakerAmount.String()),
		zap.String("taker-amount", order.TakerAmount.String()))

	if orderType == types.OrderTypeGTC {
		p.mu.Lock()
		p.resting[orderID] = &types.OrderQueryResponse{
			OrderID:    orderID,
			Status:     types.OrderStatusLive,
			TokenID:    order.TokenId.String(),
			Side:       string(side),
			Size:       sharesOf(order, side),
			SizeFilled: 0,
			OrderType:  string(orderType),
		}
		p.mu.Unlock()

		return &types.OrderSubmissionResponse{
			Success: true,
			OrderID: orderID,
			Status:  types.OrderStatusLive,
		}, nil
	}

	return &types.OrderSubmissionResponse{
		Success:      true,
		OrderID:      orderID,
		Status:       types.OrderStatusMatched,
		MakingAmount: rawToDecimal(order.MakerAmount),
		TakingAmount: rawToDecimal(order.TakerAmount),
	}, nil
}

// CancelOrder drops a simulated resting order.
func (p *PaperClient) CancelOrder(ctx context.Context, orderID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.resting[orderID]
	if !ok {
		return fmt.Errorf("cancel order: unknown paper order %s", orderID)
	}
	order.Status = types.OrderStatusCanceled

	return nil
}

// GetOrder returns a simulated resting order. A cancelled order is forgotten once read.
func (p *PaperClient) GetOrder(ctx context.Context, orderID string) (*types.OrderQueryResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.resting[orderID]
	if !ok {
		return nil, fmt.Errorf("get order: unknown paper order %s", orderID)
	}
	if order.Status == types.OrderStatusCanceled {
		delete(p.resting, orderID)
	}

	snapshot := *order
	return &snapshot, nil
}

// RestingOrders returns how many simulated orders are still tracked.
func (p *PaperClient) RestingOrders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.resting)
}

func sharesOf(order *model.SignedOrder, side types.Side) float64 {
	raw := order.TakerAmount
	if side == types.SideSell {
		raw = order.MakerAmount
	}
	value, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), big.NewFloat(1e6)).Float64()
	return value
}

func rawToDecimal(raw *big.Int) string {
	return new(big.Float).Quo(new(big.Float).SetInt(raw), big.NewFloat(1e6)).Text('f', 6)
}
