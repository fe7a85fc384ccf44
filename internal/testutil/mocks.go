package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/mselser95/polymarket-mirror/pkg/types"
)

// MockCLOBAPI is a mock HTTP server that serves the read-only CLOB endpoints
// (GET /markets/{condition_id} and GET /book?token_id=).
type MockCLOBAPI struct {
	*httptest.Server
	Markets map[string]*types.MarketInfo
	Books   map[string]*types.OrderBook

	mu       sync.RWMutex
	requests map[string]int
}

// NewMockCLOBAPI creates a new mock CLOB API server.
func NewMockCLOBAPI() *MockCLOBAPI {
	mock := &MockCLOBAPI{
		Markets:  make(map[string]*types.MarketInfo),
		Books:    make(map[string]*types.OrderBook),
		requests: make(map[string]int),
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests[r.URL.Path]++
		mock.mu.Unlock()

		mock.mu.RLock()
		defer mock.mu.RUnlock()

		switch {
		case r.URL.Path == "/book":
			book, ok := mock.Books[r.URL.Query().Get("token_id")]
			if !ok {
				http.Error(w, `{"error":"No orderbook exists for the requested token id"}`, http.StatusNotFound)
				return
			}
			writeJSON(w, book)
		case strings.HasPrefix(r.URL.Path, "/markets/"):
			market, ok := mock.Markets[strings.TrimPrefix(r.URL.Path, "/markets/")]
			if !ok {
				http.NotFound(w, r)
				return
			}
			writeJSON(w, market)
		default:
			http.NotFound(w, r)
		}
	})

	mock.Server = httptest.NewServer(handler)
	return mock
}

// SetBook replaces the book served for tokenID.
func (m *MockCLOBAPI) SetBook(tokenID string, book *types.OrderBook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Books[tokenID] = book
}

// SetMarket replaces the market served for conditionID.
func (m *MockCLOBAPI) SetMarket(conditionID string, market *types.MarketInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Markets[conditionID] = market
}

// Requests returns how many times path was requested.
func (m *MockCLOBAPI) Requests(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[path]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// MockBalanceOracle is an in-memory balance oracle keyed by address.
type MockBalanceOracle struct {
	Balances     map[string]float64
	PositionsMap map[string][]types.Position
	BalanceErr   error
	PositionsErr error

	mu           sync.Mutex
	balanceCalls int
}

// NewMockBalanceOracle creates a new mock balance oracle.
func NewMockBalanceOracle() *MockBalanceOracle {
	return &MockBalanceOracle{
		Balances:     make(map[string]float64),
		PositionsMap: make(map[string][]types.Position),
	}
}

// SetBalance sets the USDC balance returned for address.
func (m *MockBalanceOracle) SetBalance(address string, balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Balances[address] = balance
}

// SetPositions sets the positions returned for address.
func (m *MockBalanceOracle) SetPositions(address string, positions ...types.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PositionsMap[address] = positions
}

// SetBalanceError makes USDCBalance fail with err until cleared with nil.
func (m *MockBalanceOracle) SetBalanceError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BalanceErr = err
}

// USDCBalance returns the configured balance.
func (m *MockBalanceOracle) USDCBalance(ctx context.Context, address string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balanceCalls++
	if m.BalanceErr != nil {
		return 0, m.BalanceErr
	}
	return m.Balances[address], nil
}

// Positions returns a copy of the configured positions.
func (m *MockBalanceOracle) Positions(ctx context.Context, address string) ([]types.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PositionsErr != nil {
		return nil, m.PositionsErr
	}
	result := make([]types.Position, len(m.PositionsMap[address]))
	copy(result, m.PositionsMap[address])
	return result, nil
}

// BalanceCalls returns how many times USDCBalance was called.
func (m *MockBalanceOracle) BalanceCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balanceCalls
}
