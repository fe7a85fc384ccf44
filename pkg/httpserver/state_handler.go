package httpserver

import (
	"net/http"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/mselser95/polymarket-mirror/internal/circuitbreaker"
	"go.uber.org/zap"
)

// ExposureSource returns the session exposure per token.
type ExposureSource interface {
	Snapshot() map[string]float64
}

// BreakerSource returns the balance circuit breaker status.
type BreakerSource interface {
	GetStatus() circuitbreaker.Status
}

// StateHandler serves the in-memory mirroring state.
type StateHandler struct {
	exposure ExposureSource
	breaker  BreakerSource
	logger   *zap.Logger
}

// NewStateHandler creates a new state handler.
func NewStateHandler(exposure ExposureSource, breaker BreakerSource, logger *zap.Logger) *StateHandler {
	return &StateHandler{
		exposure: exposure,
		breaker:  breaker,
		logger:   logger,
	}
}

// TokenExposure is the session exposure of one token.
type TokenExposure struct {
	TokenID string  `json:"token_id"`
	Shares  float64 `json:"shares"`
}

// ExposureResponse represents the HTTP response for /api/exposure.
type ExposureResponse struct {
	Tokens      []TokenExposure `json:"tokens"`
	TotalShares float64         `json:"total_shares"`
}

// HandleExposure handles GET /api/exposure. Tokens are sorted by id.
func (h *StateHandler) HandleExposure(w http.ResponseWriter, r *http.Request) {
	snapshot := h.exposure.Snapshot()

	resp := ExposureResponse{Tokens: make([]TokenExposure, 0, len(snapshot))}
	for tokenID, shares := range snapshot {
		resp.Tokens = append(resp.Tokens, TokenExposure{TokenID: tokenID, Shares: shares})
		resp.TotalShares += shares
	}
	sort.Slice(resp.Tokens, func(i, j int) bool {
		return resp.Tokens[i].TokenID < resp.Tokens[j].TokenID
	})

	h.writeJSON(w, resp)
}

// HandleBreaker handles GET /api/breaker.
func (h *StateHandler) HandleBreaker(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.breaker.GetStatus())
}

func (h *StateHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		h.logger.Error("encode-response-failed", zap.Error(err))
	}
}
