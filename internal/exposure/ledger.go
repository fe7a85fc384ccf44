// Package exposure tracks the shares the follower has acquired during this session.
package exposure

import (
	"sync"

	"github.com/mselser95/polymarket-mirror/pkg/types"
)

// Ledger maps token ids to cumulative net filled shares. Buys add, sells subtract and a
// balance never goes below zero. Safe for concurrent use.
type Ledger struct {
	mu     sync.RWMutex
	shares map[string]float64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		shares: make(map[string]float64),
	}
}

// Apply records a fill and returns the new balance of tokenID.
func (l *Ledger) Apply(tokenID string, side types.Side, shares float64) float64 {
	if shares <= 0 {
		return l.Get(tokenID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.shares[tokenID]
	switch side {
	case types.SideBuy:
		current += shares
	case types.SideSell:
		current -= shares
	}
	if current < 0 {
		current = 0
	}
	l.shares[tokenID] = current

	ExposureShares.WithLabelValues(tokenID).Set(current)
	return current
}

// Get returns the exposure of tokenID, 0 when unknown.
func (l *Ledger) Get(tokenID string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.shares[tokenID]
}

// Seed overwrites the exposure of tokenID, e.g. from a persisted snapshot.
func (l *Ledger) Seed(tokenID string, shares float64) {
	if shares < 0 {
		shares = 0
	}

	l.mu.Lock()
	l.shares[tokenID] = shares
	l.mu.Unlock()

	ExposureShares.WithLabelValues(tokenID).Set(shares)
}

// Snapshot returns a copy of all balances.
func (l *Ledger) Snapshot() map[string]float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]float64, len(l.shares))
	for tokenID, shares := range l.shares {
		out[tokenID] = shares
	}
	return out
}
