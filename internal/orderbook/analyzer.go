// Package orderbook reads live order books and picks the price a mirrored order trades against.
package orderbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/numeric"
	"github.com/mselser95/polymarket-mirror/pkg/retry"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

// BookFetcher loads the current order book of a token.
type BookFetcher interface {
	GetOrderBook(ctx context.Context, tokenID string) (*types.OrderBook, error)
}

// Analyzer fetches a fresh book on every call. Books are never cached.
type Analyzer struct {
	fetcher BookFetcher
	policy  retry.Policy
	logger  *zap.Logger
}

// NewAnalyzer creates an analyzer that retries transient fetch failures per policy.
func NewAnalyzer(fetcher BookFetcher, policy retry.Policy, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		fetcher: fetcher,
		policy:  policy,
		logger:  logger,
	}
}

// Quote is the top of a book. Nil sides are empty.
type Quote struct {
	Bid *types.Level
	Ask *types.Level
}

// BestOpposing returns the level a taker on side would trade against: the highest bid when
// selling, the lowest ask when buying. false means there is nothing to trade against and the
// mirror should stop.
func (a *Analyzer) BestOpposing(ctx context.Context, tokenID string, side types.Side) (types.Level, bool) {
	book, err := a.fetch(ctx, tokenID)
	if err != nil {
		reason := "fetch-error"
		if errors.Is(err, types.ErrBookNotFound) {
			reason = "not-found"
		}
		NoLiquidityTotal.WithLabelValues(reason).Inc()
		a.logger.Warn("orderbook-unavailable",
			zap.String("token-id", tokenID),
			zap.String("reason", reason),
			zap.Error(err))
		return types.Level{}, false
	}

	var (
		level   types.Level
		ok      bool
		invalid int
	)
	switch side {
	case types.SideSell:
		level, invalid, ok = BestLevel(book.Bids, true)
	case types.SideBuy:
		level, invalid, ok = BestLevel(book.Asks, false)
	default:
		a.logger.Error("orderbook-unknown-side", zap.String("side", string(side)))
		return types.Level{}, false
	}

	if invalid > 0 {
		InvalidLevelsTotal.Add(float64(invalid))
		a.logger.Debug("orderbook-invalid-levels-dropped",
			zap.String("token-id", tokenID),
			zap.Int("count", invalid))
	}

	if !ok {
		NoLiquidityTotal.WithLabelValues("empty").Inc()
		a.logger.Info("orderbook-empty",
			zap.String("token-id", tokenID),
			zap.String("side", string(side)))
		return types.Level{}, false
	}

	return level, true
}

// Top returns the best bid and ask of tokenID.
func (a *Analyzer) Top(ctx context.Context, tokenID string) (Quote, error) {
	book, err := a.fetch(ctx, tokenID)
	if err != nil {
		return Quote{}, err
	}

	var quote Quote
	if bid, _, ok := BestLevel(book.Bids, true); ok {
		quote.Bid = &bid
	}
	if ask, _, ok := BestLevel(book.Asks, false); ok {
		quote.Ask = &ask
	}

	return quote, nil
}

func (a *Analyzer) fetch(ctx context.Context, tokenID string) (*types.OrderBook, error) {
	start := time.Now()
	book, err := retry.DoValue(ctx, a.policy, func(ctx context.Context) (*types.OrderBook, error) {
		return a.fetcher.GetOrderBook(ctx, tokenID)
	}, retry.IsTransient)
	FetchDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, fmt.Errorf("fetch orderbook %s: %w", tokenID, err)
	}
	if book == nil {
		return nil, fmt.Errorf("fetch orderbook %s: %w", tokenID, types.ErrBookNotFound)
	}

	return book, nil
}

// BestLevel drops levels whose price or size is not a finite positive number and returns the
// highest (or lowest) priced survivor along with the number of dropped levels.
// Levels are scanned in full because the API does not guarantee their order.
func BestLevel(levels []types.PriceLevel, highest bool) (types.Level, int, bool) {
	var (
		best    types.Level
		found   bool
		invalid int
	)

	for _, raw := range levels {
		price, priceOK := numeric.ParsePositive(raw.Price)
		size, sizeOK := numeric.ParsePositive(raw.Size)
		if !priceOK || !sizeOK {
			invalid++
			continue
		}

		better := !found ||
			(highest && price > best.Price) ||
			(!highest && price < best.Price)
		if better {
			best = types.Level{Price: price, Size: size}
			found = true
		}
	}

	return best, invalid, found
}
