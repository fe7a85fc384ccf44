package testutil

import (
	"strconv"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/types"
)

// Token IDs are decimal strings because orders encode them as uint256.
const (
	TestConditionID = "0xcondition"
	TestYesTokenID  = "1001"
	TestNoTokenID   = "1002"
)

// CreateTestTrade creates a detected trade event on the YES token.
func CreateTestTrade(id string, side types.Side, size float64, price float64) types.TradeEvent {
	return types.TradeEvent{
		ID:         id,
		MarketID:   TestConditionID,
		TokenID:    TestYesTokenID,
		Side:       side,
		Size:       size,
		Price:      price,
		USDCSize:   size * price,
		DetectedAt: time.Now(),
	}
}

// CreateTestPosition creates a position on the test condition.
func CreateTestPosition(tokenID string, size float64, price float64) types.Position {
	return types.Position{
		TokenID:      tokenID,
		ConditionID:  TestConditionID,
		Size:         size,
		AvgPrice:     price,
		CurPrice:     price,
		CurrentValue: size * price,
	}
}

// CreateTestMarketInfo creates a binary market with the given fees and minimum size.
func CreateTestMarketInfo(makerFeeBps float64, takerFeeBps float64, minSize float64) *types.MarketInfo {
	tick := 0.01
	return &types.MarketInfo{
		ConditionID:      TestConditionID,
		Question:         "Test market",
		Active:           true,
		AcceptingOrders:  true,
		MakerBaseFee:     &makerFeeBps,
		TakerBaseFee:     &takerFeeBps,
		MinimumOrderSize: &minSize,
		MinimumTickSize:  &tick,
		Tokens: []types.MarketToken{
			{TokenID: TestYesTokenID, Outcome: "Yes", Price: 0.5},
			{TokenID: TestNoTokenID, Outcome: "No", Price: 0.5},
		},
	}
}

// CreateTestBook creates a one-level book around bid and ask.
func CreateTestBook(tokenID string, bid float64, ask float64, size float64) *types.OrderBook {
	level := func(p float64) []types.PriceLevel {
		if p <= 0 {
			return []types.PriceLevel{}
		}
		return []types.PriceLevel{{
			Price: strconv.FormatFloat(p, 'f', -1, 64),
			Size:  strconv.FormatFloat(size, 'f', -1, 64),
		}}
	}

	return &types.OrderBook{
		Market:  TestConditionID,
		AssetID: tokenID,
		Bids:    level(bid),
		Asks:    level(ask),
	}
}
