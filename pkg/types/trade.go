package types

import "time"

// Side is the direction of a trade or order.
type Side string

// Order sides as used by the CLOB API.
const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType is the CLOB time-in-force of an order.
type OrderType string

// Supported order types.
const (
	OrderTypeGTC OrderType = "GTC" // resting maker order
	OrderTypeFAK OrderType = "FAK" // fill-and-kill, partial fills allowed
	OrderTypeFOK OrderType = "FOK"
)

// TradeEvent is a trade of the target trader, detected upstream and stored in the trade ledger.
type TradeEvent struct {
	ID         string    `json:"id"`
	MarketID   string    `json:"marketId"` // condition id
	TokenID    string    `json:"tokenId"`  // asset id
	Side       Side      `json:"side"`
	Size       float64   `json:"size"`
	Price      float64   `json:"price"`
	USDCSize   float64   `json:"usdcSize"`
	DetectedAt time.Time `json:"detectedAt"`
	Processed  bool      `json:"processed"`
	RetryCount int       `json:"retryCount"`
}

// Position is a holding reported by the data API /positions endpoint.
type Position struct {
	TokenID      string  `json:"asset"`
	ConditionID  string  `json:"conditionId"`
	Size         float64 `json:"size"`
	AvgPrice     float64 `json:"avgPrice"`
	CurPrice     float64 `json:"curPrice"`
	CurrentValue float64 `json:"currentValue"`
	Outcome      string  `json:"outcome"`
	Title        string  `json:"title"`
}

// OrderRequest describes one submission attempt. It is never reused once submitted.
type OrderRequest struct {
	AttemptID        string
	Side             Side
	TokenID          string
	Shares           float64
	Price            float64
	FeeBps           float64 // signed into the order
	FeeMultiplier    float64 // applied to the cost in the balance check, 0 derives it from FeeBps
	OrderType        OrderType
	NegRisk          bool
	AvailableBalance float64 // checked for BUY orders only
}

// Fill is the outcome of one submission attempt.
type Fill struct {
	Shares  float64
	OrderID string
	Resting bool // order accepted but still on the book
}
