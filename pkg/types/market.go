package types

// MarketInfo is the subset of the CLOB GET /markets/{condition_id} payload used for sizing orders.
// Numeric fields are pointers so that absent values can be told apart from zero.
type MarketInfo struct {
	ConditionID      string        `json:"condition_id"`
	Question         string        `json:"question"`
	MarketSlug       string        `json:"market_slug"`
	Active           bool          `json:"active"`
	Closed           bool          `json:"closed"`
	AcceptingOrders  bool          `json:"accepting_orders"`
	MakerBaseFee     *float64      `json:"maker_base_fee"`
	TakerBaseFee     *float64      `json:"taker_base_fee"`
	MinimumOrderSize *float64      `json:"minimum_order_size"`
	MinOrderSize     *float64      `json:"min_order_size"` // older payloads
	MinimumTickSize  *float64      `json:"minimum_tick_size"`
	NegRisk          bool          `json:"neg_risk"`
	Tokens           []MarketToken `json:"tokens"`
}

// MarketToken is one outcome token of a market.
type MarketToken struct {
	TokenID string  `json:"token_id"`
	Outcome string  `json:"outcome"`
	Price   float64 `json:"price"`
}

// MarketMetadata holds the fee schedule and order constraints of a market.
type MarketMetadata struct {
	MakerFeeBps  float64
	TakerFeeBps  float64
	MinOrderSize float64
	TickSize     float64
	NegRisk      bool
	Fallback     bool // true when any field came from DefaultMarketMetadata
}

// DefaultMarketMetadata is used when the market lookup fails.
func DefaultMarketMetadata() MarketMetadata {
	return MarketMetadata{
		MakerFeeBps:  0,
		TakerFeeBps:  0,
		MinOrderSize: 1,
		TickSize:     0.01,
		Fallback:     true,
	}
}
