package types

// OrderBook is the CLOB GET /book payload.
type OrderBook struct {
	Market    string       `json:"market"`
	AssetID   string       `json:"asset_id"`
	Hash      string       `json:"hash,omitempty"`
	Timestamp string       `json:"timestamp,omitempty"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
}

// PriceLevel represents a single price level in the orderbook.
type PriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// Level is a validated price level: both fields are finite and positive.
type Level struct {
	Price float64
	Size  float64
}
