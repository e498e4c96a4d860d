package tradegate

import "time"

// AccountSummary is the account's money view.
type AccountSummary struct {
	Name         string  `json:"name"`
	Cash         float64 `json:"cash"`
	Settlement   float64 `json:"settlement"`
	TotalBalance float64 `json:"total_balance"`
}

// Order is one order snapshot as reported by the gateway.
type Order struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	FilledQty float64   `json:"filled_qty"`
	Status    string    `json:"status"`
	Condition string    `json:"condition"`
	Time      time.Time `json:"time"`
}

// Position is one holding in board-lot units.
type Position struct {
	Symbol    string  `json:"symbol"`
	Quantity  float64 `json:"quantity"`
	Condition string  `json:"condition"`
}

// Quote is a normalized intraday quote.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	BidPrice  float64 `json:"bid_price"`
	BidVolume float64 `json:"bid_volume"`
	AskPrice  float64 `json:"ask_price"`
	AskVolume float64 `json:"ask_volume"`
}

// PriceInfo is the daily reference-price snapshot for one symbol.
type PriceInfo struct {
	Symbol    string  `json:"symbol"`
	Close     float64 `json:"close"`
	LimitUp   float64 `json:"limit_up"`
	LimitDown float64 `json:"limit_down"`
}

// OrderSnapshot is one journaled observation of an order's state.
type OrderSnapshot struct {
	Account    string    `json:"account"`
	RecordedAt time.Time `json:"recorded_at"`
	Order      Order     `json:"order"`
}

// OrderRequest describes an order to place.
type OrderRequest struct {
	Symbol         string  `json:"symbol"`
	Side           string  `json:"side"`
	Quantity       float64 `json:"quantity"`
	Price          float64 `json:"price"`
	MarketOrder    bool    `json:"market_order"`
	BestPriceLimit bool    `json:"best_price_limit"`
	OddLot         bool    `json:"odd_lot"`
	Condition      string  `json:"condition"`
}

// OrderUpdate carries the mutation axes for an open order. A nil field
// leaves that axis untouched.
type OrderUpdate struct {
	Price    *float64 `json:"price"`
	Quantity *float64 `json:"quantity"`
}
