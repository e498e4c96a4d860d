// Package domain defines the canonical, venue-neutral types that every
// account adapter normalizes into and every consumer reads from.
package domain

import "time"

// Market identifies a trading venue's market.
type Market string

// Supported markets.
const (
	MarketTW Market = "tw"
	MarketUS Market = "us"
)

// OrderSide is the direction of an order.
type OrderSide string

// Order sides.
const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Condition is the financing condition an order or position trades under.
type Condition string

// Trade conditions.
const (
	ConditionCash     Condition = "cash"
	ConditionMargin   Condition = "margin"
	ConditionShort    Condition = "short"
	ConditionDayTrade Condition = "day_trade"
)

// OrderStatus is the canonical lifecycle state of an order. It is always
// recomputed from the latest venue snapshot, never stored venue-side state.
type OrderStatus string

// Order lifecycle states.
const (
	OrderStatusNew             OrderStatus = "new"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// Terminal reports whether the status is a final state that accepts no
// further fills or mutations.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled
}

// Order is the canonical view of one venue order snapshot.
//
// Quantity units follow the venue book the order rests on: board-lot orders
// are denominated in lots, odd-lot orders in shares. Price 0 means the order
// carried no explicit limit (market and best-price intents are resolved to
// venue price types before submission).
type Order struct {
	ID        string      `json:"id"`
	Symbol    string      `json:"symbol"`
	Side      OrderSide   `json:"side"`
	Price     float64     `json:"price"`
	Quantity  float64     `json:"quantity"`
	FilledQty float64     `json:"filled_qty"`
	Status    OrderStatus `json:"status"`
	Condition Condition   `json:"condition"`
	Time      time.Time   `json:"time"`

	// Raw is the original venue record the snapshot was normalized from.
	// Mutation paths hand it back to the venue untouched.
	Raw any `json:"-"`
}

// Quote is a normalized intraday quote. Fields the venue did not report
// are zero, never an error.
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

// Position is one canonical position entry in board-lot units. A symbol may
// appear twice, once for the whole-lot holding and once for the odd-lot
// remainder; the two are never merged. Short holdings carry a negative
// quantity.
type Position struct {
	Symbol    string    `json:"symbol"`
	Quantity  float64   `json:"quantity"`
	Condition Condition `json:"condition"`
}

// PriceInfo is the daily reference-price snapshot for one symbol.
type PriceInfo struct {
	Symbol    string  `json:"symbol"`
	Close     float64 `json:"close"`
	LimitUp   float64 `json:"limit_up"`
	LimitDown float64 `json:"limit_down"`
}
