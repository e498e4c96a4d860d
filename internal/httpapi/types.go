// Package httpapi provides the HTTP ops API over a venue account: balances,
// positions, orders and trades in JSON, plus the order mutation endpoints.
package httpapi

import (
	"tradegate/internal/domain"
	"tradegate/internal/journal"
)

// SummaryResponse reports the account's money view.
type SummaryResponse struct {
	Name         string  `json:"name"`
	Cash         float64 `json:"cash"`
	Settlement   float64 `json:"settlement"`
	TotalBalance float64 `json:"total_balance"`
}

// PositionsResponse lists current holdings.
type PositionsResponse struct {
	Positions []domain.Position `json:"positions"`
}

// OrdersResponse lists today's order snapshots, oldest first.
type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// HistoryResponse lists journaled order snapshots, oldest first.
type HistoryResponse struct {
	Snapshots []journal.Snapshot `json:"snapshots"`
}

// QuotesResponse maps symbol to its normalized intraday quote.
type QuotesResponse struct {
	Quotes map[string]domain.Quote `json:"quotes"`
}

// PricesResponse maps symbol to its daily reference prices.
type PricesResponse struct {
	Prices map[string]domain.PriceInfo `json:"prices"`
}

// TradesResponse lists fills for the requested window.
type TradesResponse struct {
	Trades []domain.Order `json:"trades"`
}

// CreateOrderRequest is the POST /api/orders body.
type CreateOrderRequest struct {
	Symbol         string  `json:"symbol"`
	Side           string  `json:"side"`
	Quantity       float64 `json:"quantity"`
	Price          float64 `json:"price"`
	MarketOrder    bool    `json:"market_order"`
	BestPriceLimit bool    `json:"best_price_limit"`
	OddLot         bool    `json:"odd_lot"`
	Condition      string  `json:"condition"`
}

// CreateOrderResponse carries the venue order id of a placed order.
type CreateOrderResponse struct {
	OrderID string `json:"order_id"`
}

// UpdateOrderRequest is the PATCH /api/orders/{id} body. A null field
// leaves that axis untouched.
type UpdateOrderRequest struct {
	Price    *float64 `json:"price"`
	Quantity *float64 `json:"quantity"`
}
