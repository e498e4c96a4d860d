// Package account defines the canonical account interface that every venue
// adapter implements, plus the request types and validation errors shared
// across venues.
package account

import (
	"context"
	"errors"
	"time"

	"tradegate/internal/domain"
)

// Validation errors. These are the only errors the order paths raise; they
// are returned before any venue call is made. Venue-side failures are logged
// and degrade to safe zero results instead.
var (
	// ErrInvalidQuantity is returned when an order quantity is not positive.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrEmptySymbol is returned when no instrument is named.
	ErrEmptySymbol = errors.New("symbol must not be empty")

	// ErrConflictingPriceMode is returned when both market-order and
	// best-price-limit resolution are requested for the same order.
	ErrConflictingPriceMode = errors.New("market_order and best_price_limit are mutually exclusive")

	// ErrPriceRequired is returned when a plain limit order carries no price.
	ErrPriceRequired = errors.New("limit order requires a price")

	// ErrOrderNotFound is returned when a mutation names an order id that is
	// not in the current open-order snapshot.
	ErrOrderNotFound = errors.New("order not found")

	// ErrNothingToUpdate is returned when an update names neither a new
	// price nor a new quantity.
	ErrNothingToUpdate = errors.New("update requires a price or a quantity")
)

// OrderRequest describes one order to be placed.
//
// Quantity follows the book being addressed: lots for board-lot orders,
// shares when OddLot is set. A plain limit order (neither mode flag set)
// must carry a positive price.
type OrderRequest struct {
	Side           domain.OrderSide
	Symbol         string
	Quantity       float64
	Price          float64
	MarketOrder    bool
	BestPriceLimit bool
	OddLot         bool
	Condition      domain.Condition
}

// Validate checks the request invariants that must hold before any venue
// call. It returns the first violated one.
func (r OrderRequest) Validate() error {
	if r.Symbol == "" {
		return ErrEmptySymbol
	}
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.MarketOrder && r.BestPriceLimit {
		return ErrConflictingPriceMode
	}
	if !r.MarketOrder && !r.BestPriceLimit && r.Price <= 0 {
		return ErrPriceRequired
	}
	return nil
}

// OrderUpdate carries the mutation axes for an open order. A nil field
// leaves that axis untouched. When both are set, the price axis is applied
// first, then the quantity axis.
type OrderUpdate struct {
	Price    *float64
	Quantity *float64
}

// Empty reports whether the update names no axis at all.
func (u OrderUpdate) Empty() bool { return u.Price == nil && u.Quantity == nil }

// Account abstracts one brokerage account.
//
// Read methods never return errors: any venue or payload fault is logged and
// degrades to a zero value or an empty collection, so a flaky venue cannot
// take down a caller that is only observing state. Order methods return
// errors for validation faults only; once a request passes validation,
// venue-side failures are logged and reported through the zero result.
type Account interface {
	// Name returns the venue identifier (e.g. "fubon", "alpaca").
	Name() string

	// GetCash returns the available cash balance.
	GetCash(ctx context.Context) float64

	// GetOrders returns today's order snapshots keyed by order id.
	GetOrders(ctx context.Context) map[string]domain.Order

	// GetStocks returns normalized intraday quotes keyed by symbol. Symbols
	// the venue cannot quote are absent from the result; a quote whose
	// payload shape is unreadable appears zero-valued instead.
	GetStocks(ctx context.Context, symbols []string) map[string]domain.Quote

	// GetPosition returns current holdings in board-lot units. Whole-lot and
	// odd-lot holdings of the same symbol appear as separate entries.
	GetPosition(ctx context.Context) []domain.Position

	// GetSettlement returns the unsettled amount still owed to or by the
	// account.
	GetSettlement(ctx context.Context) float64

	// GetTotalBalance returns the account's aggregate value: cash, pending
	// settlement, and the marked value of every financing bucket.
	GetTotalBalance(ctx context.Context) float64

	// GetTrades returns the filled trades whose trade date falls inside
	// [start, end], as canonical filled orders.
	GetTrades(ctx context.Context, start, end time.Time) []domain.Order

	// CreateOrder validates and places an order. It returns the venue order
	// id, or an empty id when the venue rejected the order.
	CreateOrder(ctx context.Context, req OrderRequest) (string, error)

	// UpdateOrder changes the price or quantity of an open order. The venue
	// legs are best-effort; only validation faults are returned.
	UpdateOrder(ctx context.Context, orderID string, upd OrderUpdate) error

	// CancelOrder cancels an open order by id.
	CancelOrder(ctx context.Context, orderID string) error

	// SupportDayTrade reports whether the account may open day-trade
	// positions.
	SupportDayTrade(ctx context.Context) bool

	// SeparateOddLot reports whether odd lots trade on a separate book from
	// whole lots at this venue.
	SeparateOddLot() bool

	// GetPriceInfo returns the daily reference prices (close and price
	// limits) for the given symbols.
	GetPriceInfo(ctx context.Context, symbols []string) map[string]domain.PriceInfo
}
