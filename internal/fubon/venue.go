// Package fubon implements the canonical account interface for the Fubon
// securities venue. It normalizes the venue's loosely shaped payloads into
// the domain types, recomputes order lifecycle state from snapshots, and
// handles the venue's split between the board-lot and odd-lot books.
package fubon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Venue enums (wire values used by the trading API)
// ---------------------------------------------------------------------------

// BSAction is the venue's order direction.
type BSAction string

// Order directions.
const (
	BSBuy  BSAction = "Buy"
	BSSell BSAction = "Sell"
)

// MarketType selects the book and session an order targets.
type MarketType string

// Market types. IntradayOdd is the continuous odd-lot book, Odd the
// after-hours odd-lot session, Fixing the closing call auction, EmgOdd the
// emergency odd-lot session the venue occasionally reports.
const (
	MarketCommon      MarketType = "Common"
	MarketIntradayOdd MarketType = "IntradayOdd"
	MarketOdd         MarketType = "Odd"
	MarketFixing      MarketType = "Fixing"
	MarketEmgOdd      MarketType = "EmgOdd"
)

// oddLotMarket reports whether the market type denotes one of the odd-lot
// books.
func oddLotMarket(mt MarketType) bool {
	return mt == MarketIntradayOdd || mt == MarketOdd || mt == MarketEmgOdd
}

// PriceType is the venue's price resolution mode.
type PriceType string

// Price types. LimitUp and LimitDown peg the order to the daily price band.
const (
	PriceLimit     PriceType = "Limit"
	PriceMarket    PriceType = "Market"
	PriceLimitUp   PriceType = "LimitUp"
	PriceLimitDown PriceType = "LimitDown"
)

// TimeInForce is the venue's order lifetime policy.
type TimeInForce string

// TimeInForceROD (rest of day) is the only policy this adapter submits.
const TimeInForceROD TimeInForce = "ROD"

// OrderType is the venue's financing condition.
type OrderType string

// Financing conditions.
const (
	OrderTypeStock    OrderType = "Stock"
	OrderTypeMargin   OrderType = "Margin"
	OrderTypeShort    OrderType = "Short"
	OrderTypeDayTrade OrderType = "DayTrade"
)

// Order status codes as reported on order snapshots.
const (
	statusCodeAccepted  = 10
	statusCodeCancelled = 30
	statusCodeFilled    = 50
	statusCodeFailed    = 90
)

// ---------------------------------------------------------------------------
// Outbound order ticket
// ---------------------------------------------------------------------------

// Ticket is one fully resolved order submission. Quantity is in the native
// units of the selected book (shares for odd-lot markets, shares in
// board-lot multiples otherwise). An empty Price means no explicit limit.
type Ticket struct {
	BuySell     BSAction    `json:"buy_sell"`
	Symbol      string      `json:"symbol"`
	Price       string      `json:"price,omitempty"`
	Quantity    int         `json:"quantity"`
	MarketType  MarketType  `json:"market_type"`
	PriceType   PriceType   `json:"price_type"`
	TimeInForce TimeInForce `json:"time_in_force"`
	OrderType   OrderType   `json:"order_type"`
}

// ---------------------------------------------------------------------------
// Response envelope
// ---------------------------------------------------------------------------

// Reply is the venue's response envelope. Data holds the payload records;
// single-object payloads arrive as a one-element slice.
type Reply struct {
	OK      bool
	Message string
	Data    []Record
}

// First returns the first payload record, or a zero Record when the reply
// carried none.
func (r *Reply) First() Record {
	if r == nil || len(r.Data) == 0 {
		return Record{}
	}
	return r.Data[0]
}

// Succeeded reports whether the reply exists and the venue flagged success.
func (r *Reply) Succeeded() bool {
	return r != nil && r.OK
}

// replyErr folds a transport error and a venue-level failure into one error,
// or nil when the call succeeded.
func replyErr(r *Reply, err error) error {
	if err != nil {
		return err
	}
	if r == nil {
		return errors.New("no reply from venue")
	}
	if !r.OK {
		if r.Message != "" {
			return errors.New(r.Message)
		}
		return errors.New("venue reported failure")
	}
	return nil
}

// UnmarshalJSON decodes the venue envelope, accepting both a single object
// and an array for the data field.
func (r *Reply) UnmarshalJSON(b []byte) error {
	var raw struct {
		IsSuccess bool            `json:"is_success"`
		Message   string          `json:"message"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	r.OK = raw.IsSuccess
	r.Message = raw.Message
	r.Data = nil

	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil
	}

	switch raw.Data[0] {
	case '[':
		var maps []map[string]any
		if err := json.Unmarshal(raw.Data, &maps); err != nil {
			return fmt.Errorf("decoding reply data array: %w", err)
		}
		r.Data = make([]Record, 0, len(maps))
		for _, m := range maps {
			r.Data = append(r.Data, RecordFromMap(m))
		}
	case '{':
		var m map[string]any
		if err := json.Unmarshal(raw.Data, &m); err != nil {
			return fmt.Errorf("decoding reply data object: %w", err)
		}
		r.Data = []Record{RecordFromMap(m)}
	default:
		return fmt.Errorf("unexpected reply data payload: %s", raw.Data)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Venue session boundary
// ---------------------------------------------------------------------------

// Trading is the order entry and mutation surface of a venue session.
// Mutations take the raw order record from the snapshot being mutated; the
// venue matches on it.
type Trading interface {
	OrderResults(ctx context.Context) (*Reply, error)
	PlaceOrder(ctx context.Context, t Ticket) (*Reply, error)
	ModifyPrice(ctx context.Context, raw Record, price string) (*Reply, error)
	ModifyQuantity(ctx context.Context, raw Record, quantity int) (*Reply, error)
	CancelOrder(ctx context.Context, raw Record) (*Reply, error)
}

// Accounting is the account-state surface of a venue session.
type Accounting interface {
	BankRemain(ctx context.Context) (*Reply, error)
	Inventories(ctx context.Context) (*Reply, error)
	InventoryDetails(ctx context.Context, positionID, symbol string) (*Reply, error)
	QuerySettlement(ctx context.Context, window string) (*Reply, error)
	RealizedPnLDetail(ctx context.Context, start, end string) (*Reply, error)
	AccountInfo(ctx context.Context) (Record, error)
}

// MarketData is the quote surface of a venue session.
type MarketData interface {
	IntradayQuote(ctx context.Context, symbol string) (Record, error)
}

// Session is one authenticated venue connection. Implementations serialize
// calls as the venue requires; the account layer does not add locking around
// session calls.
type Session interface {
	Trading
	Accounting
	MarketData

	// Close logs the session out and releases the connection.
	Close() error
}
