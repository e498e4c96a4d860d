package fubon

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

// scriptedSession plays canned replies and records every mutation call.
// Unset replies default to success with no data.
type scriptedSession struct {
	orders    *Reply
	ordersErr error

	placeReply *Reply
	placeErr   error
	placed     []Ticket

	priceReply *Reply
	priceMods  []string // formatted prices, in call order

	qtyReply *Reply
	qtyMods  []int // native quantities, in call order

	cancelReply *Reply
	cancelled   []Record

	bank    *Reply
	bankErr error

	inventories *Reply
	invErr      error
	invCalls    int

	details     map[string]*Reply // keyed by symbol
	detailCalls []string

	settlements map[string]*Reply // keyed by window
	windowCalls []string

	pnl      *Reply
	pnlCalls [][2]string

	quotes   map[string]Record
	quoteErr map[string]error

	info    Record
	infoErr error

	closed bool
}

func okReply(recs ...Record) *Reply {
	return &Reply{OK: true, Data: recs}
}

func failReply(msg string) *Reply {
	return &Reply{OK: false, Message: msg}
}

func rec(fields map[string]any) Record { return RecordFromMap(fields) }

func orDefault(r *Reply) *Reply {
	if r == nil {
		return okReply()
	}
	return r
}

func (s *scriptedSession) OrderResults(context.Context) (*Reply, error) {
	if s.ordersErr != nil {
		return nil, s.ordersErr
	}
	return orDefault(s.orders), nil
}

func (s *scriptedSession) PlaceOrder(_ context.Context, t Ticket) (*Reply, error) {
	s.placed = append(s.placed, t)
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	return orDefault(s.placeReply), nil
}

func (s *scriptedSession) ModifyPrice(_ context.Context, _ Record, price string) (*Reply, error) {
	s.priceMods = append(s.priceMods, price)
	return orDefault(s.priceReply), nil
}

func (s *scriptedSession) ModifyQuantity(_ context.Context, _ Record, quantity int) (*Reply, error) {
	s.qtyMods = append(s.qtyMods, quantity)
	return orDefault(s.qtyReply), nil
}

func (s *scriptedSession) CancelOrder(_ context.Context, raw Record) (*Reply, error) {
	s.cancelled = append(s.cancelled, raw)
	return orDefault(s.cancelReply), nil
}

func (s *scriptedSession) BankRemain(context.Context) (*Reply, error) {
	if s.bankErr != nil {
		return nil, s.bankErr
	}
	return orDefault(s.bank), nil
}

func (s *scriptedSession) Inventories(context.Context) (*Reply, error) {
	s.invCalls++
	if s.invErr != nil {
		return nil, s.invErr
	}
	return orDefault(s.inventories), nil
}

func (s *scriptedSession) InventoryDetails(_ context.Context, _, symbol string) (*Reply, error) {
	s.detailCalls = append(s.detailCalls, symbol)
	if r, ok := s.details[symbol]; ok {
		return r, nil
	}
	return okReply(), nil
}

func (s *scriptedSession) QuerySettlement(_ context.Context, window string) (*Reply, error) {
	s.windowCalls = append(s.windowCalls, window)
	if r, ok := s.settlements[window]; ok {
		return r, nil
	}
	return okReply(), nil
}

func (s *scriptedSession) RealizedPnLDetail(_ context.Context, start, end string) (*Reply, error) {
	s.pnlCalls = append(s.pnlCalls, [2]string{start, end})
	return orDefault(s.pnl), nil
}

func (s *scriptedSession) AccountInfo(context.Context) (Record, error) {
	return s.info, s.infoErr
}

func (s *scriptedSession) IntradayQuote(_ context.Context, symbol string) (Record, error) {
	if err, ok := s.quoteErr[symbol]; ok {
		return Record{}, err
	}
	return s.quotes[symbol], nil
}

func (s *scriptedSession) Close() error {
	s.closed = true
	return nil
}

// newTestAccount wires a scripted session into an account with a pinned
// clock (a Wednesday mid-session) and a recording sleep.
func newTestAccount(t *testing.T, s Session) (*Account, *[]time.Duration) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewAccount(s, rec(map[string]any{"s_mark": "B"}), 10*time.Second, logger)

	fixed := time.Date(2026, 3, 4, 10, 30, 0, 0, a.cal.Location())
	a.now = func() time.Time { return fixed }

	slept := &[]time.Duration{}
	a.sleep = func(d time.Duration) { *slept = append(*slept, d) }
	return a, slept
}

// setClock moves the account's pinned wall clock.
func setClock(a *Account, hour, minute int) {
	fixed := time.Date(2026, 3, 4, hour, minute, 0, 0, a.cal.Location())
	a.now = func() time.Time { return fixed }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
