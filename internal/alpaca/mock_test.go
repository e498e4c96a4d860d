package alpaca

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"golang.org/x/time/rate"
)

// fakeTrader plays canned replies and records every mutation call.
type fakeTrader struct {
	account    *alpacaapi.Account
	accountErr error

	orders     []alpacaapi.Order
	ordersErr  error
	ordersReqs []alpacaapi.GetOrdersRequest

	placed     []alpacaapi.PlaceOrderRequest
	placeReply *alpacaapi.Order
	placeErr   error

	replacedIDs  []string
	replaceReqs  []alpacaapi.ReplaceOrderRequest
	replaceReply *alpacaapi.Order
	replaceErr   error

	cancelled []string
	cancelErr error

	positions    []alpacaapi.Position
	positionsErr error

	activities   []alpacaapi.AccountActivity
	activityErr  error
	activityReqs []alpacaapi.GetAccountActivitiesRequest
}

func (f *fakeTrader) GetAccount() (*alpacaapi.Account, error) {
	return f.account, f.accountErr
}

func (f *fakeTrader) GetOrders(req alpacaapi.GetOrdersRequest) ([]alpacaapi.Order, error) {
	f.ordersReqs = append(f.ordersReqs, req)
	return f.orders, f.ordersErr
}

func (f *fakeTrader) PlaceOrder(req alpacaapi.PlaceOrderRequest) (*alpacaapi.Order, error) {
	f.placed = append(f.placed, req)
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	if f.placeReply != nil {
		return f.placeReply, nil
	}
	return &alpacaapi.Order{ID: "placed"}, nil
}

func (f *fakeTrader) ReplaceOrder(orderID string, req alpacaapi.ReplaceOrderRequest) (*alpacaapi.Order, error) {
	f.replacedIDs = append(f.replacedIDs, orderID)
	f.replaceReqs = append(f.replaceReqs, req)
	if f.replaceErr != nil {
		return nil, f.replaceErr
	}
	if f.replaceReply != nil {
		return f.replaceReply, nil
	}
	return &alpacaapi.Order{ID: "replacement"}, nil
}

func (f *fakeTrader) CancelOrder(orderID string) error {
	f.cancelled = append(f.cancelled, orderID)
	return f.cancelErr
}

func (f *fakeTrader) GetPositions() ([]alpacaapi.Position, error) {
	return f.positions, f.positionsErr
}

func (f *fakeTrader) GetAccountActivities(req alpacaapi.GetAccountActivitiesRequest) ([]alpacaapi.AccountActivity, error) {
	f.activityReqs = append(f.activityReqs, req)
	return f.activities, f.activityErr
}

// fakeQuoter serves canned snapshots. It is safe for the concurrent
// fan-out in GetStocks.
type fakeQuoter struct {
	mu    sync.Mutex
	snaps map[string]*marketdata.Snapshot
	errs  map[string]error
	calls []string
}

func (f *fakeQuoter) GetSnapshot(symbol string, _ marketdata.GetSnapshotRequest) (*marketdata.Snapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, symbol)
	f.mu.Unlock()
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	return f.snaps[symbol], nil
}

// newTestAccount wires fakes into an account with an unthrottled limiter.
func newTestAccount(t *testing.T, trader Trader, quoter Quoter) *Account {
	t.Helper()
	if trader == nil {
		trader = &fakeTrader{}
	}
	if quoter == nil {
		quoter = &fakeQuoter{}
	}
	a := NewAccount(trader, quoter, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.limiter = rate.NewLimiter(rate.Inf, 1)
	return a
}
