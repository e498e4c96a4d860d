package alpaca

import (
	"context"
	"errors"
	"testing"
	"time"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"tradegate/internal/account"
	"tradegate/internal/domain"
)

func dptr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func openOrder(id string, qty, filled float64, status string) alpacaapi.Order {
	return alpacaapi.Order{
		ID:          id,
		Symbol:      "AAPL",
		Side:        alpacaapi.Buy,
		Type:        alpacaapi.Limit,
		Qty:         dptr(qty),
		FilledQty:   decimal.NewFromFloat(filled),
		LimitPrice:  dptr(101.5),
		Status:      status,
		SubmittedAt: time.Date(2026, 3, 4, 14, 30, 0, 0, time.UTC),
	}
}

func snapWithClose(c float64) *marketdata.Snapshot {
	return &marketdata.Snapshot{DailyBar: &marketdata.Bar{Close: c}}
}

func TestGetOrders(t *testing.T) {
	trader := &fakeTrader{orders: []alpacaapi.Order{
		openOrder("o1", 10, 0, "new"),
		openOrder("o2", 10, 4, "new"),
	}}
	a := newTestAccount(t, trader, nil)

	orders := a.GetOrders(context.Background())
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if len(trader.ordersReqs) != 1 || trader.ordersReqs[0].Status != "open" {
		t.Errorf("orders request = %+v, want status open", trader.ordersReqs)
	}

	o1 := orders["o1"]
	if o1.Symbol != "AAPL" || o1.Side != domain.OrderSideBuy || o1.Price != 101.5 {
		t.Errorf("o1 = %+v", o1)
	}
	if o1.Quantity != 10 || o1.FilledQty != 0 || o1.Status != domain.OrderStatusNew {
		t.Errorf("o1 counters = %+v", o1)
	}

	// Fill counters beat the venue status string.
	if o2 := orders["o2"]; o2.Status != domain.OrderStatusPartiallyFilled {
		t.Errorf("o2 status = %v, want partially filled", o2.Status)
	}
}

func TestGetOrdersFailOpen(t *testing.T) {
	a := newTestAccount(t, &fakeTrader{ordersErr: errors.New("down")}, nil)
	if got := a.GetOrders(context.Background()); len(got) != 0 {
		t.Errorf("GetOrders on failure = %+v, want empty", got)
	}
}

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		status        string
		filled, total float64
		want          domain.OrderStatus
	}{
		{"new", 0, 10, domain.OrderStatusNew},
		{"accepted", 0, 10, domain.OrderStatusNew},
		{"pending_cancel", 0, 10, domain.OrderStatusNew},
		{"partially_filled", 4, 10, domain.OrderStatusPartiallyFilled},
		{"new", 4, 10, domain.OrderStatusPartiallyFilled},
		{"filled", 10, 10, domain.OrderStatusFilled},
		{"canceled", 0, 10, domain.OrderStatusCancelled},
		{"canceled", 4, 10, domain.OrderStatusCancelled},
		{"expired", 0, 10, domain.OrderStatusCancelled},
		{"rejected", 0, 10, domain.OrderStatusCancelled},
		{"replaced", 0, 10, domain.OrderStatusCancelled},
	}
	for _, tt := range tests {
		if got := resolveStatus(tt.status, tt.filled, tt.total); got != tt.want {
			t.Errorf("resolveStatus(%q, %v, %v) = %v, want %v",
				tt.status, tt.filled, tt.total, got, tt.want)
		}
	}
}

func TestCreateOrderValidation(t *testing.T) {
	a := newTestAccount(t, &fakeTrader{}, nil)

	tests := []struct {
		name    string
		req     account.OrderRequest
		wantErr error
	}{
		{"empty symbol", account.OrderRequest{Quantity: 1, Price: 10}, account.ErrEmptySymbol},
		{"zero quantity", account.OrderRequest{Symbol: "AAPL", Price: 10}, account.ErrInvalidQuantity},
		{"conflicting modes", account.OrderRequest{Symbol: "AAPL", Quantity: 1, MarketOrder: true, BestPriceLimit: true}, account.ErrConflictingPriceMode},
		{"priceless limit", account.OrderRequest{Symbol: "AAPL", Quantity: 1}, account.ErrPriceRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.CreateOrder(context.Background(), tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateOrder err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateOrderPlainLimit(t *testing.T) {
	trader := &fakeTrader{placeReply: &alpacaapi.Order{ID: "new-id"}}
	a := newTestAccount(t, trader, nil)

	id, err := a.CreateOrder(context.Background(), account.OrderRequest{
		Side: domain.OrderSideBuy, Symbol: "AAPL", Quantity: 10, Price: 12.345,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if id != "new-id" {
		t.Errorf("id = %q, want new-id", id)
	}
	if len(trader.placed) != 1 {
		t.Fatalf("placed %d orders, want 1", len(trader.placed))
	}

	p := trader.placed[0]
	if p.Symbol != "AAPL" || p.Side != alpacaapi.Buy || p.Type != alpacaapi.Limit {
		t.Errorf("request = %+v", p)
	}
	if p.TimeInForce != alpacaapi.Day {
		t.Errorf("time in force = %v, want day", p.TimeInForce)
	}
	if p.Qty == nil || !p.Qty.Equal(decimal.NewFromInt(10)) {
		t.Errorf("qty = %v, want 10", p.Qty)
	}
	// Sub-penny truncation, not rounding.
	if p.LimitPrice == nil || p.LimitPrice.String() != "12.34" {
		t.Errorf("limit = %v, want 12.34", p.LimitPrice)
	}
	if p.ClientOrderID == "" {
		t.Error("client order id not set")
	}
}

func TestCreateOrderMarket(t *testing.T) {
	trader := &fakeTrader{}
	a := newTestAccount(t, trader, nil)

	if _, err := a.CreateOrder(context.Background(), account.OrderRequest{
		Side: domain.OrderSideSell, Symbol: "AAPL", Quantity: 3, MarketOrder: true,
	}); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	p := trader.placed[0]
	if p.Type != alpacaapi.Market || p.LimitPrice != nil {
		t.Errorf("request = %+v, want market order without limit", p)
	}
	if p.Side != alpacaapi.Sell {
		t.Errorf("side = %v, want sell", p.Side)
	}
}

func TestCreateOrderPegged(t *testing.T) {
	tests := []struct {
		side domain.OrderSide
		want string
	}{
		{domain.OrderSideBuy, "50"},
		{domain.OrderSideSell, "150"},
	}
	for _, tt := range tests {
		trader := &fakeTrader{}
		quoter := &fakeQuoter{snaps: map[string]*marketdata.Snapshot{"AAPL": snapWithClose(100)}}
		a := newTestAccount(t, trader, quoter)

		if _, err := a.CreateOrder(context.Background(), account.OrderRequest{
			Side: tt.side, Symbol: "AAPL", Quantity: 1, BestPriceLimit: true,
		}); err != nil {
			t.Fatalf("CreateOrder(%v): %v", tt.side, err)
		}
		p := trader.placed[0]
		if p.Type != alpacaapi.Limit || p.LimitPrice == nil || p.LimitPrice.String() != tt.want {
			t.Errorf("side %v: limit = %v, want %v", tt.side, p.LimitPrice, tt.want)
		}
	}
}

func TestCreateOrderPeggedNoReference(t *testing.T) {
	trader := &fakeTrader{}
	quoter := &fakeQuoter{errs: map[string]error{"AAPL": errors.New("no data")}}
	a := newTestAccount(t, trader, quoter)

	id, err := a.CreateOrder(context.Background(), account.OrderRequest{
		Side: domain.OrderSideBuy, Symbol: "AAPL", Quantity: 1, BestPriceLimit: true,
	})
	if err != nil || id != "" {
		t.Errorf("CreateOrder = (%q, %v), want empty id and nil error", id, err)
	}
	if len(trader.placed) != 0 {
		t.Errorf("placed %d orders without a reference price, want 0", len(trader.placed))
	}
}

func TestCreateOrderVenueRejection(t *testing.T) {
	trader := &fakeTrader{placeErr: errors.New("insufficient buying power")}
	a := newTestAccount(t, trader, nil)

	id, err := a.CreateOrder(context.Background(), account.OrderRequest{
		Side: domain.OrderSideBuy, Symbol: "AAPL", Quantity: 1, Price: 10,
	})
	if err != nil || id != "" {
		t.Errorf("CreateOrder = (%q, %v), want empty id and nil error", id, err)
	}
}

func TestUpdateOrder(t *testing.T) {
	trader := &fakeTrader{orders: []alpacaapi.Order{openOrder("o1", 10, 0, "new")}}
	a := newTestAccount(t, trader, nil)

	price, qty := 10.5, 7.0
	if err := a.UpdateOrder(context.Background(), "o1", account.OrderUpdate{Price: &price, Quantity: &qty}); err != nil {
		t.Fatalf("UpdateOrder: %v", err)
	}

	if len(trader.replacedIDs) != 1 || trader.replacedIDs[0] != "o1" {
		t.Fatalf("replaced = %v, want [o1]", trader.replacedIDs)
	}
	req := trader.replaceReqs[0]
	if req.LimitPrice == nil || req.LimitPrice.String() != "10.5" {
		t.Errorf("limit = %v, want 10.5", req.LimitPrice)
	}
	if req.Qty == nil || !req.Qty.Equal(decimal.NewFromInt(7)) {
		t.Errorf("qty = %v, want 7", req.Qty)
	}
}

func TestUpdateOrderValidation(t *testing.T) {
	a := newTestAccount(t, &fakeTrader{orders: []alpacaapi.Order{openOrder("o1", 10, 0, "new")}}, nil)

	if err := a.UpdateOrder(context.Background(), "o1", account.OrderUpdate{}); !errors.Is(err, account.ErrNothingToUpdate) {
		t.Errorf("empty update err = %v, want ErrNothingToUpdate", err)
	}
	price := 10.0
	if err := a.UpdateOrder(context.Background(), "missing", account.OrderUpdate{Price: &price}); !errors.Is(err, account.ErrOrderNotFound) {
		t.Errorf("unknown id err = %v, want ErrOrderNotFound", err)
	}
}

func TestUpdateOrderVenueFailureIsSwallowed(t *testing.T) {
	trader := &fakeTrader{
		orders:     []alpacaapi.Order{openOrder("o1", 10, 0, "new")},
		replaceErr: errors.New("too late"),
	}
	a := newTestAccount(t, trader, nil)

	price := 10.0
	if err := a.UpdateOrder(context.Background(), "o1", account.OrderUpdate{Price: &price}); err != nil {
		t.Errorf("UpdateOrder = %v, want nil on venue rejection", err)
	}
}

func TestCancelOrder(t *testing.T) {
	trader := &fakeTrader{orders: []alpacaapi.Order{openOrder("o1", 10, 0, "new")}}
	a := newTestAccount(t, trader, nil)

	if err := a.CancelOrder(context.Background(), "o1"); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if len(trader.cancelled) != 1 || trader.cancelled[0] != "o1" {
		t.Errorf("cancelled = %v, want [o1]", trader.cancelled)
	}

	if err := a.CancelOrder(context.Background(), "missing"); !errors.Is(err, account.ErrOrderNotFound) {
		t.Errorf("unknown id err = %v, want ErrOrderNotFound", err)
	}
}

func TestFormatLimit(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{12.345, "12.34"},
		{12.3, "12.3"},
		{1, "1"},
		{0.12345, "0.1234"},
		{0.9999, "0.9999"},
		{0.99999, "0.9999"},
	}
	for _, tt := range tests {
		if got := formatLimit(tt.price).String(); got != tt.want {
			t.Errorf("formatLimit(%v) = %q, want %q", tt.price, got, tt.want)
		}
	}
}
