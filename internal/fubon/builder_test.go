package fubon

import (
	"testing"
	"time"

	"tradegate/internal/account"
	"tradegate/internal/domain"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 4, hour, minute, 0, 0, taipei)
}

func TestBuildTicketPlainLimit(t *testing.T) {
	req := account.OrderRequest{
		Side:     domain.OrderSideBuy,
		Symbol:   "2330",
		Quantity: 2,
		Price:    585.5,
	}

	got := buildTicket(req, at(10, 30))
	want := Ticket{
		BuySell:     BSBuy,
		Symbol:      "2330",
		Price:       "585.5",
		Quantity:    2000,
		MarketType:  MarketCommon,
		PriceType:   PriceLimit,
		TimeInForce: TimeInForceROD,
		OrderType:   OrderTypeStock,
	}
	if got != want {
		t.Errorf("ticket = %+v, want %+v", got, want)
	}
}

func TestBuildTicketPriceModes(t *testing.T) {
	tests := []struct {
		name   string
		side   domain.OrderSide
		market bool
		best   bool
		want   PriceType
	}{
		{"market buy pegs to limit up", domain.OrderSideBuy, true, false, PriceLimitUp},
		{"market sell pegs to limit down", domain.OrderSideSell, true, false, PriceLimitDown},
		{"best buy pegs to limit down", domain.OrderSideBuy, false, true, PriceLimitDown},
		{"best sell pegs to limit up", domain.OrderSideSell, false, true, PriceLimitUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := account.OrderRequest{
				Side:           tt.side,
				Symbol:         "2330",
				Quantity:       1,
				Price:          585, // must be discarded by the mode
				MarketOrder:    tt.market,
				BestPriceLimit: tt.best,
			}
			got := buildTicket(req, at(10, 30))
			if got.PriceType != tt.want {
				t.Errorf("price type = %v, want %v", got.PriceType, tt.want)
			}
			if got.Price != "" {
				t.Errorf("price = %q, want empty for pegged order", got.Price)
			}
		})
	}
}

func TestBuildTicketSessionSelection(t *testing.T) {
	req := account.OrderRequest{
		Side: domain.OrderSideBuy, Symbol: "0050", Quantity: 15, Price: 170, OddLot: true,
	}

	if got := buildTicket(req, at(10, 30)); got.MarketType != MarketIntradayOdd {
		t.Errorf("odd lot mid session = %v, want IntradayOdd", got.MarketType)
	}
	if got := buildTicket(req, at(13, 50)); got.MarketType != MarketOdd {
		t.Errorf("odd lot after hours = %v, want Odd", got.MarketType)
	}

	req.OddLot = false
	req.Quantity = 1
	if got := buildTicket(req, at(14, 15)); got.MarketType != MarketFixing {
		t.Errorf("whole lot at 14:15 = %v, want Fixing", got.MarketType)
	}
	if got := buildTicket(req, at(10, 30)); got.MarketType != MarketCommon {
		t.Errorf("whole lot mid session = %v, want Common", got.MarketType)
	}
}

func TestBuildTicketQuantityUnits(t *testing.T) {
	whole := account.OrderRequest{Side: domain.OrderSideBuy, Symbol: "2330", Quantity: 3, Price: 100}
	if got := buildTicket(whole, at(10, 0)); got.Quantity != 3000 {
		t.Errorf("whole lot native qty = %d, want 3000", got.Quantity)
	}

	odd := account.OrderRequest{Side: domain.OrderSideBuy, Symbol: "2330", Quantity: 57, Price: 100, OddLot: true}
	if got := buildTicket(odd, at(10, 0)); got.Quantity != 57 {
		t.Errorf("odd lot native qty = %d, want 57", got.Quantity)
	}
}

func TestBuildTicketConditions(t *testing.T) {
	tests := []struct {
		cond domain.Condition
		want OrderType
	}{
		{domain.ConditionCash, OrderTypeStock},
		{domain.ConditionMargin, OrderTypeMargin},
		{domain.ConditionShort, OrderTypeShort},
		{domain.ConditionDayTrade, OrderTypeDayTrade},
		{"", OrderTypeStock},
	}
	for _, tt := range tests {
		req := account.OrderRequest{Side: domain.OrderSideSell, Symbol: "2330", Quantity: 1, Price: 10, Condition: tt.cond}
		if got := buildTicket(req, at(10, 0)); got.OrderType != tt.want {
			t.Errorf("condition %q → order type %v, want %v", tt.cond, got.OrderType, tt.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{585, "585"},
		{585.5, "585.5"},
		{0.86, "0.86"},
		{101.15, "101.15"},
	}
	for _, tt := range tests {
		if got := formatPrice(tt.in); got != tt.want {
			t.Errorf("formatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
