package alpaca

import (
	"context"
	"errors"
	"testing"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"

	"tradegate/internal/domain"
)

func TestGetCash(t *testing.T) {
	trader := &fakeTrader{account: &alpacaapi.Account{Cash: decimal.NewFromFloat(120.5)}}
	a := newTestAccount(t, trader, nil)

	if got := a.GetCash(context.Background()); got != 120.5 {
		t.Errorf("GetCash = %v, want 120.5", got)
	}

	trader.accountErr = errors.New("down")
	if got := a.GetCash(context.Background()); got != 0 {
		t.Errorf("GetCash on failure = %v, want 0", got)
	}
}

func TestGetTotalBalance(t *testing.T) {
	trader := &fakeTrader{account: &alpacaapi.Account{Equity: decimal.NewFromInt(30000)}}
	a := newTestAccount(t, trader, nil)

	if got := a.GetTotalBalance(context.Background()); got != 30000 {
		t.Errorf("GetTotalBalance = %v, want 30000", got)
	}
}

func TestGetSettlementIsZero(t *testing.T) {
	a := newTestAccount(t, nil, nil)
	if got := a.GetSettlement(context.Background()); got != 0 {
		t.Errorf("GetSettlement = %v, want 0", got)
	}
}

func TestSupportDayTrade(t *testing.T) {
	tests := []struct {
		name   string
		pdt    bool
		equity int64
		want   bool
	}{
		{"unflagged small account", false, 10000, true},
		{"flagged above floor", true, 30000, true},
		{"flagged at floor", true, 25000, true},
		{"flagged below floor", true, 10000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trader := &fakeTrader{account: &alpacaapi.Account{
				PatternDayTrader: tt.pdt,
				Equity:           decimal.NewFromInt(tt.equity),
			}}
			a := newTestAccount(t, trader, nil)
			if got := a.SupportDayTrade(context.Background()); got != tt.want {
				t.Errorf("SupportDayTrade = %v, want %v", got, tt.want)
			}
		})
	}

	a := newTestAccount(t, &fakeTrader{accountErr: errors.New("down")}, nil)
	if a.SupportDayTrade(context.Background()) {
		t.Error("SupportDayTrade on failure = true, want false")
	}
}

func TestSeparateOddLot(t *testing.T) {
	a := newTestAccount(t, nil, nil)
	if a.SeparateOddLot() {
		t.Error("SeparateOddLot = true, want false")
	}
}

func TestGetPosition(t *testing.T) {
	trader := &fakeTrader{positions: []alpacaapi.Position{
		{Symbol: "AAPL", Qty: decimal.NewFromInt(10), Side: "long"},
		{Symbol: "TSLA", Qty: decimal.NewFromInt(-5), Side: "short"},
	}}
	a := newTestAccount(t, trader, nil)

	got := a.GetPosition(context.Background())
	want := []domain.Position{
		{Symbol: "AAPL", Quantity: 10, Condition: domain.ConditionCash},
		{Symbol: "TSLA", Quantity: -5, Condition: domain.ConditionShort},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d positions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestGetPositionFailOpen(t *testing.T) {
	a := newTestAccount(t, &fakeTrader{positionsErr: errors.New("down")}, nil)
	if got := a.GetPosition(context.Background()); len(got) != 0 {
		t.Errorf("GetPosition on failure = %+v, want empty", got)
	}
}
