package fubon

import (
	"testing"
	"time"
)

func TestClassifyMarket(t *testing.T) {
	tests := []struct {
		name   string
		odd    bool
		hour   int
		minute int
		want   MarketType
	}{
		{"whole mid session", false, 10, 30, MarketCommon},
		{"whole at 14:00 boundary", false, 14, 0, MarketCommon},
		{"whole just inside fixing", false, 14, 1, MarketFixing},
		{"whole late fixing", false, 14, 29, MarketFixing},
		{"whole at 14:30 boundary", false, 14, 30, MarketCommon},
		{"odd mid session", true, 10, 30, MarketIntradayOdd},
		{"odd at 13:40 boundary", true, 13, 40, MarketIntradayOdd},
		{"odd just inside after hours", true, 13, 41, MarketOdd},
		{"odd late after hours", true, 14, 29, MarketOdd},
		{"odd at 14:30 boundary", true, 14, 30, MarketIntradayOdd},
		{"odd evening", true, 20, 0, MarketIntradayOdd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(2026, 3, 4, tt.hour, tt.minute, 0, 0, time.UTC)
			if got := classifyMarket(tt.odd, now); got != tt.want {
				t.Errorf("classifyMarket(%v, %02d:%02d) = %v, want %v",
					tt.odd, tt.hour, tt.minute, got, tt.want)
			}
		})
	}
}

func TestIsOddLotRecord(t *testing.T) {
	tests := []struct {
		marketType string
		want       bool
	}{
		{"IntradayOdd", true},
		{"Odd", true},
		{"EmgOdd", true},
		{"Common", false},
		{"Fixing", false},
		{"", false},
	}

	for _, tt := range tests {
		r := rec(map[string]any{"market_type": tt.marketType})
		if got := isOddLotRecord(r); got != tt.want {
			t.Errorf("isOddLotRecord(market_type=%q) = %v, want %v", tt.marketType, got, tt.want)
		}
	}

	if isOddLotRecord(rec(map[string]any{})) {
		t.Error("record without market_type should not be odd lot")
	}
}

func TestNativeQuantity(t *testing.T) {
	tests := []struct {
		qty  float64
		odd  bool
		want int
	}{
		{3, false, 3000},
		{2.5, false, 2500},
		{0.001, false, 1},
		{57, true, 57},
		{57.9, true, 57},
	}

	for _, tt := range tests {
		if got := nativeQuantity(tt.qty, tt.odd); got != tt.want {
			t.Errorf("nativeQuantity(%v, odd=%v) = %d, want %d", tt.qty, tt.odd, got, tt.want)
		}
	}
}

func TestLotDivisor(t *testing.T) {
	if got := lotDivisor(true); got != 1 {
		t.Errorf("lotDivisor(true) = %v, want 1", got)
	}
	if got := lotDivisor(false); got != 1000 {
		t.Errorf("lotDivisor(false) = %v, want 1000", got)
	}
}
