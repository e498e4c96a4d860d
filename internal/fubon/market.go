package fubon

import "time"

// sharesPerLot is the venue's board lot size.
const sharesPerLot = 1000

// isOddLotRecord reports whether an order snapshot sits on one of the
// odd-lot books.
func isOddLotRecord(r Record) bool {
	mt, _ := probeString(r, "market_type")
	return oddLotMarket(MarketType(mt))
}

// lotDivisor converts the venue's native quantity into canonical units.
// Odd-lot quantities are already in shares; board-lot quantities arrive in
// shares and are reported in lots.
func lotDivisor(odd bool) float64 {
	if odd {
		return 1
	}
	return sharesPerLot
}

// nativeQuantity converts a canonical quantity into the units the trading
// API expects: shares for odd-lot orders, shares in board-lot multiples
// otherwise. Fractional lots truncate.
func nativeQuantity(qty float64, odd bool) int {
	if odd {
		return int(qty)
	}
	return int(qty * sharesPerLot)
}

// classifyMarket picks the market type for a new order from the requested
// book and the exchange-local wall clock. The comparisons are at minute
// granularity and exclusive on both ends, so orders at exactly 13:40, 14:00
// or 14:30 fall back to the continuous books.
func classifyMarket(odd bool, now time.Time) MarketType {
	minute := now.Hour()*60 + now.Minute()

	if odd {
		// After-hours odd-lot session runs between 13:40 and 14:30.
		if minute > 13*60+40 && minute < 14*60+30 {
			return MarketOdd
		}
		return MarketIntradayOdd
	}

	// Closing call auction accepts board-lot orders between 14:00 and 14:30.
	if minute > 14*60 && minute < 14*60+30 {
		return MarketFixing
	}
	return MarketCommon
}
