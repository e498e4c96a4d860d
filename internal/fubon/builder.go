package fubon

import (
	"strconv"
	"time"

	"tradegate/internal/account"
	"tradegate/internal/domain"
)

// buildTicket resolves a validated order request into a venue ticket. The
// wall clock decides which session the order targets; price mode flags
// override any explicit price since the venue expects band-pegged orders to
// carry none.
func buildTicket(req account.OrderRequest, now time.Time) Ticket {
	side := BSBuy
	if req.Side == domain.OrderSideSell {
		side = BSSell
	}

	t := Ticket{
		BuySell:     side,
		Symbol:      req.Symbol,
		Quantity:    nativeQuantity(req.Quantity, req.OddLot),
		MarketType:  classifyMarket(req.OddLot, now),
		PriceType:   PriceLimit,
		TimeInForce: TimeInForceROD,
		OrderType:   conditionOrderType(req.Condition),
	}

	switch {
	case req.MarketOrder:
		// Market orders peg to the aggressive end of the band.
		if req.Side == domain.OrderSideSell {
			t.PriceType = PriceLimitDown
		} else {
			t.PriceType = PriceLimitUp
		}
	case req.BestPriceLimit:
		// Best-price limits peg to the passive end.
		if req.Side == domain.OrderSideSell {
			t.PriceType = PriceLimitUp
		} else {
			t.PriceType = PriceLimitDown
		}
	default:
		t.Price = formatPrice(req.Price)
	}
	return t
}

func conditionOrderType(c domain.Condition) OrderType {
	switch c {
	case domain.ConditionMargin:
		return OrderTypeMargin
	case domain.ConditionShort:
		return OrderTypeShort
	case domain.ConditionDayTrade:
		return OrderTypeDayTrade
	default:
		return OrderTypeStock
	}
}

// formatPrice renders a price the way the trading API expects, without
// trailing zeros.
func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
