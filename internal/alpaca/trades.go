package alpaca

import (
	"context"
	"time"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"

	"tradegate/internal/domain"
)

// GetTrades returns the fills whose transaction time falls inside
// [start, end]. The window widens to whole days in market-local time. Fills
// carry their exact venue timestamps, so no close-time synthesis is needed.
func (a *Account) GetTrades(ctx context.Context, start, end time.Time) []domain.Order {
	windowStart, windowEnd := a.cal.DayWindow(start, end)

	activities, err := a.trader.GetAccountActivities(alpacaapi.GetAccountActivitiesRequest{
		ActivityTypes: []string{"FILL"},
		After:         windowStart,
		Until:         windowEnd,
	})
	if err != nil {
		a.log.Warn("activity query failed", "venue", a.Name(), "err", err)
		return nil
	}

	trades := []domain.Order{}
	for _, act := range activities {
		if act.Symbol == "" {
			continue
		}
		t := act.TransactionTime
		if t.Before(windowStart) || t.After(windowEnd) {
			continue
		}

		side := domain.OrderSideBuy
		cond := domain.ConditionCash
		switch act.Side {
		case "sell":
			side = domain.OrderSideSell
		case "sell_short":
			side = domain.OrderSideSell
			cond = domain.ConditionShort
		}

		qty := act.Qty.Abs().InexactFloat64()
		trades = append(trades, domain.Order{
			ID:        act.ID,
			Symbol:    act.Symbol,
			Side:      side,
			Price:     act.Price.InexactFloat64(),
			Quantity:  qty,
			FilledQty: qty,
			Status:    domain.OrderStatusFilled,
			Condition: cond,
			Time:      t,
			Raw:       act,
		})
	}
	return trades
}
