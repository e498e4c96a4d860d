package fubon

import (
	"context"
	"fmt"
	"time"

	"tradegate/internal/domain"
)

// The venue has no single fills endpoint, so trades are reconstructed from
// two sources: open inventory details supply the buy legs and the realized
// pnl report supplies the sell legs. Both stamp each leg at the market close
// of its trade date.

// GetTrades returns the filled trades whose trade date falls inside
// [start, end]. The window widens to whole days in exchange-local time.
func (a *Account) GetTrades(ctx context.Context, start, end time.Time) []domain.Order {
	windowStart, windowEnd := a.cal.DayWindow(start, end)

	legs := a.buyLegs(ctx)
	legs = append(legs, a.sellLegs(ctx, windowStart, windowEnd)...)

	trades := []domain.Order{}
	for _, o := range legs {
		if !o.Time.Before(windowStart) && !o.Time.After(windowEnd) {
			trades = append(trades, o)
		}
	}
	return trades
}

// buyLegs reconstructs filled buys from inventory details. Each detail query
// is a venue round trip, so the walk pauses briefly every ten positions.
func (a *Account) buyLegs(ctx context.Context) []domain.Order {
	reply, err := a.session.Inventories(ctx)
	if e := replyErr(reply, err); e != nil {
		a.log.Warn("inventory query failed during trade rebuild", "venue", a.Name(), "err", e)
		return nil
	}

	var legs []domain.Order
	positions := reply.Data
	for i, pos := range positions {
		symbol, _ := probeString(pos, "stock_no")
		if symbol == "" {
			a.pauseEvery(i, 10, len(positions))
			continue
		}

		detailReply, err := a.session.InventoryDetails(ctx, firstString(pos, "id"), symbol)
		if e := replyErr(detailReply, err); e != nil {
			a.log.Warn("inventory detail query failed", "venue", a.Name(), "symbol", symbol, "err", e)
			a.pauseEvery(i, 10, len(positions))
			continue
		}

		cond := conditionFromCode(firstString(pos, "order_type"))
		for _, detail := range detailReply.Data {
			leg, ok := a.buyLeg(detail, symbol, cond, i)
			if ok {
				legs = append(legs, leg)
			}
		}

		a.pauseEvery(i, 10, len(positions))
	}
	return legs
}

func (a *Account) buyLeg(detail Record, symbol string, cond domain.Condition, idx int) (domain.Order, bool) {
	qty, err := probeFloat(detail, "qty")
	if err != nil {
		a.log.Warn("unreadable inventory detail", "venue", a.Name(), "symbol", symbol, "err", err)
		return domain.Order{}, false
	}
	if qty == 0 {
		return domain.Order{}, false
	}

	price, err := probeFloat(detail, "price")
	if err != nil {
		a.log.Warn("unreadable inventory detail price", "venue", a.Name(), "symbol", symbol, "err", err)
		return domain.Order{}, false
	}

	odd, _ := probeBool(detail, "odd_lot")
	divisor := lotDivisor(odd || qty < sharesPerLot)

	id := firstString(detail, "order_no", "seq_no")
	if id == "" {
		id = fmt.Sprintf("fb_buy_%d_%d", a.now().Unix(), idx)
	}

	tradeDate := parseTradeDate(firstString(detail, "order_date", "date"), a.now, a.cal.Location())

	return domain.Order{
		ID:        id,
		Symbol:    symbol,
		Side:      domain.OrderSideBuy,
		Price:     price,
		Quantity:  qty / divisor,
		FilledQty: qty / divisor,
		Status:    domain.OrderStatusFilled,
		Condition: cond,
		Time:      a.cal.CloseOn(tradeDate),
		Raw:       detail,
	}, true
}

// sellLegs reconstructs filled sells from the realized pnl report over
// [start, end]. The report is paged by the venue, so the walk pauses briefly
// every twenty records.
func (a *Account) sellLegs(ctx context.Context, start, end time.Time) []domain.Order {
	reply, err := a.session.RealizedPnLDetail(ctx, start.Format("20060102"), end.Format("20060102"))
	if e := replyErr(reply, err); e != nil {
		a.log.Warn("realized pnl query failed", "venue", a.Name(), "err", e)
		return nil
	}

	var legs []domain.Order
	records := reply.Data
	for i, rec := range records {
		leg, ok := a.sellLeg(rec, i)
		if ok {
			legs = append(legs, leg)
		}
		a.pauseEvery(i, 20, len(records))
	}
	return legs
}

func (a *Account) sellLeg(rec Record, idx int) (domain.Order, bool) {
	date := firstString(rec, "date", "trade_date")
	if date == "" {
		return domain.Order{}, false
	}
	symbol := firstString(rec, "stock_no", "symbol")
	if symbol == "" {
		return domain.Order{}, false
	}

	qty, err := probeFloat(rec, "qty", "quantity")
	if err != nil {
		a.log.Warn("unreadable realized pnl record", "venue", a.Name(), "symbol", symbol, "err", err)
		return domain.Order{}, false
	}
	price, err := probeFloat(rec, "price")
	if err != nil {
		a.log.Warn("unreadable realized pnl price", "venue", a.Name(), "symbol", symbol, "err", err)
		return domain.Order{}, false
	}

	odd, _ := probeBool(rec, "odd_lot")
	divisor := lotDivisor(odd || qty < sharesPerLot)

	id := firstString(rec, "order_no", "seq_no")
	if id == "" {
		id = fmt.Sprintf("fb_sell_%d_%d", a.now().Unix(), idx)
	}

	tradeDate := parseTradeDate(date, a.now, a.cal.Location())

	return domain.Order{
		ID:        id,
		Symbol:    symbol,
		Side:      domain.OrderSideSell,
		Price:     price,
		Quantity:  qty / divisor,
		FilledQty: qty / divisor,
		Status:    domain.OrderStatusFilled,
		Condition: conditionFromCode(firstString(rec, "trade_type", "cond")),
		Time:      a.cal.CloseOn(tradeDate),
		Raw:       rec,
	}, true
}

// pauseEvery sleeps for a second after every nth item except the last.
func (a *Account) pauseEvery(i, n, total int) {
	if i%n == n-1 && i != total-1 {
		a.sleep(time.Second)
	}
}
