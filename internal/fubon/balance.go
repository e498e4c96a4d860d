package fubon

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// settlementWindows are the lookback ranges queried for pending settlement,
// the past three days and today.
var settlementWindows = []string{"3d", "0d"}

// GetCash returns the bank's available balance. The venue renders large
// balances with thousands separators, so string values are unformatted
// before parsing.
func (a *Account) GetCash(ctx context.Context) float64 {
	reply, err := a.session.BankRemain(ctx)
	if e := replyErr(reply, err); e != nil {
		a.log.Warn("bank remain query failed", "venue", a.Name(), "err", e)
		return 0
	}

	cash, err := availableBalance(reply.First())
	if err != nil {
		a.log.Warn("unreadable bank remain payload", "venue", a.Name(), "err", err)
		return 0
	}
	return cash
}

func availableBalance(r Record) (float64, error) {
	v, ok := r.Field("available_balance")
	if !ok || v == nil {
		return 0, nil
	}
	if s, isStr := v.(string); isStr {
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return 0, fmt.Errorf("available_balance: %w", err)
		}
		return f, nil
	}
	f, ok := coerceFloat(v)
	if !ok {
		return 0, fmt.Errorf("available_balance: cannot read %T as number", v)
	}
	return f, nil
}

// GetSettlement sums the pending settlement amounts across the lookback
// windows. Details without a settlement date are placeholders and are
// skipped.
func (a *Account) GetSettlement(ctx context.Context) float64 {
	total := 0.0

	for _, window := range settlementWindows {
		reply, err := a.session.QuerySettlement(ctx, window)
		if e := replyErr(reply, err); e != nil {
			a.log.Warn("settlement query failed", "venue", a.Name(), "window", window, "err", e)
			continue
		}

		details, ok := probeList(reply.First(), "details")
		if !ok {
			continue
		}
		for _, detail := range details {
			if date := firstString(detail, "settlement_date"); date == "" {
				continue
			}
			amount, err := probeFloat(detail, "total_settlement_amount")
			if err != nil {
				a.log.Warn("unreadable settlement detail", "venue", a.Name(), "window", window, "err", err)
				continue
			}
			total += amount
		}
	}

	a.log.Debug("settlement totalled", "venue", a.Name(), "total", total)
	return total
}

// GetTotalBalance values the whole account: cash holdings at market, margin
// positions net of the financed amount, short positions as collateral plus
// margin minus the marked value, plus available cash and pending settlement.
// When inventories cannot be read the valuation degrades to cash plus
// settlement.
func (a *Account) GetTotalBalance(ctx context.Context) float64 {
	cash := a.GetCash(ctx)
	settlement := a.GetSettlement(ctx)

	reply, err := a.session.Inventories(ctx)
	if e := replyErr(reply, err); e != nil {
		a.log.Warn("inventory query failed during valuation", "venue", a.Name(), "err", e)
		return cash + settlement
	}

	var (
		totalMV         float64
		marginMV        float64
		marginAmount    float64
		shortMV         float64
		shortCollateral float64
		guarantee       float64
	)

	for _, inv := range reply.Data {
		mv, err := inventoryMarketValue(inv)
		if err != nil {
			a.log.Warn("unreadable inventory valuation", "venue", a.Name(), "err", err)
			continue
		}
		totalMV += mv

		switch firstString(inv, "order_type") {
		case string(OrderTypeMargin):
			marginMV += mv
			amt, err := probeFloat(inv, "margin_amount")
			if err != nil {
				a.log.Warn("unreadable margin amount", "venue", a.Name(), "err", err)
				continue
			}
			marginAmount += amt
		case string(OrderTypeShort):
			shortMV += mv
			coll, err := probeFloat(inv, "short_collateral")
			if err != nil {
				a.log.Warn("unreadable short collateral", "venue", a.Name(), "err", err)
				continue
			}
			shortCollateral += coll
			g, err := probeFloat(inv, "guarantee_amount")
			if err != nil {
				a.log.Warn("unreadable guarantee amount", "venue", a.Name(), "err", err)
				continue
			}
			guarantee += g
		}
	}

	cashMV := totalMV - marginMV - shortMV
	balance := cashMV + (marginMV - marginAmount) + (shortCollateral + guarantee - shortMV) + cash + settlement

	a.log.Debug("total balance computed", "venue", a.Name(),
		"cash_mv", cashMV, "margin_net", marginMV-marginAmount,
		"short_net", shortCollateral+guarantee-shortMV, "cash", cash, "settlement", settlement)
	return balance
}

// inventoryMarketValue reads an inventory entry's marked value, falling back
// to quantity times price when the venue omits it.
func inventoryMarketValue(r Record) (float64, error) {
	if v, ok := r.Field("market_value"); ok && v != nil {
		return probeFloat(r, "market_value")
	}

	_, hasQty := r.Field("today_qty")
	_, hasPrice := r.Field("price")
	if !hasQty || !hasPrice {
		return 0, nil
	}
	qty, err := probeFloat(r, "today_qty")
	if err != nil {
		return 0, err
	}
	price, err := probeFloat(r, "price")
	if err != nil {
		return 0, err
	}
	return qty * price, nil
}
