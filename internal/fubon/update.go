package fubon

import (
	"context"

	"tradegate/internal/account"
	"tradegate/internal/domain"
)

// UpdateOrder mutates an open order. The price axis runs first, then the
// quantity axis. Odd-lot orders cannot be repriced in place: the original is
// cancelled by modifying its quantity to zero and the unfilled remainder is
// resubmitted at the new price. If that cancel leg fails the whole update
// stops, since resubmitting on top of a live order would double the
// exposure. All other venue failures are logged and the update carries on.
func (a *Account) UpdateOrder(ctx context.Context, orderID string, upd account.OrderUpdate) error {
	if upd.Empty() {
		return account.ErrNothingToUpdate
	}

	orders := a.GetOrders(ctx)
	order, ok := orders[orderID]
	if !ok {
		return account.ErrOrderNotFound
	}
	raw, _ := order.Raw.(Record)
	odd := isOddLotRecord(raw)

	if upd.Price != nil {
		if odd {
			if !a.replaceOddLot(ctx, order, raw, *upd.Price) {
				return nil
			}
		} else {
			reply, err := a.session.ModifyPrice(ctx, raw, formatPrice(*upd.Price))
			if e := replyErr(reply, err); e != nil {
				a.log.Warn("price modify failed", "venue", a.Name(), "order", orderID, "err", e)
			} else {
				a.log.Info("order price updated", "venue", a.Name(), "order", orderID, "price", *upd.Price)
			}
		}
	}

	if upd.Quantity != nil {
		filled, err := probeFloat(raw, "filled_qty")
		if err != nil {
			a.log.Warn("unreadable fill counter", "venue", a.Name(), "order", orderID, "err", err)
			return nil
		}

		// The venue counts the already filled part into the new total.
		newQty := nativeQuantity(*upd.Quantity, odd) + int(filled)
		reply, err := a.session.ModifyQuantity(ctx, raw, newQty)
		if e := replyErr(reply, err); e != nil {
			a.log.Warn("quantity modify failed", "venue", a.Name(), "order", orderID, "err", e)
		} else {
			a.log.Info("order quantity updated", "venue", a.Name(), "order", orderID,
				"qty", *upd.Quantity, "native_qty", newQty)
		}
	}

	return nil
}

// replaceOddLot cancels an odd-lot order and resubmits its unfilled
// remainder at the new price. It reports whether the cancel leg succeeded;
// the resubmission is best effort.
func (a *Account) replaceOddLot(ctx context.Context, order domain.Order, raw Record, price float64) bool {
	filled, err := probeFloat(raw, "filled_qty")
	if err != nil {
		a.log.Warn("unreadable fill counter", "venue", a.Name(), "order", order.ID, "err", err)
		return false
	}
	total, err := probeFloat(raw, "after_qty", "quantity")
	if err != nil {
		a.log.Warn("unreadable order quantity", "venue", a.Name(), "order", order.ID, "err", err)
		return false
	}
	remainder := total - filled

	reply, err := a.session.ModifyQuantity(ctx, raw, 0)
	if e := replyErr(reply, err); e != nil {
		a.log.Warn("odd lot cancel failed", "venue", a.Name(), "order", order.ID, "err", e)
		return false
	}
	a.log.Info("odd lot order cancelled for reprice", "venue", a.Name(), "order", order.ID)

	if remainder > 0 {
		// Remainder is already in shares, the odd-lot native unit.
		id, err := a.CreateOrder(ctx, account.OrderRequest{
			Side:      order.Side,
			Symbol:    order.Symbol,
			Quantity:  remainder,
			Price:     price,
			OddLot:    true,
			Condition: domain.ConditionCash,
		})
		if err != nil {
			a.log.Warn("odd lot resubmit rejected", "venue", a.Name(), "order", order.ID, "err", err)
		} else {
			a.log.Info("odd lot order resubmitted", "venue", a.Name(),
				"order", order.ID, "new_order", id, "price", price, "shares", remainder)
		}
	}
	return true
}

// CancelOrder cancels an open order. Orders the venue marks uncancellable
// and venue-side failures are logged without error; only an unknown id is
// reported back.
func (a *Account) CancelOrder(ctx context.Context, orderID string) error {
	orders := a.GetOrders(ctx)
	order, ok := orders[orderID]
	if !ok {
		return account.ErrOrderNotFound
	}
	raw, _ := order.Raw.(Record)

	if can, ok := probeBool(raw, "can_cancel"); ok && !can {
		a.log.Warn("order not cancellable", "venue", a.Name(), "order", orderID)
		return nil
	}

	reply, err := a.session.CancelOrder(ctx, raw)
	if e := replyErr(reply, err); e != nil {
		a.log.Warn("cancel failed", "venue", a.Name(), "order", orderID, "err", e)
		return nil
	}
	a.log.Info("order cancelled", "venue", a.Name(), "order", orderID)
	return nil
}
