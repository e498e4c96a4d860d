package alpaca

import (
	"context"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradegate/internal/account"
	"tradegate/internal/domain"
)

// GetOrders returns the open orders keyed by venue order id.
func (a *Account) GetOrders(ctx context.Context) map[string]domain.Order {
	orders, err := a.trader.GetOrders(alpacaapi.GetOrdersRequest{Status: "open"})
	if err != nil {
		a.log.Warn("order query failed", "venue", a.Name(), "err", err)
		return map[string]domain.Order{}
	}

	out := make(map[string]domain.Order, len(orders))
	for _, o := range orders {
		ord := normalizeOrder(o)
		out[ord.ID] = ord
	}
	return out
}

func normalizeOrder(o alpacaapi.Order) domain.Order {
	total := 0.0
	if o.Qty != nil {
		total = o.Qty.InexactFloat64()
	}
	filled := o.FilledQty.InexactFloat64()

	price := 0.0
	if o.LimitPrice != nil {
		price = o.LimitPrice.InexactFloat64()
	}

	side := domain.OrderSideBuy
	if o.Side == alpacaapi.Sell {
		side = domain.OrderSideSell
	}

	ts := o.SubmittedAt
	if ts.IsZero() {
		ts = o.CreatedAt
	}

	return domain.Order{
		ID:        o.ID,
		Symbol:    o.Symbol,
		Side:      side,
		Price:     price,
		Quantity:  total,
		FilledQty: filled,
		Status:    resolveStatus(o.Status, filled, total),
		Condition: domain.ConditionCash,
		Time:      ts,
		Raw:       o,
	}
}

// resolveStatus maps the venue status string, overriding to partially
// filled whenever the fill counters say so and the order is not cancelled.
func resolveStatus(status string, filled, total float64) domain.OrderStatus {
	st := mapStatus(status)
	if filled > 0 && filled < total && st != domain.OrderStatusCancelled {
		return domain.OrderStatusPartiallyFilled
	}
	return st
}

func mapStatus(status string) domain.OrderStatus {
	switch status {
	case "filled":
		return domain.OrderStatusFilled
	case "partially_filled":
		return domain.OrderStatusPartiallyFilled
	case "canceled", "expired", "rejected", "replaced", "done_for_day", "stopped", "suspended":
		return domain.OrderStatusCancelled
	default:
		// new, accepted and the various pending states are all live.
		return domain.OrderStatusNew
	}
}

// CreateOrder validates and places an order. Market orders go out as native
// market orders. Pegged orders rest at a synthesized extreme since the
// venue has no price bands: half the reference close for buys, one and a
// half times it for sells.
func (a *Account) CreateOrder(ctx context.Context, req account.OrderRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	side := alpacaapi.Buy
	if req.Side == domain.OrderSideSell {
		side = alpacaapi.Sell
	}
	qty := decimal.NewFromFloat(req.Quantity)

	place := alpacaapi.PlaceOrderRequest{
		Symbol:        req.Symbol,
		Qty:           &qty,
		Side:          side,
		TimeInForce:   alpacaapi.Day,
		ClientOrderID: uuid.NewString(),
	}

	switch {
	case req.MarketOrder:
		place.Type = alpacaapi.Market
	case req.BestPriceLimit:
		ref, ok := a.latestClose(ctx, req.Symbol)
		if !ok {
			a.log.Warn("no reference close for pegged limit", "venue", a.Name(), "symbol", req.Symbol)
			return "", nil
		}
		peg := ref * 0.5
		if req.Side == domain.OrderSideSell {
			peg = ref * 1.5
		}
		lp := formatLimit(peg)
		place.Type = alpacaapi.Limit
		place.LimitPrice = &lp
	default:
		lp := formatLimit(req.Price)
		place.Type = alpacaapi.Limit
		place.LimitPrice = &lp
	}

	order, err := a.trader.PlaceOrder(place)
	if err != nil {
		a.log.Warn("order rejected", "venue", a.Name(), "symbol", req.Symbol, "err", err)
		return "", nil
	}

	a.log.Info("order placed", "venue", a.Name(), "order", order.ID,
		"symbol", req.Symbol, "side", side, "qty", req.Quantity, "type", place.Type)
	return order.ID, nil
}

// UpdateOrder replaces an open order's price or quantity in one venue call.
// The venue assigns the replacement a fresh order id.
func (a *Account) UpdateOrder(ctx context.Context, orderID string, upd account.OrderUpdate) error {
	if upd.Empty() {
		return account.ErrNothingToUpdate
	}
	if _, ok := a.GetOrders(ctx)[orderID]; !ok {
		return account.ErrOrderNotFound
	}

	var req alpacaapi.ReplaceOrderRequest
	if upd.Price != nil {
		lp := formatLimit(*upd.Price)
		req.LimitPrice = &lp
	}
	if upd.Quantity != nil {
		// Replacement quantities are whole shares on this venue.
		q := decimal.NewFromInt(int64(*upd.Quantity))
		req.Qty = &q
	}

	replaced, err := a.trader.ReplaceOrder(orderID, req)
	if err != nil {
		a.log.Warn("replace failed", "venue", a.Name(), "order", orderID, "err", err)
		return nil
	}
	a.log.Info("order replaced", "venue", a.Name(), "order", orderID, "new_order", replaced.ID)
	return nil
}

// CancelOrder cancels an open order by id. Venue-side failures are logged;
// only an unknown id is reported back.
func (a *Account) CancelOrder(ctx context.Context, orderID string) error {
	if _, ok := a.GetOrders(ctx)[orderID]; !ok {
		return account.ErrOrderNotFound
	}
	if err := a.trader.CancelOrder(orderID); err != nil {
		a.log.Warn("cancel failed", "venue", a.Name(), "order", orderID, "err", err)
		return nil
	}
	a.log.Info("order cancelled", "venue", a.Name(), "order", orderID)
	return nil
}

// formatLimit truncates a price to the venue's sub-penny rule: two decimal
// places at or above a dollar, four below.
func formatLimit(price float64) decimal.Decimal {
	d := decimal.NewFromFloat(price)
	if d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return d.RoundDown(2)
	}
	return d.RoundDown(4)
}
