package fubon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tradegate/internal/account"
	"tradegate/internal/domain"
	"tradegate/internal/util"
)

// Account adapts one authenticated Fubon session to the canonical account
// interface. Read methods follow the shared fail-open contract: venue and
// payload faults are logged and degrade to zero values.
type Account struct {
	session Session
	acct    Record // login-time account record, carries the day-trade mark
	log     *slog.Logger
	cal     *util.TradingCalendar

	// Inventory queries share a venue-imposed cooldown. The mutex holds
	// concurrent callers in line while one of them waits it out.
	cooldown      time.Duration
	mu            sync.Mutex
	lastInventory time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

var _ account.Account = (*Account)(nil)

// NewAccount wraps an authenticated session. acct is the venue's account
// record from login. A non-positive cooldown selects the venue default of
// ten seconds between inventory queries.
func NewAccount(session Session, acct Record, cooldown time.Duration, logger *slog.Logger) *Account {
	if logger == nil {
		logger = slog.Default()
	}
	if cooldown <= 0 {
		cooldown = 10 * time.Second
	}
	cal := util.NewTradingCalendar(domain.MarketTW)
	return &Account{
		session:  session,
		acct:     acct,
		log:      logger,
		cal:      cal,
		cooldown: cooldown,
		now:      func() time.Time { return time.Now().In(cal.Location()) },
		sleep:    time.Sleep,
	}
}

// Name returns the venue identifier.
func (a *Account) Name() string { return "fubon" }

// SeparateOddLot reports true: the venue runs odd lots on separate books.
func (a *Account) SeparateOddLot() bool { return true }

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// GetOrders returns today's order snapshots keyed by order id. Snapshots
// whose shape cannot be read are skipped.
func (a *Account) GetOrders(ctx context.Context) map[string]domain.Order {
	orders := map[string]domain.Order{}

	reply, err := a.session.OrderResults(ctx)
	if e := replyErr(reply, err); e != nil {
		a.log.Warn("order results query failed", "venue", a.Name(), "err", e)
		return orders
	}

	for _, rec := range reply.Data {
		o, err := normalizeOrder(rec, a.now, a.cal.Location())
		if err != nil {
			a.log.Warn("skipping unreadable order snapshot", "venue", a.Name(), "err", err)
			continue
		}
		orders[o.ID] = o
	}
	return orders
}

// CreateOrder validates and places an order. A venue rejection is logged and
// reported as an empty order id with a nil error; only validation failures
// return an error.
func (a *Account) CreateOrder(ctx context.Context, req account.OrderRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	ticket := buildTicket(req, a.now())
	reply, err := a.session.PlaceOrder(ctx, ticket)
	if e := replyErr(reply, err); e != nil {
		a.log.Warn("order placement failed", "venue", a.Name(), "symbol", req.Symbol, "err", e)
		return "", nil
	}

	id := resolveOrderID(reply.First(), a.now)
	a.log.Debug("order placed", "venue", a.Name(), "order", id, "symbol", req.Symbol,
		"market", ticket.MarketType, "price_type", ticket.PriceType, "qty", ticket.Quantity)
	return id, nil
}

// ---------------------------------------------------------------------------
// Quotes
// ---------------------------------------------------------------------------

// GetStocks returns intraday quotes keyed by the requested symbol. Symbols
// the venue cannot serve are absent; an unreadable payload degrades to a
// zero quote so the symbol still shows up.
func (a *Account) GetStocks(ctx context.Context, symbols []string) map[string]domain.Quote {
	quotes := make(map[string]domain.Quote, len(symbols))

	for _, symbol := range symbols {
		rec, err := a.session.IntradayQuote(ctx, symbol)
		if err != nil {
			a.log.Warn("quote fetch failed", "venue", a.Name(), "symbol", symbol, "err", err)
			continue
		}
		if rec.IsZero() {
			a.log.Warn("venue returned no quote", "venue", a.Name(), "symbol", symbol)
			continue
		}

		q, err := normalizeQuote(rec, symbol)
		if err != nil {
			a.log.Warn("unreadable quote payload", "venue", a.Name(), "symbol", symbol, "err", err)
			quotes[symbol] = domain.Quote{Symbol: symbol}
			continue
		}
		quotes[symbol] = q
	}
	return quotes
}

// GetPriceInfo returns daily reference prices. Band limits come from the
// quote payload when present and are synthesized from the reference price
// at the venue's ten percent daily band otherwise.
func (a *Account) GetPriceInfo(ctx context.Context, symbols []string) map[string]domain.PriceInfo {
	infos := make(map[string]domain.PriceInfo, len(symbols))

	for _, symbol := range symbols {
		rec, err := a.session.IntradayQuote(ctx, symbol)
		if err != nil || rec.IsZero() {
			a.log.Warn("reference price fetch failed", "venue", a.Name(), "symbol", symbol, "err", err)
			continue
		}

		info, err := normalizePriceInfo(rec, symbol)
		if err != nil {
			a.log.Warn("unreadable reference price payload", "venue", a.Name(), "symbol", symbol, "err", err)
			continue
		}
		infos[symbol] = info
	}
	return infos
}

func normalizePriceInfo(r Record, symbol string) (domain.PriceInfo, error) {
	ref, err := probeFloat(r, "referencePrice", "reference_price", "previousClose", "close_price", "closePrice")
	if err != nil {
		return domain.PriceInfo{}, err
	}
	up, err := probeFloat(r, "limitUpPrice", "limit_up_price")
	if err != nil {
		return domain.PriceInfo{}, err
	}
	down, err := probeFloat(r, "limitDownPrice", "limit_down_price")
	if err != nil {
		return domain.PriceInfo{}, err
	}

	if up == 0 && ref > 0 {
		up = ref * 1.1
	}
	if down == 0 && ref > 0 {
		down = ref * 0.9
	}

	return domain.PriceInfo{Symbol: symbol, Close: ref, LimitUp: up, LimitDown: down}, nil
}

// ---------------------------------------------------------------------------
// Positions
// ---------------------------------------------------------------------------

// GetPosition returns current holdings in board-lot units. Odd-lot holdings
// appear as separate fractional entries, short positions as negative
// quantities. Consecutive calls honor the venue's inventory cooldown.
func (a *Account) GetPosition(ctx context.Context) []domain.Position {
	reply, err := a.throttledInventories(ctx)
	if e := replyErr(reply, err); e != nil {
		a.log.Warn("inventory query failed", "venue", a.Name(), "err", e)
		return []domain.Position{}
	}

	positions := []domain.Position{}
	for _, inv := range reply.Data {
		symbol, _ := probeString(inv, "stock_no")
		if symbol == "" {
			continue
		}

		cond := conditionFromCode(firstString(inv, "order_type"))
		sign := 1.0
		if cond == domain.ConditionShort {
			sign = -1
		}

		todayQty, err := probeFloat(inv, "today_qty")
		if err != nil {
			a.log.Warn("unreadable inventory entry", "venue", a.Name(), "symbol", symbol, "err", err)
			continue
		}

		if odd, ok := probeRecord(inv, "odd"); ok {
			oddQty, err := probeFloat(odd, "today_qty")
			if err != nil {
				a.log.Warn("unreadable odd lot entry", "venue", a.Name(), "symbol", symbol, "err", err)
				continue
			}
			if oddQty > 0 {
				positions = append(positions, domain.Position{
					Symbol:    symbol,
					Quantity:  oddQty / sharesPerLot * sign,
					Condition: cond,
				})
			}
		}

		if todayQty > 0 {
			positions = append(positions, domain.Position{
				Symbol:    symbol,
				Quantity:  todayQty / sharesPerLot * sign,
				Condition: cond,
			})
		}
	}

	a.log.Debug("positions fetched", "venue", a.Name(), "count", len(positions))
	return positions
}

// throttledInventories spaces inventory queries out by the venue cooldown.
// The timestamp is taken after the call returns so the cooldown covers the
// venue's own processing time.
func (a *Account) throttledInventories(ctx context.Context) (*Reply, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if wait := a.cooldown - a.now().Sub(a.lastInventory); wait > 0 {
		a.sleep(wait)
	}
	reply, err := a.session.Inventories(ctx)
	a.lastInventory = a.now()
	return reply, err
}

// firstString returns the named field coerced to a string, or "".
func firstString(r Record, names ...string) string {
	s, _ := probeString(r, names...)
	return s
}

// ---------------------------------------------------------------------------
// Day-trade capability
// ---------------------------------------------------------------------------

// SupportDayTrade reports whether the account may open day-trade positions.
// The login record's s_mark decides when present; otherwise the venue's
// account info is probed. Anything unreadable means no.
func (a *Account) SupportDayTrade(ctx context.Context) bool {
	if mark, ok := probeString(a.acct, "s_mark"); ok {
		switch mark {
		case "B", "Y", "A", "S":
			return true
		}
		return false
	}

	info, err := a.session.AccountInfo(ctx)
	if err != nil {
		a.log.Warn("account info query failed", "venue", a.Name(), "err", err)
		return false
	}
	if v, ok := probeBool(info, "day_trade_enabled", "day_trade", "dayTradeEnabled", "canDayTrade"); ok {
		return v
	}
	return false
}

// Close logs the session out.
func (a *Account) Close() error { return a.session.Close() }
