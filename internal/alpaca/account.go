// Package alpaca implements the canonical account interface for the Alpaca
// brokerage. Unlike the Taiwan venue there is no odd-lot split and no price
// band, so quantities pass through as share counts and price limits are
// synthesized where the caller expects them.
package alpaca

import (
	"context"
	"log/slog"
	"time"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"tradegate/internal/account"
	"tradegate/internal/domain"
	"tradegate/internal/util"
)

// Compile-time interface checks.
var (
	_ account.Account = (*Account)(nil)
	_ Trader          = (*alpacaapi.Client)(nil)
	_ Quoter          = (*marketdata.Client)(nil)
)

// Trader is the slice of the Alpaca trading client this adapter uses.
type Trader interface {
	GetAccount() (*alpacaapi.Account, error)
	GetOrders(req alpacaapi.GetOrdersRequest) ([]alpacaapi.Order, error)
	PlaceOrder(req alpacaapi.PlaceOrderRequest) (*alpacaapi.Order, error)
	ReplaceOrder(orderID string, req alpacaapi.ReplaceOrderRequest) (*alpacaapi.Order, error)
	CancelOrder(orderID string) error
	GetPositions() ([]alpacaapi.Position, error)
	GetAccountActivities(req alpacaapi.GetAccountActivitiesRequest) ([]alpacaapi.AccountActivity, error)
}

// Quoter is the slice of the Alpaca market-data client this adapter uses.
type Quoter interface {
	GetSnapshot(symbol string, req marketdata.GetSnapshotRequest) (*marketdata.Snapshot, error)
}

// The free data plan allows 200 requests per minute; quote fan-outs pace
// themselves under that.
var quotePace = rate.Every(time.Minute / 200)

const quoteBurst = 5

// Pattern day traders below this equity are blocked from opening day
// trades (FINRA rule 4210).
var pdtEquityFloor = decimal.NewFromInt(25000)

// Options carries the venue credentials and endpoints. Empty URLs fall back
// to the SDK defaults (the paper/live split is chosen by BaseURL).
type Options struct {
	APIKey      string
	APISecret   string
	BaseURL     string
	DataBaseURL string
}

// Account adapts the Alpaca brokerage to the canonical account interface.
type Account struct {
	trader  Trader
	quoter  Quoter
	log     *slog.Logger
	cal     *util.TradingCalendar
	limiter *rate.Limiter
}

// Connect builds the SDK clients from the given options and wraps them in
// an Account.
func Connect(opts Options, logger *slog.Logger) *Account {
	trading := alpacaapi.ClientOpts{APIKey: opts.APIKey, APISecret: opts.APISecret}
	if opts.BaseURL != "" {
		trading.BaseURL = opts.BaseURL
	}
	data := marketdata.ClientOpts{APIKey: opts.APIKey, APISecret: opts.APISecret}
	if opts.DataBaseURL != "" {
		data.BaseURL = opts.DataBaseURL
	}
	return NewAccount(alpacaapi.NewClient(trading), marketdata.NewClient(data), logger)
}

// NewAccount wraps already constructed venue clients. A nil logger falls
// back to the default logger.
func NewAccount(trader Trader, quoter Quoter, logger *slog.Logger) *Account {
	if logger == nil {
		logger = slog.Default()
	}
	return &Account{
		trader:  trader,
		quoter:  quoter,
		log:     logger,
		cal:     util.NewTradingCalendar(domain.MarketUS),
		limiter: rate.NewLimiter(quotePace, quoteBurst),
	}
}

// Name returns the venue identifier.
func (a *Account) Name() string { return "alpaca" }

// SeparateOddLot returns false: fractional and whole shares trade on the
// same book.
func (a *Account) SeparateOddLot() bool { return false }

// GetCash returns the account's cash balance.
func (a *Account) GetCash(ctx context.Context) float64 {
	acct, err := a.trader.GetAccount()
	if err != nil {
		a.log.Warn("account query failed", "venue", a.Name(), "err", err)
		return 0
	}
	return acct.Cash.InexactFloat64()
}

// GetTotalBalance returns the account equity, the venue's own liquidation
// valuation.
func (a *Account) GetTotalBalance(ctx context.Context) float64 {
	acct, err := a.trader.GetAccount()
	if err != nil {
		a.log.Warn("account query failed", "venue", a.Name(), "err", err)
		return 0
	}
	return acct.Equity.InexactFloat64()
}

// GetSettlement returns zero: the venue nets pending settlement into the
// reported cash balance.
func (a *Account) GetSettlement(ctx context.Context) float64 {
	a.log.Debug("settlement is netted into cash at this venue", "venue", a.Name())
	return 0
}

// GetPosition returns current holdings in shares. Short positions carry a
// negative quantity and the short condition.
func (a *Account) GetPosition(ctx context.Context) []domain.Position {
	positions, err := a.trader.GetPositions()
	if err != nil {
		a.log.Warn("position query failed", "venue", a.Name(), "err", err)
		return nil
	}

	out := make([]domain.Position, 0, len(positions))
	for _, p := range positions {
		cond := domain.ConditionCash
		if p.Side == "short" {
			cond = domain.ConditionShort
		}
		out = append(out, domain.Position{
			Symbol:    p.Symbol,
			Quantity:  p.Qty.InexactFloat64(),
			Condition: cond,
		})
	}
	return out
}

// SupportDayTrade reports whether the account may open day-trade positions.
// An account flagged as a pattern day trader must hold the regulatory
// equity floor; everyone else keeps the standard allowance.
func (a *Account) SupportDayTrade(ctx context.Context) bool {
	acct, err := a.trader.GetAccount()
	if err != nil {
		a.log.Warn("account query failed", "venue", a.Name(), "err", err)
		return false
	}
	return !acct.PatternDayTrader || acct.Equity.GreaterThanOrEqual(pdtEquityFloor)
}
