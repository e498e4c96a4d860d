// Package journal persists what the venue adapters observe: order snapshots
// go into SQLite for lifecycle queries, filled trades go into Parquet files
// for archival and export.
package journal

import (
	"context"
	"time"

	"tradegate/internal/domain"
)

// Snapshot is one recorded observation of an order's state. The journal is
// append-only; an order that changes state shows up as a new snapshot, never
// as an update to an old one.
type Snapshot struct {
	Account    string       `json:"account"`
	RecordedAt time.Time    `json:"recorded_at"`
	Order      domain.Order `json:"order"`
}

// OrderJournal records order snapshots and answers lifecycle queries.
type OrderJournal interface {
	// RecordOrders appends one snapshot per order, all stamped with the
	// same recording time.
	RecordOrders(ctx context.Context, account string, orders []domain.Order) error

	// OpenOrders returns the latest snapshot of every order whose most
	// recent state is not terminal.
	OpenOrders(ctx context.Context, account string) ([]Snapshot, error)

	// History returns all snapshots recorded within [start, end], oldest
	// first. An empty symbol matches every symbol.
	History(ctx context.Context, account, symbol string, start, end time.Time) ([]Snapshot, error)
}

// TradeLog persists and retrieves filled trades.
type TradeLog interface {
	// WriteTrades persists a batch of fills for the given account.
	WriteTrades(ctx context.Context, account string, trades []domain.Order) error

	// ReadTrades returns fills for the given account within [start, end].
	ReadTrades(ctx context.Context, account string, start, end time.Time) ([]domain.Order, error)
}
