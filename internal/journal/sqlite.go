package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tradegate/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ OrderJournal = (*SQLiteJournal)(nil)

// Times are stored as Unix milliseconds so round-trips never depend on the
// driver's text format.
const schema = `
CREATE TABLE IF NOT EXISTS order_snapshots (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	account     TEXT NOT NULL,
	order_id    TEXT NOT NULL,
	symbol      TEXT NOT NULL,
	side        TEXT NOT NULL,
	price       REAL NOT NULL,
	quantity    REAL NOT NULL,
	filled_qty  REAL NOT NULL,
	status      TEXT NOT NULL,
	condition   TEXT NOT NULL,
	order_time  INTEGER NOT NULL,
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_account_order ON order_snapshots(account, order_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_recorded ON order_snapshots(account, recorded_at);
`

// SQLiteJournal implements OrderJournal backed by a SQLite database.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens (or creates) a SQLite database at dbPath, applies
// the schema, and returns a ready-to-use journal.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring journal db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

// Close closes the underlying database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// ---------------------------------------------------------------------------
// OrderJournal implementation
// ---------------------------------------------------------------------------

// RecordOrders appends one snapshot row per order inside a single
// transaction. The whole batch shares one recording timestamp.
func (j *SQLiteJournal) RecordOrders(ctx context.Context, account string, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_snapshots
			(account, order_id, symbol, side, price, quantity, filled_qty, status, condition, order_time, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	recordedAt := time.Now().UnixMilli()
	for _, o := range orders {
		_, err := stmt.ExecContext(ctx,
			account, o.ID, o.Symbol, string(o.Side), o.Price, o.Quantity,
			o.FilledQty, string(o.Status), string(o.Condition),
			o.Time.UnixMilli(), recordedAt)
		if err != nil {
			return fmt.Errorf("recording order %s: %w", o.ID, err)
		}
	}
	return tx.Commit()
}

// OpenOrders returns the latest snapshot per order id, filtered to orders
// whose most recent state is not terminal.
func (j *SQLiteJournal) OpenOrders(ctx context.Context, account string) ([]Snapshot, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT account, order_id, symbol, side, price, quantity, filled_qty, status, condition, order_time, recorded_at
		FROM order_snapshots
		WHERE account = ?
		  AND id IN (SELECT MAX(id) FROM order_snapshots WHERE account = ? GROUP BY order_id)
		  AND status NOT IN (?, ?)
		ORDER BY order_time, id`,
		account, account, string(domain.OrderStatusFilled), string(domain.OrderStatusCancelled))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// History returns every snapshot recorded within [start, end], oldest first.
// An empty symbol matches all symbols.
func (j *SQLiteJournal) History(ctx context.Context, account, symbol string, start, end time.Time) ([]Snapshot, error) {
	query := `
		SELECT account, order_id, symbol, side, price, quantity, filled_qty, status, condition, order_time, recorded_at
		FROM order_snapshots
		WHERE account = ? AND recorded_at >= ? AND recorded_at <= ?`
	args := []any{account, start.UnixMilli(), end.UnixMilli()}
	if symbol != "" {
		query += " AND symbol = ?"
		args = append(args, symbol)
	}
	query += " ORDER BY recorded_at, id"

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

func scanSnapshots(rows *sql.Rows) ([]Snapshot, error) {
	var snaps []Snapshot
	for rows.Next() {
		var (
			s                   Snapshot
			side, status, cond  string
			orderMs, recordedMs int64
		)
		err := rows.Scan(&s.Account, &s.Order.ID, &s.Order.Symbol, &side,
			&s.Order.Price, &s.Order.Quantity, &s.Order.FilledQty,
			&status, &cond, &orderMs, &recordedMs)
		if err != nil {
			return nil, err
		}
		s.Order.Side = domain.OrderSide(side)
		s.Order.Status = domain.OrderStatus(status)
		s.Order.Condition = domain.Condition(cond)
		s.Order.Time = time.UnixMilli(orderMs)
		s.RecordedAt = time.UnixMilli(recordedMs)
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}
