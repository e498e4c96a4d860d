package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"tradegate/internal/domain"
)

// Compile-time interface check.
var _ TradeLog = (*ParquetTradeLog)(nil)

// ParquetTradeLog implements TradeLog using Parquet files on disk, one file
// per account and trade date.
type ParquetTradeLog struct {
	DataDir string
}

// NewParquetTradeLog creates a trade log rooted at the given data directory.
func NewParquetTradeLog(dataDir string) *ParquetTradeLog {
	return &ParquetTradeLog{DataDir: dataDir}
}

// FillRecord is the Parquet schema for filled trades.
type FillRecord struct {
	ID        string  `parquet:"id"`
	Symbol    string  `parquet:"symbol"`
	Side      string  `parquet:"side"`
	Price     float64 `parquet:"price"`
	Quantity  float64 `parquet:"quantity"`
	Condition string  `parquet:"condition"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
}

// ---------------------------------------------------------------------------
// TradeLog implementation
// ---------------------------------------------------------------------------

// WriteTrades writes fills to Parquet files organized by account and date.
// Each account+date combination produces a separate file at:
//
//	<DataDir>/trades/<account>/<YYYY-MM-DD>.parquet
//
// Re-writing a date merges with what is already on disk instead of
// overwriting it.
func (l *ParquetTradeLog) WriteTrades(_ context.Context, account string, trades []domain.Order) error {
	if len(trades) == 0 {
		return nil
	}

	groups := make(map[string][]FillRecord)
	for _, t := range trades {
		date := t.Time.Format("2006-01-02")
		groups[date] = append(groups[date], FillRecord{
			ID:        t.ID,
			Symbol:    t.Symbol,
			Side:      string(t.Side),
			Price:     t.Price,
			Quantity:  t.Quantity,
			Condition: string(t.Condition),
			Timestamp: t.Time.UnixMilli(),
		})
	}

	for date, records := range groups {
		day, _ := time.Parse("2006-01-02", date)
		path := l.tradePath(account, day)

		existing, _ := readParquetFile[FillRecord](path)
		merged := mergeFillRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing trades for %s/%s: %w", account, date, err)
		}
	}
	return nil
}

// ReadTrades reads fills for the given account whose timestamp falls within
// [start, end]. Days without a file are skipped.
func (l *ParquetTradeLog) ReadTrades(_ context.Context, account string, start, end time.Time) ([]domain.Order, error) {
	var trades []domain.Order
	for d := dateOf(start); !d.After(dateOf(end)); d = d.AddDate(0, 0, 1) {
		path := l.tradePath(account, d)
		records, err := readParquetFile[FillRecord](path)
		if err != nil {
			continue
		}
		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp)
			if ts.Before(start) || ts.After(end) {
				continue
			}
			trades = append(trades, domain.Order{
				ID:        r.ID,
				Symbol:    r.Symbol,
				Side:      domain.OrderSide(r.Side),
				Price:     r.Price,
				Quantity:  r.Quantity,
				FilledQty: r.Quantity,
				Status:    domain.OrderStatusFilled,
				Condition: domain.Condition(r.Condition),
				Time:      ts,
			})
		}
	}
	return trades, nil
}

// tradePath returns the filesystem path for a fill Parquet file.
// Layout: <dataDir>/trades/<account>/<YYYY-MM-DD>.parquet
func (l *ParquetTradeLog) tradePath(account string, t time.Time) string {
	return filepath.Join(l.DataDir, "trades", account, t.Format("2006-01-02")+".parquet")
}

// dateOf truncates t to midnight in its own location, so day iteration
// covers every file a window touches regardless of the bounds' clock times.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeFillRecords deduplicates fills by id, preferring new records over
// existing ones. Results are sorted by timestamp, then id for stability.
func mergeFillRecords(existing, incoming []FillRecord) []FillRecord {
	seen := make(map[string]FillRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.ID] = r
	}
	for _, r := range incoming {
		seen[r.ID] = r
	}

	merged := make([]FillRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Timestamp != merged[j].Timestamp {
			return merged[i].Timestamp < merged[j].Timestamp
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}
