package alpaca

import (
	"context"
	"sync"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"golang.org/x/sync/errgroup"

	"tradegate/internal/domain"
)

// GetStocks fetches one snapshot per symbol, fanned out concurrently under
// the shared rate limiter. Symbols the venue cannot quote are absent from
// the result.
func (a *Account) GetStocks(ctx context.Context, symbols []string) map[string]domain.Quote {
	var (
		mu  sync.Mutex
		out = make(map[string]domain.Quote, len(symbols))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, symbol := range symbols {
		g.Go(func() error {
			if err := a.limiter.Wait(gctx); err != nil {
				return err
			}
			snap, err := a.quoter.GetSnapshot(symbol, marketdata.GetSnapshotRequest{})
			if err != nil {
				a.log.Warn("snapshot query failed", "venue", a.Name(), "symbol", symbol, "err", err)
				return nil
			}
			if snap == nil {
				return nil
			}
			q := normalizeSnapshot(symbol, snap)
			mu.Lock()
			out[symbol] = q
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.log.Warn("quote fan-out interrupted", "venue", a.Name(), "err", err)
	}
	return out
}

func normalizeSnapshot(symbol string, snap *marketdata.Snapshot) domain.Quote {
	q := domain.Quote{Symbol: symbol}
	if bar := snap.DailyBar; bar != nil {
		q.Open = bar.Open
		q.High = bar.High
		q.Low = bar.Low
		q.Close = bar.Close
	}
	if lq := snap.LatestQuote; lq != nil {
		q.BidPrice = lq.BidPrice
		q.BidVolume = float64(lq.BidSize)
		q.AskPrice = lq.AskPrice
		q.AskVolume = float64(lq.AskSize)
	}
	return q
}

// GetPriceInfo returns the latest daily close per symbol with synthesized
// price limits. The venue has no bands, so the limits are set wide at half
// and one and a half times the close; immediate execution should use market
// orders instead.
func (a *Account) GetPriceInfo(ctx context.Context, symbols []string) map[string]domain.PriceInfo {
	out := make(map[string]domain.PriceInfo, len(symbols))
	for _, symbol := range symbols {
		ref, ok := a.latestClose(ctx, symbol)
		if !ok {
			continue
		}
		out[symbol] = domain.PriceInfo{
			Symbol:    symbol,
			Close:     ref,
			LimitUp:   ref * 1.5,
			LimitDown: ref * 0.5,
		}
	}
	return out
}

// latestClose reads a symbol's reference price from its snapshot: the daily
// bar close, or the latest trade when the bar is not yet formed.
func (a *Account) latestClose(ctx context.Context, symbol string) (float64, bool) {
	if err := a.limiter.Wait(ctx); err != nil {
		return 0, false
	}
	snap, err := a.quoter.GetSnapshot(symbol, marketdata.GetSnapshotRequest{})
	if err != nil {
		a.log.Warn("snapshot query failed", "venue", a.Name(), "symbol", symbol, "err", err)
		return 0, false
	}
	if snap == nil {
		return 0, false
	}
	switch {
	case snap.DailyBar != nil && snap.DailyBar.Close > 0:
		return snap.DailyBar.Close, true
	case snap.LatestTrade != nil && snap.LatestTrade.Price > 0:
		return snap.LatestTrade.Price, true
	}
	return 0, false
}
