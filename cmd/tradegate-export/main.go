// One-shot tool: pull fills for a date window from the venue and persist
// them to the parquet trade log and the sqlite order journal.
//
// Usage:
//
//	go run cmd/tradegate-export/main.go [-config path] [-start D] [-end D]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"tradegate/internal/account"
	"tradegate/internal/alpaca"
	"tradegate/internal/config"
	"tradegate/internal/domain"
	"tradegate/internal/fubon"
	"tradegate/internal/journal"
	"tradegate/internal/util"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", defaultConfigPath(), "path to the YAML config")
	startFlag := flag.String("start", "", "window start (YYYY-MM-DD, default latest finished trading day)")
	endFlag := flag.String("end", "", "window end (YYYY-MM-DD, default same as start)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	market := domain.MarketUS
	if cfg.Venue == "fubon" {
		market = domain.MarketTW
	}
	cal := util.NewTradingCalendar(market)

	start, end, err := resolveWindow(cal, *startFlag, *endFlag)
	if err != nil {
		log.Fatalf("error: %v", err)
	}

	ctx := context.Background()
	acct, closeAcct, err := connectVenue(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to connect to venue: %v", err)
	}
	defer closeAcct()

	trades := acct.GetTrades(ctx, start, end)
	if len(trades) == 0 {
		slog.Info("no fills in window", "start", start.Format("2006-01-02"), "end", end.Format("2006-01-02"))
		return
	}

	tradeLog := journal.NewParquetTradeLog(cfg.Storage.DataDir)
	if err := tradeLog.WriteTrades(ctx, acct.Name(), trades); err != nil {
		log.Fatalf("failed to write trade log: %v", err)
	}

	if cfg.Storage.SQLitePath != "" {
		jnl, err := journal.NewSQLiteJournal(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open order journal: %v", err)
		}
		defer jnl.Close()
		if err := jnl.RecordOrders(ctx, acct.Name(), trades); err != nil {
			log.Fatalf("failed to journal fills: %v", err)
		}
	}

	slog.Info("export complete",
		"account", acct.Name(),
		"fills", len(trades),
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"))
}

// resolveWindow turns the optional flag values into a full-day window. With
// no flags it exports the latest finished trading day.
func resolveWindow(cal *util.TradingCalendar, startFlag, endFlag string) (time.Time, time.Time, error) {
	start := cal.LatestFinishedTradingDay(time.Now())
	if startFlag != "" {
		d, err := time.ParseInLocation("2006-01-02", startFlag, cal.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad start date %q", startFlag)
		}
		start = d
	}
	end := start
	if endFlag != "" {
		d, err := time.ParseInLocation("2006-01-02", endFlag, cal.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad end date %q", endFlag)
		}
		end = d
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date before start date")
	}
	from, to := cal.DayWindow(start, end)
	return from, to, nil
}

func defaultConfigPath() string {
	if p := os.Getenv("TRADEGATE_CONFIG"); p != "" {
		return p
	}
	return "config/tradegate.yaml"
}

func connectVenue(ctx context.Context, cfg *config.Config, logger *slog.Logger) (account.Account, func() error, error) {
	switch cfg.Venue {
	case "fubon":
		var (
			session *fubon.RestSession
			acctRec fubon.Record
		)
		err := util.Retry(ctx, 3, 2*time.Second, func() error {
			var derr error
			session, acctRec, derr = fubon.Dial(ctx, cfg.Fubon.BaseURL, fubon.Credentials{
				NationalID:  cfg.Fubon.NationalID,
				Account:     cfg.Fubon.Account,
				AccountPass: cfg.Fubon.AccountPass,
				CertPath:    cfg.Fubon.CertPath,
				CertPass:    cfg.Fubon.CertPass,
			}, logger)
			return derr
		})
		if err != nil {
			return nil, nil, err
		}
		cooldown := time.Duration(cfg.Limits.PositionCooldownSec) * time.Second
		a := fubon.NewAccount(session, acctRec, cooldown, logger)
		return a, a.Close, nil

	case "alpaca":
		a := alpaca.Connect(alpaca.Options{
			APIKey:      cfg.Alpaca.APIKey,
			APISecret:   cfg.Alpaca.APISecret,
			BaseURL:     cfg.Alpaca.BaseURL,
			DataBaseURL: cfg.Alpaca.DataURL,
		}, logger)
		return a, func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown venue %q", cfg.Venue)
}
