package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"tradegate/internal/account"
	"tradegate/internal/alpaca"
	"tradegate/internal/config"
	"tradegate/internal/domain"
	"tradegate/internal/fubon"
	"tradegate/internal/httpapi"
	"tradegate/internal/journal"
	"tradegate/internal/refprice"
	"tradegate/internal/util"
)

func main() {
	// .env is optional; deployed environments set variables directly.
	_ = godotenv.Load()

	cfgPath := flag.String("config", defaultConfigPath(), "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	if cfg.Profiling.Address != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: cfg.Profiling.AppName,
			ServerAddress:   cfg.Profiling.Address,
			Tags:            map[string]string{"venue": cfg.Venue},
		})
		if err != nil {
			logger.Warn("starting profiler", "error", err)
		} else {
			defer profiler.Stop()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	acct, closeAcct, err := connectVenue(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("connecting to %s: %v", cfg.Venue, err)
	}
	defer closeAcct()

	var jnl journal.OrderJournal
	if cfg.Storage.SQLitePath != "" {
		sj, err := journal.NewSQLiteJournal(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening order journal: %v", err)
		}
		defer sj.Close()
		jnl = sj
	}

	prices := refprice.NewService(func(ctx context.Context, symbols []string) (map[string]domain.PriceInfo, error) {
		return acct.GetPriceInfo(ctx, symbols), nil
	}, logger)

	srv := httpapi.NewServer(acct, jnl, prices,
		rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst), logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("tradegate listening", "addr", httpServer.Addr, "venue", acct.Name())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("TRADEGATE_CONFIG"); p != "" {
		return p
	}
	return "config/tradegate.yaml"
}

// connectVenue builds the account adapter for the configured venue. The
// fubon bridge sidecar may still be starting, so its dial is retried.
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
