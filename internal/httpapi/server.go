package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tradegate/internal/account"
	"tradegate/internal/domain"
	"tradegate/internal/journal"
)

// PriceSource answers reference-price lookups. *refprice.Service implements
// it; when nil the server falls back to the account's own price info.
type PriceSource interface {
	Get(ctx context.Context, symbols []string) map[string]domain.PriceInfo
}

// Server serves the ops HTTP API over one venue account.
type Server struct {
	account account.Account
	journal journal.OrderJournal
	prices  PriceSource
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewServer creates an ops API server. journal and prices may be nil; the
// endpoints that need them degrade (history returns 503, prices fall back
// to the account). A nil limiter disables rate limiting.
func NewServer(acct account.Account, jnl journal.OrderJournal, prices PriceSource, limiter *rate.Limiter, logger *slog.Logger) *Server {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		account: acct,
		journal: jnl,
		prices:  prices,
		limiter: limiter,
		log:     logger,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/account/summary", s.handleSummary)
	mux.HandleFunc("GET /api/account/positions", s.handlePositions)
	mux.HandleFunc("GET /api/account/orders", s.handleOrders)
	mux.HandleFunc("GET /api/account/orders/history", s.handleOrderHistory)
	mux.HandleFunc("GET /api/quotes", s.handleQuotes)
	mux.HandleFunc("GET /api/prices", s.handlePrices)
	mux.HandleFunc("GET /api/trades", s.handleTrades)
	mux.HandleFunc("POST /api/orders", s.handleCreateOrder)
	mux.HandleFunc("PATCH /api/orders/{id}", s.handleUpdateOrder)
	mux.HandleFunc("DELETE /api/orders/{id}", s.handleCancelOrder)
}

// Handler returns the full middleware stack: request logging, rate
// limiting, CORS, then the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.logRequests(s.rateLimit(corsMiddleware(mux)))
}

// ---------------------------------------------------------------------------
// Read endpoints
// ---------------------------------------------------------------------------

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, SummaryResponse{
		Name:         s.account.Name(),
		Cash:         s.account.GetCash(ctx),
		Settlement:   s.account.GetSettlement(ctx),
		TotalBalance: s.account.GetTotalBalance(ctx),
	})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions := s.account.GetPosition(r.Context())
	if positions == nil {
		positions = []domain.Position{}
	}
	writeJSON(w, PositionsResponse{Positions: positions})
}

// handleOrders serves the live order snapshot and journals it as a side
// effect, so the history endpoint sees every state the gateway observed.
func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orders := sortedOrders(s.account.GetOrders(ctx))

	if s.journal != nil {
		if err := s.journal.RecordOrders(ctx, s.account.Name(), orders); err != nil {
			s.log.Warn("journaling order snapshots", "error", err)
		}
	}

	writeJSON(w, OrdersResponse{Orders: orders})
}

func (s *Server) handleOrderHistory(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "order journal not configured")
		return
	}

	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	symbol := r.URL.Query().Get("symbol")

	snaps, err := s.journal.History(r.Context(), s.account.Name(), symbol, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reading order history")
		return
	}
	if snaps == nil {
		snaps = []journal.Snapshot{}
	}
	writeJSON(w, HistoryResponse{Snapshots: snaps})
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	symbols := parseSymbols(r)
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "symbols required")
		return
	}

	quotes := s.account.GetStocks(r.Context(), symbols)
	if quotes == nil {
		quotes = map[string]domain.Quote{}
	}
	writeJSON(w, QuotesResponse{Quotes: quotes})
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	symbols := parseSymbols(r)
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "symbols required")
		return
	}

	var prices map[string]domain.PriceInfo
	if s.prices != nil {
		prices = s.prices.Get(r.Context(), symbols)
	} else {
		prices = s.account.GetPriceInfo(r.Context(), symbols)
	}
	if prices == nil {
		prices = map[string]domain.PriceInfo{}
	}
	writeJSON(w, PricesResponse{Prices: prices})
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trades := s.account.GetTrades(r.Context(), start, end)
	if trades == nil {
		trades = []domain.Order{}
	}
	writeJSON(w, TradesResponse{Trades: trades})
}

// ---------------------------------------------------------------------------
// Order mutation endpoints
// ---------------------------------------------------------------------------

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var body CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	side, err := parseSide(body.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cond, err := parseCondition(body.Condition)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := account.OrderRequest{
		Side:           side,
		Symbol:         body.Symbol,
		Quantity:       body.Quantity,
		Price:          body.Price,
		MarketOrder:    body.MarketOrder,
		BestPriceLimit: body.BestPriceLimit,
		OddLot:         body.OddLot,
		Condition:      cond,
	}

	id, err := s.account.CreateOrder(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if id == "" {
		writeError(w, http.StatusBadGateway, "order rejected by venue")
		return
	}
	writeJSON(w, CreateOrderResponse{OrderID: id})
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var body UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	upd := account.OrderUpdate{Price: body.Price, Quantity: body.Quantity}
	err := s.account.UpdateOrder(r.Context(), r.PathValue("id"), upd)
	switch {
	case errors.Is(err, account.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	err := s.account.CancelOrder(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, account.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("http request",
			"method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// sortedOrders flattens an order map into a slice ordered by submission
// time, then id, so responses are deterministic.
func sortedOrders(m map[string]domain.Order) []domain.Order {
	orders := make([]domain.Order, 0, len(m))
	for _, o := range m {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].Time.Equal(orders[j].Time) {
			return orders[i].Time.Before(orders[j].Time)
		}
		return orders[i].ID < orders[j].ID
	})
	return orders
}

// parseSymbols splits the comma-separated "symbols" query param.
func parseSymbols(r *http.Request) []string {
	var symbols []string
	for _, s := range strings.Split(r.URL.Query().Get("symbols"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// parseWindow reads the start/end date params (YYYY-MM-DD). end defaults to
// start, and the returned end bound covers the whole end day.
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()

	startStr := q.Get("start")
	if startStr == "" {
		return time.Time{}, time.Time{}, errors.New("start date required (YYYY-MM-DD)")
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad start date %q", startStr)
	}

	endStr := q.Get("end")
	if endStr == "" {
		endStr = startStr
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad end date %q", endStr)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end date before start date")
	}

	return start, end.AddDate(0, 0, 1).Add(-time.Millisecond), nil
}

func parseSide(s string) (domain.OrderSide, error) {
	switch s {
	case "buy":
		return domain.OrderSideBuy, nil
	case "sell":
		return domain.OrderSideSell, nil
	}
	return "", fmt.Errorf("side must be %q or %q, got %q", "buy", "sell", s)
}

func parseCondition(s string) (domain.Condition, error) {
	switch s {
	case "", "cash":
		return domain.ConditionCash, nil
	case "margin":
		return domain.ConditionMargin, nil
	case "short":
		return domain.ConditionShort, nil
	case "day_trade":
		return domain.ConditionDayTrade, nil
	}
	return "", fmt.Errorf("unknown condition %q", s)
}
