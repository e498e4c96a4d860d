package fubon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Credentials authenticate one venue account through the bridge.
type Credentials struct {
	NationalID  string
	Account     string
	AccountPass string
	CertPath    string
	CertPass    string
}

// RestSession talks to the venue through its JSON bridge, the sidecar that
// wraps the vendor SDK. The bridge binds the target account at login, so
// calls after Dial carry no account parameter.
type RestSession struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

var _ Session = (*RestSession)(nil)

// Dial authenticates against the bridge and selects the target account. It
// returns the live session together with the venue's record for that
// account, which carries the account-level flags.
func Dial(ctx context.Context, baseURL string, creds Credentials, logger *slog.Logger) (*RestSession, Record, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &RestSession{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger,
	}

	var reply Reply
	err := s.do(ctx, http.MethodPost, "/login", map[string]string{
		"national_id":  creds.NationalID,
		"account_pass": creds.AccountPass,
		"cert_path":    creds.CertPath,
		"cert_pass":    creds.CertPass,
	}, &reply)
	if err != nil {
		return nil, Record{}, fmt.Errorf("login: %w", err)
	}
	if e := replyErr(&reply, nil); e != nil {
		return nil, Record{}, fmt.Errorf("login: %w", e)
	}

	for _, acct := range reply.Data {
		if no, _ := probeString(acct, "account", "account_no"); no == creds.Account {
			err := s.do(ctx, http.MethodPost, "/accounts/select", map[string]string{"account": no}, nil)
			if err != nil {
				return nil, Record{}, fmt.Errorf("selecting account: %w", err)
			}
			logger.Info("venue session established", "venue", "fubon", "account", no)
			return s, acct, nil
		}
	}
	return nil, Record{}, fmt.Errorf("account %q not in login reply", creds.Account)
}

// Close logs the session out. Errors from the venue are returned but the
// local connections are released either way.
func (s *RestSession) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.do(ctx, http.MethodPost, "/logout", nil, nil)
	s.httpClient.CloseIdleConnections()
	return err
}

// ---------------------------------------------------------------------------
// Trading
// ---------------------------------------------------------------------------

func (s *RestSession) OrderResults(ctx context.Context) (*Reply, error) {
	return s.reply(ctx, http.MethodGet, "/trading/orders", nil)
}

func (s *RestSession) PlaceOrder(ctx context.Context, t Ticket) (*Reply, error) {
	return s.reply(ctx, http.MethodPost, "/trading/orders", t)
}

func (s *RestSession) ModifyPrice(ctx context.Context, raw Record, price string) (*Reply, error) {
	return s.reply(ctx, http.MethodPost, "/trading/orders/modify-price", map[string]any{
		"order": raw,
		"price": price,
	})
}

func (s *RestSession) ModifyQuantity(ctx context.Context, raw Record, quantity int) (*Reply, error) {
	return s.reply(ctx, http.MethodPost, "/trading/orders/modify-quantity", map[string]any{
		"order":    raw,
		"quantity": quantity,
	})
}

func (s *RestSession) CancelOrder(ctx context.Context, raw Record) (*Reply, error) {
	return s.reply(ctx, http.MethodPost, "/trading/orders/cancel", map[string]any{
		"order": raw,
	})
}

// ---------------------------------------------------------------------------
// Accounting
// ---------------------------------------------------------------------------

func (s *RestSession) BankRemain(ctx context.Context) (*Reply, error) {
	return s.reply(ctx, http.MethodGet, "/accounting/bank-remain", nil)
}

func (s *RestSession) Inventories(ctx context.Context) (*Reply, error) {
	return s.reply(ctx, http.MethodGet, "/accounting/inventories", nil)
}

func (s *RestSession) InventoryDetails(ctx context.Context, positionID, symbol string) (*Reply, error) {
	q := url.Values{}
	q.Set("position_id", positionID)
	q.Set("symbol", symbol)
	return s.reply(ctx, http.MethodGet, "/accounting/inventory-details?"+q.Encode(), nil)
}

func (s *RestSession) QuerySettlement(ctx context.Context, window string) (*Reply, error) {
	q := url.Values{}
	q.Set("range", window)
	return s.reply(ctx, http.MethodGet, "/accounting/settlements?"+q.Encode(), nil)
}

func (s *RestSession) RealizedPnLDetail(ctx context.Context, start, end string) (*Reply, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	return s.reply(ctx, http.MethodGet, "/accounting/realized-pnl?"+q.Encode(), nil)
}

func (s *RestSession) AccountInfo(ctx context.Context) (Record, error) {
	reply, err := s.reply(ctx, http.MethodGet, "/accounting/account-info", nil)
	if e := replyErr(reply, err); e != nil {
		return Record{}, e
	}
	return reply.First(), nil
}

// ---------------------------------------------------------------------------
// Market data
// ---------------------------------------------------------------------------

// IntradayQuote returns the venue's intraday quote payload unenveloped, as
// the market data API serves it.
func (s *RestSession) IntradayQuote(ctx context.Context, symbol string) (Record, error) {
	var rec Record
	path := "/marketdata/intraday/quote/" + url.PathEscape(symbol)
	if err := s.do(ctx, http.MethodGet, path, nil, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ---------------------------------------------------------------------------
// Plumbing
// ---------------------------------------------------------------------------

func (s *RestSession) reply(ctx context.Context, method, path string, body any) (*Reply, error) {
	var reply Reply
	if err := s.do(ctx, method, path, body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (s *RestSession) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
