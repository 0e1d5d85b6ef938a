// Package gateway provides an HTTP client for the testnet API gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Klingon-tech/testnet-manager/config"
	klog "github.com/Klingon-tech/testnet-manager/internal/log"
)

// DefaultTimeout bounds a single gateway call.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

// Operation names, used in logs, errors and metrics.
const (
	OpCreateWallet       = "create_wallet"
	OpListWallets        = "list_wallets"
	OpGetBalance         = "get_balance"
	OpSendTransaction    = "send_transaction"
	OpRecentTransactions = "recent_transactions"
	OpBlockchainStats    = "blockchain_stats"
)

var (
	// ErrEmptyAddress is returned when a required address is blank.
	ErrEmptyAddress = errors.New("address is empty")
	// ErrInvalidAmount is returned for non-positive or non-finite amounts.
	ErrInvalidAmount = errors.New("amount must be a positive number")
	// ErrInvalidGasPrice is returned for a negative gas price.
	ErrInvalidGasPrice = errors.New("gas price must be at least 1")
	// ErrMissingHash is returned when the gateway accepted a transaction
	// but did not report its hash.
	ErrMissingHash = errors.New("gateway response has no transaction hash")
	// ErrMissingAddress is returned when a created wallet has no address.
	ErrMissingAddress = errors.New("gateway response has no wallet address")
)

// StatusError is returned when the gateway answers with a non-2xx status.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Code, e.Body)
}

// Recorder observes completed gateway calls.
type Recorder interface {
	ObserveRequest(op string, elapsed time.Duration, err error)
}

// Client is an HTTP client for the API gateway. Each call makes exactly one
// request; nothing is retried or cached.
type Client struct {
	endpoint string
	http     *http.Client
	recorder Recorder
}

// New creates a new gateway client targeting the given base URL.
func New(endpoint string) *Client {
	return NewWithTimeout(endpoint, DefaultTimeout)
}

// NewWithTimeout creates a new gateway client with a custom HTTP timeout.
func NewWithTimeout(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewFromConfig creates a client for the registry's api-gateway entry.
func NewFromConfig(cfg *config.Config) (*Client, error) {
	ep, ok := cfg.GatewayEndpoint()
	if !ok {
		return nil, fmt.Errorf("node registry has no %q entry", config.GatewayNode)
	}
	return NewWithTimeout(ep.BaseURL, cfg.Gateway.Timeout), nil
}

// SetRecorder attaches a recorder that observes every call.
func (c *Client) SetRecorder(r Recorder) {
	c.recorder = r
}

// Endpoint returns the gateway base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// CreateWallet asks the gateway to create a new wallet.
func (c *Client) CreateWallet(ctx context.Context) (*Wallet, error) {
	var w Wallet
	if err := c.do(ctx, OpCreateWallet, http.MethodPost, "/wallet/create", nil, &w); err != nil {
		return nil, err
	}
	if w.Address == "" {
		return nil, fmt.Errorf("%s: %w", OpCreateWallet, ErrMissingAddress)
	}
	return &w, nil
}

// ListWallets returns the gateway's wallets in the order it reports them.
func (c *Client) ListWallets(ctx context.Context) ([]Wallet, error) {
	var wallets []Wallet
	if err := c.do(ctx, OpListWallets, http.MethodGet, "/wallet/list", nil, &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

// GetBalance returns the balance of address. A successful response without
// a balance field yields 0; any failure yields an error, never 0.
func (c *Client) GetBalance(ctx context.Context, address string) (float64, error) {
	if strings.TrimSpace(address) == "" {
		return 0, fmt.Errorf("%s: %w", OpGetBalance, ErrEmptyAddress)
	}

	var res balanceResult
	if err := c.do(ctx, OpGetBalance, http.MethodGet, "/balance/"+url.PathEscape(address), nil, &res); err != nil {
		return 0, err
	}
	if res.Balance == nil {
		return 0, nil
	}
	return *res.Balance, nil
}

// SendTransaction submits a transfer and returns its hash. A zero gas price
// is sent as 1.
func (c *Client) SendTransaction(ctx context.Context, req TxRequest) (string, error) {
	if strings.TrimSpace(req.From) == "" || strings.TrimSpace(req.To) == "" {
		return "", fmt.Errorf("%s: %w", OpSendTransaction, ErrEmptyAddress)
	}
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount <= 0 {
		return "", fmt.Errorf("%s: %w", OpSendTransaction, ErrInvalidAmount)
	}
	if req.GasPrice < 0 {
		return "", fmt.Errorf("%s: %w", OpSendTransaction, ErrInvalidGasPrice)
	}
	if req.GasPrice == 0 {
		req.GasPrice = config.DefaultGasPrice
	}

	var res sendResult
	if err := c.do(ctx, OpSendTransaction, http.MethodPost, "/transaction/send", req, &res); err != nil {
		return "", err
	}
	if res.Hash == "" {
		return "", fmt.Errorf("%s: %w", OpSendTransaction, ErrMissingHash)
	}
	return res.Hash, nil
}

// RecentTransactions returns recent transactions in the order reported.
func (c *Client) RecentTransactions(ctx context.Context) ([]Transaction, error) {
	var txs []Transaction
	if err := c.do(ctx, OpRecentTransactions, http.MethodGet, "/transaction/recent", nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// BlockchainStats returns chain statistics from the gateway.
func (c *Client) BlockchainStats(ctx context.Context) (*ChainStats, error) {
	var stats ChainStats
	if err := c.do(ctx, OpBlockchainStats, http.MethodGet, "/network/status", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// do performs one request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) (err error) {
	requestID := uuid.NewString()
	logger := klog.Gateway.With().
		Str("op", op).
		Str("request_id", requestID).
		Logger()

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		if c.recorder != nil {
			c.recorder.ObserveRequest(op, elapsed, err)
		}
		if err != nil {
			logger.Warn().Err(err).Dur("elapsed", elapsed).Msg("Gateway call failed")
		} else {
			logger.Debug().Dur("elapsed", elapsed).Msg("Gateway call ok")
		}
	}()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug().Str("method", method).Str("url", req.URL.String()).Msg("Gateway call")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: http request: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Op:   op,
			Code: resp.StatusCode,
			Body: snippet(data),
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}

// snippet trims an error body for inclusion in a message.
func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}
