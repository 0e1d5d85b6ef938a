package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Klingon-tech/testnet-manager/config"
	klog "github.com/Klingon-tech/testnet-manager/internal/log"
)

// fakeGateway is an in-process stand-in for the API gateway.
type fakeGateway struct {
	mu       sync.Mutex
	requests []*http.Request
	sent     []TxRequest
	handlers map[string]http.HandlerFunc
}

func newFakeGateway(t *testing.T) (*fakeGateway, *Client) {
	t.Helper()
	klog.Init("off", false, "")

	fg := &fakeGateway{handlers: make(map[string]http.HandlerFunc)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fg.mu.Lock()
		fg.requests = append(fg.requests, r)
		h, ok := fg.handlers[r.Method+" "+r.URL.EscapedPath()]
		fg.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	return fg, New(srv.URL)
}

func (fg *fakeGateway) handle(pattern string, h http.HandlerFunc) {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	fg.handlers[pattern] = h
}

func (fg *fakeGateway) requestCount() int {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	return len(fg.requests)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_CreateWallet(t *testing.T) {
	fg, client := newFakeGateway(t)
	fg.handle("POST /wallet/create", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"address": "poly1abc"})
	})

	wallet, err := client.CreateWallet(context.Background())
	if err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}
	if wallet.Address != "poly1abc" {
		t.Errorf("address = %q", wallet.Address)
	}
	if wallet.Kind() != "unknown" {
		t.Errorf("kind = %q, want unknown", wallet.Kind())
	}
}

func TestClient_CreateWallet_HTTPError(t *testing.T) {
	fg, client := newFakeGateway(t)
	fg.handle("POST /wallet/create", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "keystore locked", http.StatusServiceUnavailable)
	})

	_, err := client.CreateWallet(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %T: %v", err, err)
	}
	if se.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d", se.Code)
	}
	if se.Op != OpCreateWallet {
		t.Errorf("op = %q", se.Op)
	}
}

func TestClient_CreateWallet_NoAddress(t *testing.T) {
	fg, client := newFakeGateway(t)
	fg.handle("POST /wallet/create", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{})
	})

	if _, err := client.CreateWallet(context.Background()); !errors.Is(err, ErrMissingAddress) {
		t.Fatalf("err = %v, want ErrMissingAddress", err)
	}
}

func TestClient_ListWallets(t *testing.T) {
	fg, client := newFakeGateway(t)
	fg.handle("GET /wallet/list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []Wallet{
			{Address: "w0", Type: "ecdsa"},
			{Address: "w1"},
			{Address: "w2", Type: "fndsa"},
		})
	})

	wallets, err := client.ListWallets(context.Background())
	if err != nil {
		t.Fatalf("ListWallets: %v", err)
	}
	if len(wallets) != 3 {
		t.Fatalf("len = %d, want 3", len(wallets))
	}
	for i, want := range []string{"w0", "w1", "w2"} {
		if wallets[i].Address != want {
			t.Errorf("wallets[%d] = %q, want %q", i, wallets[i].Address, want)
		}
	}
	if wallets[1].Kind() != "unknown" || wallets[2].Kind() != "fndsa" {
		t.Errorf("kinds = %q, %q", wallets[1].Kind(), wallets[2].Kind())
	}
}

func TestClient_ListWallets_Empty(t *testing.T) {
	fg, client := newFakeGateway(t)
	fg.handle("GET /wallet/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})

	wallets, err := client.ListWallets(context.Background())
	if err != nil {
		t.Fatalf("ListWallets: %v", err)
	}
	if len(wallets) != 0 {
		t.Errorf("len = %d, want 0", len(wallets))
	}
}

func TestClient_GetBalance(t *testing.T) {
	fg, client := newFakeGateway(t)
	fg.handle("GET /balance/addr1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]float64{"balance": 42.5})
	})

	bal, err := client.GetBalance(context.Background(), "addr1")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if bal != 42.5 {
		t.Errorf("balance = %v, want 42.5", bal)
	}
}

func TestClient_GetBalance_ZeroVersusUnavailable(t *testing.T) {
	fg, client := newFakeGateway(t)
	fg.handle("GET /balance/fresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"address": "fresh"})
	})

	bal, err := client.GetBalance(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("missing field should be a zero balance, got error %v", err)
	}
	if bal != 0 {
		t.Errorf("balance = %v, want 0", bal)
	}

	down := New("http://127.0.0.1:1") // nothing listens on port 1
	if _, err := down.GetBalance(context.Background(), "fresh"); err == nil {
		t.Fatal("unreachable gateway must yield an error, not 0")
	}
}

func TestClient_GetBalance_EscapesAddress(t *testing.T) {
	fg, client := newFakeGateway(t)
	fg.handle("GET /balance/a%2Fb", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]float64{"balance": 1})
	})

	if _, err := client.GetBalance(context.Background(), "a/b"); err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
}

func TestClient_GetBalance_EmptyAddress(t *testing.T) {
	fg, client := newFakeGateway(t)

	if _, err := client.GetBalance(context.Background(), " "); !errors.Is(err, ErrEmptyAddress) {
		t.Fatalf("err = %v, want ErrEmptyAddress", err)
	}
	if fg.requestCount() != 0 {
		t.Error("request issued for empty address")
	}
}

func TestClient_SendTransaction(t *testing.T) {
	fg, client := newFakeGateway(t)
	fg.handle("POST /transaction/send", func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		var raw map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode body: %v", err)
		}
		for _, key := range []string{"from", "to", "amount", "gasPrice"} {
			if _, ok := raw[key]; !ok {
				t.Errorf("body missing %q", key)
			}
		}
		if raw["gasPrice"] != float64(1) {
			t.Errorf("gasPrice = %v, want 1", raw["gasPrice"])
		}
		writeJSON(w, map[string]string{"hash": "0xfeed"})
	})

	hash, err := client.SendTransaction(context.Background(), TxRequest{From: "a", To: "b", Amount: 1.5})
	if err != nil {
		t.Fatalf("SendTransaction: %v", err)
	}
	if hash != "0xfeed" {
		t.Errorf("hash = %q", hash)
	}
}

func TestClient_SendTransaction_Validation(t *testing.T) {
	fg, client := newFakeGateway(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  TxRequest
		want error
	}{
		{"no from", TxRequest{To: "b", Amount: 1}, ErrEmptyAddress},
		{"no to", TxRequest{From: "a", Amount: 1}, ErrEmptyAddress},
		{"zero amount", TxRequest{From: "a", To: "b"}, ErrInvalidAmount},
		{"negative amount", TxRequest{From: "a", To: "b", Amount: -2}, ErrInvalidAmount},
		{"negative gas", TxRequest{From: "a", To: "b", Amount: 1, GasPrice: -1}, ErrInvalidGasPrice},
	}
	for _, tt := range tests {
		if _, err := client.SendTransaction(ctx, tt.req); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
	if fg.requestCount() != 0 {
		t.Errorf("%d requests issued for invalid input", fg.requestCount())
	}
}

func TestClient_SendTransaction_MissingHash(t *testing.T) {
	fg, client := newFakeGateway(t)
	fg.handle("POST /transaction/send", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "queued"})
	})

	_, err := client.SendTransaction(context.Background(), TxRequest{From: "a", To: "b", Amount: 1})
	if !errors.Is(err, ErrMissingHash) {
		t.Fatalf("err = %v, want ErrMissingHash", err)
	}
}

func TestClient_RecentTransactions(t *testing.T) {
	fg, client := newFakeGateway(t)
	fg.handle("GET /transaction/recent", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []Transaction{
			{Hash: "h1", From: "a", To: "b", Amount: 1},
			{Hash: "h2", From: "b", To: "a", Amount: 2.5},
		})
	})

	txs, err := client.RecentTransactions(context.Background())
	if err != nil {
		t.Fatalf("RecentTransactions: %v", err)
	}
	if len(txs) != 2 || txs[0].Hash != "h1" || txs[1].Amount != 2.5 {
		t.Errorf("txs = %+v", txs)
	}
}

func TestClient_BlockchainStats_PartialFields(t *testing.T) {
	fg, client := newFakeGateway(t)
	fg.handle("GET /network/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"blockHeight": 120, "difficulty": 4}`))
	})

	stats, err := client.BlockchainStats(context.Background())
	if err != nil {
		t.Fatalf("BlockchainStats: %v", err)
	}
	if stats.HeightString() != "120" {
		t.Errorf("height = %q", stats.HeightString())
	}
	if stats.TotalTransactionsString() != "N/A" {
		t.Errorf("total transactions = %q, want N/A", stats.TotalTransactionsString())
	}
	if stats.DifficultyString() != "4" {
		t.Errorf("difficulty = %q", stats.DifficultyString())
	}
}

func TestClient_DecodeError(t *testing.T) {
	fg, client := newFakeGateway(t)
	fg.handle("GET /network/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	})

	if _, err := client.BlockchainStats(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClient_Timeout(t *testing.T) {
	klog.Init("off", false, "")
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	client := NewWithTimeout(srv.URL, 50*time.Millisecond)
	if _, err := client.ListWallets(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}

type recordingRecorder struct {
	ops  []string
	errs []error
}

func (r *recordingRecorder) ObserveRequest(op string, _ time.Duration, err error) {
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

func TestClient_Recorder(t *testing.T) {
	fg, client := newFakeGateway(t)
	fg.handle("GET /wallet/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})
	rec := &recordingRecorder{}
	client.SetRecorder(rec)

	client.ListWallets(context.Background())
	client.RecentTransactions(context.Background()) // 404

	if len(rec.ops) != 2 || rec.ops[0] != OpListWallets || rec.ops[1] != OpRecentTransactions {
		t.Fatalf("ops = %v", rec.ops)
	}
	if rec.errs[0] != nil || rec.errs[1] == nil {
		t.Errorf("errs = %v", rec.errs)
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if client.Endpoint() != "http://localhost:9020" {
		t.Errorf("endpoint = %q", client.Endpoint())
	}

	cfg.Nodes = cfg.Nodes[:1]
	if _, err := NewFromConfig(cfg); err == nil {
		t.Error("expected error without api-gateway entry")
	}
}
