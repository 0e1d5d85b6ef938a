package metrics

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Klingon-tech/testnet-manager/internal/gateway"
	klog "github.com/Klingon-tech/testnet-manager/internal/log"
)

func TestCollector_ObserveRequest(t *testing.T) {
	c := New()
	c.ObserveRequest(gateway.OpGetBalance, 10*time.Millisecond, nil)
	c.ObserveRequest(gateway.OpGetBalance, 10*time.Millisecond, &gateway.StatusError{Op: gateway.OpGetBalance, Code: 500})
	c.ObserveRequest(gateway.OpGetBalance, 10*time.Millisecond, errors.New("connection refused"))
	c.ObserveRequest(gateway.OpListWallets, time.Millisecond, nil)

	if got := testutil.ToFloat64(c.requests.WithLabelValues(gateway.OpGetBalance, OutcomeOK)); got != 1 {
		t.Errorf("ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.requests.WithLabelValues(gateway.OpGetBalance, OutcomeHTTPError)); got != 1 {
		t.Errorf("http_error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.requests.WithLabelValues(gateway.OpGetBalance, OutcomeError)); got != 1 {
		t.Errorf("error = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.latency); got != 2 {
		t.Errorf("latency series = %d, want 2", got)
	}
}

func TestCollector_Summary(t *testing.T) {
	c := New()
	rows, err := c.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %v, want none", rows)
	}

	c.ObserveRequest(gateway.OpListWallets, 0, nil)
	c.ObserveRequest(gateway.OpListWallets, 0, nil)
	c.ObserveRequest(gateway.OpCreateWallet, 0, errors.New("down"))

	rows, err = c.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	want := []RequestCount{
		{Op: gateway.OpCreateWallet, Outcome: OutcomeError, Count: 1},
		{Op: gateway.OpListWallets, Outcome: OutcomeOK, Count: 2},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %+v, want %+v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("rows[%d] = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestCollector_ProbeAndBatch(t *testing.T) {
	c := New()
	c.ObserveProbe("bootstrap", true)
	c.ObserveProbe("miner-1", false)
	c.ObserveBatchSend(true)
	c.ObserveBatchSend(false)
	c.ObserveBatchSend(true)

	if got := testutil.ToFloat64(c.online.WithLabelValues("bootstrap")); got != 1 {
		t.Errorf("bootstrap online = %v", got)
	}
	if got := testutil.ToFloat64(c.online.WithLabelValues("miner-1")); got != 0 {
		t.Errorf("miner-1 online = %v", got)
	}
	if got := testutil.ToFloat64(c.sent.WithLabelValues(OutcomeOK)); got != 2 {
		t.Errorf("batch ok = %v, want 2", got)
	}
}

func TestListen_ServesMetrics(t *testing.T) {
	klog.Init("off", false, "")
	c := New()
	c.ObserveRequest(gateway.OpBlockchainStats, time.Millisecond, nil)

	srv, err := Listen("127.0.0.1:0", c)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Stop()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `testnet_gateway_requests_total{op="blockchain_stats",outcome="ok"} 1`) {
		t.Errorf("counter missing from export:\n%s", body)
	}
}
