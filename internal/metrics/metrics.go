// Package metrics records gateway calls and node liveness with Prometheus.
package metrics

import (
	"errors"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Klingon-tech/testnet-manager/internal/gateway"
)

// Outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeHTTPError = "http_error"
	OutcomeError     = "error"
)

// Collector holds the session's metrics. It satisfies gateway.Recorder.
type Collector struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	online   *prometheus.GaugeVec
	sent     *prometheus.CounterVec
}

// New creates a collector backed by its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testnet_gateway_requests_total",
				Help: "Gateway calls by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "testnet_gateway_request_seconds",
				Help:    "Gateway call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		online: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "testnet_node_online",
				Help: "1 when the node answered its last liveness probe",
			},
			[]string{"node"},
		),
		sent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testnet_batch_transactions_total",
				Help: "Batch driver submissions by outcome",
			},
			[]string{"outcome"},
		),
	}
	c.registry.MustRegister(c.requests, c.latency, c.online, c.sent)
	return c
}

// Registry exposes the underlying registry for HTTP export.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveRequest records one gateway call.
func (c *Collector) ObserveRequest(op string, elapsed time.Duration, err error) {
	c.requests.WithLabelValues(op, outcome(err)).Inc()
	c.latency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveProbe records a node liveness verdict.
func (c *Collector) ObserveProbe(node string, online bool) {
	v := 0.0
	if online {
		v = 1
	}
	c.online.WithLabelValues(node).Set(v)
}

// ObserveBatchSend records one batch driver submission.
func (c *Collector) ObserveBatchSend(ok bool) {
	if ok {
		c.sent.WithLabelValues(OutcomeOK).Inc()
		return
	}
	c.sent.WithLabelValues(OutcomeError).Inc()
}

// RequestCount is one row of Summary.
type RequestCount struct {
	Op      string
	Outcome string
	Count   uint64
}

// Summary returns the gateway request counters sorted by op then outcome.
func (c *Collector) Summary() ([]RequestCount, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, err
	}

	var rows []RequestCount
	for _, mf := range families {
		if mf.GetName() != "testnet_gateway_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			row := RequestCount{Count: uint64(m.GetCounter().GetValue())}
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case "op":
					row.Op = lp.GetValue()
				case "outcome":
					row.Outcome = lp.GetValue()
				}
			}
			rows = append(rows, row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Op != rows[j].Op {
			return rows[i].Op < rows[j].Op
		}
		return rows[i].Outcome < rows[j].Outcome
	})
	return rows, nil
}

func outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var se *gateway.StatusError
	if errors.As(err, &se) {
		return OutcomeHTTPError
	}
	return OutcomeError
}
