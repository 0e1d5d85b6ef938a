// Package prober checks liveness of the testnet's nodes.
package prober

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/Klingon-tech/testnet-manager/config"
	klog "github.com/Klingon-tech/testnet-manager/internal/log"
)

// NodeStatus is the liveness verdict for one registry entry.
type NodeStatus struct {
	Name   string
	Online bool
	URL    string
}

// NetworkStatus holds one verdict per registry entry, in registry order.
type NetworkStatus []NodeStatus

// Lookup returns the verdict for the named node.
func (s NetworkStatus) Lookup(name string) (NodeStatus, bool) {
	for _, n := range s {
		if n.Name == name {
			return n, true
		}
	}
	return NodeStatus{}, false
}

// OnlineCount returns how many nodes answered.
func (s NetworkStatus) OnlineCount() int {
	n := 0
	for _, ns := range s {
		if ns.Online {
			n++
		}
	}
	return n
}

// Observer is notified of every probe verdict.
type Observer interface {
	ObserveProbe(node string, online bool)
}

// Prober issues GET {baseURL}/status against registry entries.
type Prober struct {
	nodes    config.Registry
	http     *http.Client
	observer Observer
}

// New creates a prober over nodes with the given per-probe timeout.
func New(nodes config.Registry, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = config.DefaultProbeTimeout
	}
	return &Prober{
		nodes: nodes,
		http:  &http.Client{Timeout: timeout},
	}
}

// SetObserver attaches an observer for probe verdicts.
func (p *Prober) SetObserver(o Observer) {
	p.observer = o
}

// Probe reports whether ep answered /status with a 2xx within the timeout.
// Every failure, including a cancelled ctx, is reported as offline.
func (p *Prober) Probe(ctx context.Context, ep config.NodeEndpoint) bool {
	logger := klog.Prober.With().Str("node", ep.Name).Logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL("/status"), nil)
	if err != nil {
		logger.Debug().Err(err).Msg("Bad probe request")
		return false
	}

	resp, err := p.http.Do(req)
	if err != nil {
		logger.Debug().Err(err).Msg("Node unreachable")
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug().Int("status", resp.StatusCode).Msg("Node unhealthy")
		return false
	}
	return true
}

// NetworkStatus probes every registry entry once, one after another, and
// returns the full set of verdicts even when every probe fails.
func (p *Prober) NetworkStatus(ctx context.Context) NetworkStatus {
	status := make(NetworkStatus, 0, len(p.nodes))
	for _, ep := range p.nodes {
		online := p.Probe(ctx, ep)
		if p.observer != nil {
			p.observer.ObserveProbe(ep.Name, online)
		}
		status = append(status, NodeStatus{
			Name:   ep.Name,
			Online: online,
			URL:    ep.BaseURL,
		})
	}

	klog.Prober.Debug().
		Int("online", status.OnlineCount()).
		Int("total", len(status)).
		Msg("Network status")
	return status
}
