// Package config handles testnet manager configuration.
//
// Configuration is layered the same way for every entry point:
//   - Defaults: the local five-node testnet registry and stock timeouts
//   - Config file: optional key = value file named with --config
//   - Node file: optional YAML registry named with --nodes or nodes.file
//   - Flags: command-line overrides (highest precedence)
package config

import (
	"strings"
	"time"
)

// GatewayNode is the registry name of the API gateway.
const GatewayNode = "api-gateway"

// NodeEndpoint is one named testnet participant.
type NodeEndpoint struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"url"`
}

// URL joins path onto the endpoint's base URL.
func (e NodeEndpoint) URL(path string) string {
	return strings.TrimRight(e.BaseURL, "/") + path
}

// Registry is the ordered set of known nodes. Order is display order.
type Registry []NodeEndpoint

// Lookup returns the endpoint registered under name.
func (r Registry) Lookup(name string) (NodeEndpoint, bool) {
	for _, e := range r {
		if e.Name == name {
			return e, true
		}
	}
	return NodeEndpoint{}, false
}

// Names returns the registered node names in registry order.
func (r Registry) Names() []string {
	names := make([]string, len(r))
	for i, e := range r {
		names[i] = e.Name
	}
	return names
}

// Config holds the runtime configuration for one invocation.
type Config struct {
	// Nodes is the node registry. It is never mutated after Load.
	Nodes     Registry
	NodesFile string `conf:"nodes.file"`

	Probe   ProbeConfig
	Gateway GatewayConfig
	Batch   BatchConfig
	Metrics MetricsConfig
	Log     LogConfig
}

// ProbeConfig holds liveness probe settings.
type ProbeConfig struct {
	Timeout time.Duration `conf:"probe.timeout"`
}

// GatewayConfig holds API gateway client settings.
type GatewayConfig struct {
	Timeout time.Duration `conf:"gateway.timeout"`
}

// BatchConfig holds test-transaction driver settings.
type BatchConfig struct {
	Interval time.Duration `conf:"batch.interval"` // Pause between submissions
	GasPrice int           `conf:"batch.gasprice"`
}

// MetricsConfig holds the optional Prometheus listener settings.
type MetricsConfig struct {
	Addr string `conf:"metrics.addr"` // Empty disables the listener
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// GatewayEndpoint returns the registry entry for the API gateway.
func (c *Config) GatewayEndpoint() (NodeEndpoint, bool) {
	return c.Nodes.Lookup(GatewayNode)
}
