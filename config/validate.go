package config

import (
	"fmt"
	"net/url"
	"strings"

	klog "github.com/Klingon-tech/testnet-manager/internal/log"
)

// Validate checks the configuration for obvious operator mistakes and
// normalizes node URLs (trailing slashes are dropped).
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if len(cfg.Nodes) == 0 {
		return fmt.Errorf("node registry is empty")
	}

	seen := make(map[string]struct{}, len(cfg.Nodes))
	for i := range cfg.Nodes {
		n := &cfg.Nodes[i]
		n.Name = strings.TrimSpace(n.Name)
		if n.Name == "" {
			return fmt.Errorf("nodes[%d] has no name", i)
		}
		if _, ok := seen[n.Name]; ok {
			return fmt.Errorf("duplicate node name %q", n.Name)
		}
		seen[n.Name] = struct{}{}

		u, err := url.Parse(strings.TrimSpace(n.BaseURL))
		if err != nil {
			return fmt.Errorf("node %s: invalid url: %w", n.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("node %s: url scheme must be http or https", n.Name)
		}
		if u.Host == "" {
			return fmt.Errorf("node %s: url has no host", n.Name)
		}
		n.BaseURL = strings.TrimRight(u.String(), "/")
	}
	if _, ok := cfg.GatewayEndpoint(); !ok {
		return fmt.Errorf("node registry has no %q entry", GatewayNode)
	}

	if cfg.Probe.Timeout <= 0 {
		return fmt.Errorf("probe.timeout must be positive")
	}
	if cfg.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway.timeout must be positive")
	}
	if cfg.Batch.Interval < 0 {
		return fmt.Errorf("batch.interval must not be negative")
	}
	if cfg.Batch.GasPrice < 1 {
		return fmt.Errorf("batch.gasprice must be at least 1")
	}
	if !klog.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, error or off")
	}
	return nil
}
