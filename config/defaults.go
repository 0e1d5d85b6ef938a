package config

import "time"

// Stock values for a local testnet.
const (
	DefaultProbeTimeout   = 5 * time.Second
	DefaultGatewayTimeout = 10 * time.Second
	DefaultBatchInterval  = 2 * time.Second
	DefaultGasPrice       = 1
)

// DefaultRegistry returns the node layout of the local docker testnet.
func DefaultRegistry() Registry {
	return Registry{
		{Name: "bootstrap", BaseURL: "http://localhost:9000"},
		{Name: "miner-1", BaseURL: "http://localhost:9001"},
		{Name: "miner-2", BaseURL: "http://localhost:9002"},
		{Name: "validator", BaseURL: "http://localhost:9003"},
		{Name: GatewayNode, BaseURL: "http://localhost:9020"},
	}
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Nodes: DefaultRegistry(),
		Probe: ProbeConfig{
			Timeout: DefaultProbeTimeout,
		},
		Gateway: GatewayConfig{
			Timeout: DefaultGatewayTimeout,
		},
		Batch: BatchConfig{
			Interval: DefaultBatchInterval,
			GasPrice: DefaultGasPrice,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
