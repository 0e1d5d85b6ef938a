package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadFile loads settings from a .conf file.
// Format: key = value (one per line, # for comments).
func LoadFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	case "nodes.file", "nodes":
		cfg.NodesFile = value

	case "probe.timeout":
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		cfg.Probe.Timeout = d

	case "gateway.timeout":
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		cfg.Gateway.Timeout = d

	case "batch.interval":
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		cfg.Batch.Interval = d
	case "batch.gasprice":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Batch.GasPrice = n

	case "metrics.addr":
		cfg.Metrics.Addr = value

	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseDuration accepts Go duration syntax or a bare number of seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}

func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
