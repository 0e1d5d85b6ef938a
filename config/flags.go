package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// Version is reported by --version.
const Version = "0.1.0"

// Action is the one-shot operation selected on the command line.
type Action int

const (
	ActionNone Action = iota
	ActionStatus
	ActionInteractive
	ActionTestTransactions
	ActionCreateWallet
	ActionListWallets
	ActionBalance
)

// String returns the flag name that selects the action.
func (a Action) String() string {
	switch a {
	case ActionStatus:
		return "status"
	case ActionInteractive:
		return "interactive"
	case ActionTestTransactions:
		return "test-transactions"
	case ActionCreateWallet:
		return "create-wallet"
	case ActionListWallets:
		return "list-wallets"
	case ActionBalance:
		return "balance"
	default:
		return "none"
	}
}

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Actions
	Status           bool
	Interactive      bool
	TestTransactions int
	CreateWallet     bool
	ListWallets      bool
	Balance          string

	// Configuration
	Config      string
	Nodes       string
	MetricsAddr string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetLogJSON bool
}

// Action returns the action to run. When several action flags are given the
// first one in the order status, interactive, test-transactions,
// create-wallet, list-wallets, balance wins; the rest are ignored. A
// test-transactions count below 1 does not select that action.
func (f *Flags) Action() Action {
	switch {
	case f.Status:
		return ActionStatus
	case f.Interactive:
		return ActionInteractive
	case f.TestTransactions > 0:
		return ActionTestTransactions
	case f.CreateWallet:
		return ActionCreateWallet
	case f.ListWallets:
		return ActionListWallets
	case f.Balance != "":
		return ActionBalance
	default:
		return ActionNone
	}
}

// ParseFlags parses command-line flags (without the program name).
// It returns flag.ErrHelp when --help was requested; usage text and parse
// errors are written to out.
func ParseFlags(args []string, out io.Writer) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("testnet-manager", flag.ContinueOnError)
	fs.SetOutput(out)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")

	// Actions
	fs.BoolVar(&f.Status, "status", false, "Show network status")
	fs.BoolVar(&f.Interactive, "interactive", false, "Start interactive mode")
	fs.BoolVar(&f.Interactive, "i", false, "Start interactive mode (shorthand)")
	fs.IntVar(&f.TestTransactions, "test-transactions", 0, "Send COUNT test transactions")
	fs.BoolVar(&f.CreateWallet, "create-wallet", false, "Create a new wallet")
	fs.BoolVar(&f.ListWallets, "list-wallets", false, "List all wallets")
	fs.StringVar(&f.Balance, "balance", "", "Get balance for ADDRESS")

	// Configuration
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")
	fs.StringVar(&f.Nodes, "nodes", "", "YAML node registry file")
	fs.StringVar(&f.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error, off)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	fs.Usage = func() {
		PrintUsage(out)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.Help {
		PrintUsage(out)
		return nil, flag.ErrHelp
	}

	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()

	// A stray positional argument stops the flag parser; anything after it
	// would be silently dropped.
	for _, arg := range f.Args {
		if strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("flag %q was not parsed (positional argument stopped parsing)", arg)
		}
	}

	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.Nodes != "" {
		cfg.NodesFile = f.Nodes
	}
	if f.MetricsAddr != "" {
		cfg.Metrics.Addr = f.MetricsAddr
	}

	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the full help text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, `PolyTorus Local Testnet Manager

Usage:
  testnet-manager [options]

Actions (the first one given wins):
  --status                   Show network status
  --interactive, -i          Start interactive mode
  --test-transactions COUNT  Send COUNT test transactions
  --create-wallet            Create a new wallet
  --list-wallets             List all wallets
  --balance ADDRESS          Get balance for address

Configuration:
  --config, -c FILE          Config file (key = value)
  --nodes FILE               YAML node registry (default: local testnet)
  --metrics-addr ADDR        Serve Prometheus metrics, e.g. 127.0.0.1:9100

Logging:
  --log-level LEVEL          debug, info, warn (default), error, off
  --log-file FILE            Also write JSON logs to FILE
  --log-json                 Output logs as JSON

Config file keys:
  nodes.file, probe.timeout, gateway.timeout, batch.interval,
  batch.gasprice, metrics.addr, log.level, log.file, log.json
`)
}

// Load builds the configuration with the following precedence:
// 1. Default values
// 2. Config file (--config)
// 3. Command-line flags
// 4. Node registry file named by either of the above
//
// It returns flag.ErrHelp when the caller should exit after printing help.
func Load(args []string, out io.Writer) (*Config, *Flags, error) {
	flags, err := ParseFlags(args, out)
	if err != nil {
		return nil, nil, err
	}
	if flags.Version {
		fmt.Fprintf(out, "testnet-manager version %s\n", Version)
		return nil, nil, flag.ErrHelp
	}

	cfg := Default()

	if flags.Config != "" {
		values, err := LoadFile(flags.Config)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config file: %w", err)
		}
		if err := ApplyFileConfig(cfg, values); err != nil {
			return nil, nil, fmt.Errorf("applying config file: %w", err)
		}
	}

	ApplyFlags(cfg, flags)

	if cfg.NodesFile != "" {
		nodes, err := LoadNodes(cfg.NodesFile)
		if err != nil {
			return nil, nil, fmt.Errorf("loading node registry: %w", err)
		}
		cfg.Nodes = nodes
	}

	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, flags, nil
}

// IsHelp reports whether err asks the caller to exit successfully.
func IsHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
