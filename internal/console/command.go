package console

import (
	"math"
	"strconv"
	"strings"
)

// Command is one parsed line of the interactive session.
type Command interface {
	isCommand()
}

// Commands accepted by the session.
type (
	StatusCmd       struct{}
	WalletsCmd      struct{}
	CreateWalletCmd struct{}
	BalanceCmd      struct{ Address string }
	SendCmd         struct {
		From   string
		To     string
		Amount float64
	}
	TransactionsCmd struct{}
	StatsCmd        struct{}
	MetricsCmd      struct{}
	HelpCmd         struct{}
	QuitCmd         struct{}
	EmptyCmd        struct{}
)

// Lines rejected before reaching the gateway.
type (
	// UsageCmd is a known verb with the wrong number of arguments.
	UsageCmd struct{ Usage string }
	// InvalidAmountCmd is a send whose amount is not a positive number.
	InvalidAmountCmd struct{ Amount string }
	// UnknownCmd is anything outside the grammar.
	UnknownCmd struct{ Input string }
)

func (StatusCmd) isCommand()        {}
func (WalletsCmd) isCommand()       {}
func (CreateWalletCmd) isCommand()  {}
func (BalanceCmd) isCommand()       {}
func (SendCmd) isCommand()          {}
func (TransactionsCmd) isCommand()  {}
func (StatsCmd) isCommand()         {}
func (MetricsCmd) isCommand()       {}
func (HelpCmd) isCommand()          {}
func (QuitCmd) isCommand()          {}
func (EmptyCmd) isCommand()         {}
func (UsageCmd) isCommand()         {}
func (InvalidAmountCmd) isCommand() {}
func (UnknownCmd) isCommand()       {}

const (
	usageBalance = "Usage: balance <address>"
	usageSend    = "Usage: send <from_address> <to_address> <amount>"
)

// Parse tokenizes line on whitespace and maps it onto the grammar. Verbs are
// case-insensitive; arguments are passed through untouched.
func Parse(line string) Command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return EmptyCmd{}
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "balance":
		if len(args) != 1 {
			return UsageCmd{Usage: usageBalance}
		}
		return BalanceCmd{Address: args[0]}
	case "send":
		if len(args) != 3 {
			return UsageCmd{Usage: usageSend}
		}
		amount, ok := parseAmount(args[2])
		if !ok {
			return InvalidAmountCmd{Amount: args[2]}
		}
		return SendCmd{From: args[0], To: args[1], Amount: amount}
	}

	// The remaining verbs take no arguments.
	if len(args) > 0 {
		return UnknownCmd{Input: strings.TrimSpace(line)}
	}
	switch verb {
	case "status":
		return StatusCmd{}
	case "wallets":
		return WalletsCmd{}
	case "create-wallet":
		return CreateWalletCmd{}
	case "transactions":
		return TransactionsCmd{}
	case "stats":
		return StatsCmd{}
	case "metrics":
		return MetricsCmd{}
	case "help":
		return HelpCmd{}
	case "quit", "exit":
		return QuitCmd{}
	default:
		return UnknownCmd{Input: strings.TrimSpace(line)}
	}
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}
