// Package console implements the operator-facing command surface: one-shot
// actions selected by flags and the interactive session. It formats and
// dispatches only; every remote call goes through the prober or gateway.
package console

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Klingon-tech/testnet-manager/config"
	"github.com/Klingon-tech/testnet-manager/internal/batch"
	"github.com/Klingon-tech/testnet-manager/internal/gateway"
	"github.com/Klingon-tech/testnet-manager/internal/metrics"
	"github.com/Klingon-tech/testnet-manager/internal/prober"
)

// Unit is the coin symbol printed after amounts.
const Unit = "POLY"

// recentLimit is how many recent transactions are shown.
const recentLimit = 10

// Gateway is the gateway client surface used by the console.
type Gateway interface {
	CreateWallet(ctx context.Context) (*gateway.Wallet, error)
	ListWallets(ctx context.Context) ([]gateway.Wallet, error)
	GetBalance(ctx context.Context, address string) (float64, error)
	SendTransaction(ctx context.Context, req gateway.TxRequest) (string, error)
	RecentTransactions(ctx context.Context) ([]gateway.Transaction, error)
	BlockchainStats(ctx context.Context) (*gateway.ChainStats, error)
}

// StatusProber reports node liveness.
type StatusProber interface {
	NetworkStatus(ctx context.Context) prober.NetworkStatus
}

// BatchRunner sends scripted test transactions.
type BatchRunner interface {
	Run(ctx context.Context, count int) batch.Result
}

// MetricsSource summarizes gateway calls made so far.
type MetricsSource interface {
	Summary() ([]metrics.RequestCount, error)
}

// App ties the prober and gateway to an output stream.
type App struct {
	prober   StatusProber
	gw       Gateway
	batch    BatchRunner
	metrics  MetricsSource
	out      io.Writer
	gasPrice int
}

// NewApp creates an App writing to out.
func NewApp(p StatusProber, gw Gateway, out io.Writer) *App {
	return &App{
		prober:   p,
		gw:       gw,
		out:      out,
		gasPrice: config.DefaultGasPrice,
	}
}

// SetBatch attaches the test transaction driver.
func (a *App) SetBatch(b BatchRunner) {
	a.batch = b
}

// SetMetrics attaches a metrics source for the metrics command.
func (a *App) SetMetrics(m MetricsSource) {
	a.metrics = m
}

// SetGasPrice sets the gas price used by interactive sends.
func (a *App) SetGasPrice(gasPrice int) {
	if gasPrice >= 1 {
		a.gasPrice = gasPrice
	}
}

// Status prints node liveness followed by chain statistics.
func (a *App) Status(ctx context.Context) {
	fmt.Fprintln(a.out, "🌐 PolyTorus Local Testnet Status")
	fmt.Fprintln(a.out, strings.Repeat("=", 40))

	for _, n := range a.prober.NetworkStatus(ctx) {
		icon := "❌"
		if n.Online {
			icon = "✅"
		}
		fmt.Fprintf(a.out, "%s %s: %s\n", icon, capitalize(n.Name), n.URL)
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "📊 Blockchain Statistics")
	fmt.Fprintln(a.out, strings.Repeat("-", 25))
	stats, err := a.gw.BlockchainStats(ctx)
	if err != nil || stats == nil {
		fmt.Fprintln(a.out, "Unable to fetch blockchain statistics")
		return
	}
	a.printStats(stats)
}

// Stats prints chain statistics on their own.
func (a *App) Stats(ctx context.Context) {
	stats, err := a.gw.BlockchainStats(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "❌ Unable to fetch statistics: %v\n", err)
		return
	}
	if stats == nil {
		fmt.Fprintln(a.out, "❌ Unable to fetch statistics: empty response")
		return
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "📊 Blockchain Statistics:")
	a.printStats(stats)
}

func (a *App) printStats(s *gateway.ChainStats) {
	fmt.Fprintf(a.out, "Block Height: %s\n", s.HeightString())
	fmt.Fprintf(a.out, "Total Transactions: %s\n", s.TotalTransactionsString())
	fmt.Fprintf(a.out, "Difficulty: %s\n", s.DifficultyString())
}

// CreateWallet creates a wallet and prints its address.
func (a *App) CreateWallet(ctx context.Context) {
	w, err := a.gw.CreateWallet(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "❌ Failed to create wallet: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "✅ New wallet created: %s\n", w.Address)
}

// ListWallets prints the gateway's wallets, numbered from 1. The hint
// variant of the empty message is used by the interactive session.
func (a *App) ListWallets(ctx context.Context, hint bool) {
	wallets, err := a.gw.ListWallets(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "❌ Failed to list wallets: %v\n", err)
		return
	}
	if len(wallets) == 0 {
		if hint {
			fmt.Fprintln(a.out, "No wallets found. Create one with 'create-wallet'")
		} else {
			fmt.Fprintln(a.out, "No wallets found")
		}
		return
	}

	fmt.Fprintln(a.out, "👛 Available Wallets:")
	for i, w := range wallets {
		fmt.Fprintf(a.out, "%d. %s (%s)\n", i+1, w.Address, w.Kind())
	}
}

// Balance prints the balance of address. A failed query is reported as
// unavailable, never as a zero balance.
func (a *App) Balance(ctx context.Context, address string) {
	bal, err := a.gw.GetBalance(ctx, address)
	if err != nil {
		fmt.Fprintf(a.out, "❌ Failed to get balance: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "💰 Balance: %s %s\n", formatAmount(bal), Unit)
}

// Send submits one transfer and prints its hash.
func (a *App) Send(ctx context.Context, from, to string, amount float64) {
	hash, err := a.gw.SendTransaction(ctx, gateway.TxRequest{
		From:     from,
		To:       to,
		Amount:   amount,
		GasPrice: a.gasPrice,
	})
	if err != nil {
		fmt.Fprintf(a.out, "❌ Failed to send transaction: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "✅ Transaction sent: %s\n", hash)
}

// Transactions prints the most recent transactions, oldest first.
func (a *App) Transactions(ctx context.Context) {
	txs, err := a.gw.RecentTransactions(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "❌ Failed to fetch transactions: %v\n", err)
		return
	}
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No recent transactions")
		return
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "📋 Recent Transactions:")
	for _, tx := range lastN(txs, recentLimit) {
		fmt.Fprintf(a.out, "  %s... %s→%s %s %s\n",
			truncate(tx.Hash, 16),
			truncate(tx.From, 8),
			truncate(tx.To, 8),
			formatAmount(tx.Amount),
			Unit)
	}
}

// TestTransactions runs the batch driver.
func (a *App) TestTransactions(ctx context.Context, count int) {
	if a.batch == nil {
		fmt.Fprintln(a.out, "❌ Test transactions are not available")
		return
	}
	a.batch.Run(ctx, count)
}

// Metrics prints gateway call counters for this process.
func (a *App) Metrics() {
	if a.metrics == nil {
		fmt.Fprintln(a.out, "Metrics are disabled")
		return
	}
	rows, err := a.metrics.Summary()
	if err != nil {
		fmt.Fprintf(a.out, "❌ Unable to read metrics: %v\n", err)
		return
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No gateway calls yet")
		return
	}
	fmt.Fprintln(a.out, "Gateway calls:")
	for _, r := range rows {
		fmt.Fprintf(a.out, "  %-20s %-10s %d\n", r.Op, r.Outcome, r.Count)
	}
}

// Help prints the interactive grammar.
func (a *App) Help() {
	fmt.Fprint(a.out, `
Available commands:
  status                     - Show network status
  wallets                    - List all wallets
  create-wallet              - Create a new wallet
  balance <addr>             - Get balance for address
  send <from> <to> <amount>  - Send transaction
  transactions               - Show recent transactions
  stats                      - Show blockchain statistics
  metrics                    - Show gateway call counters
  help                       - Show this help
  quit/exit                  - Exit interactive mode
`)
}

// Hint prints the no-action message.
func (a *App) Hint() {
	fmt.Fprintln(a.out, "PolyTorus Local Testnet Manager")
	fmt.Fprintln(a.out, "Use --help for available options")
	fmt.Fprintln(a.out, "Quick start: testnet-manager --interactive")
}

func lastN(txs []gateway.Transaction, n int) []gateway.Transaction {
	if len(txs) <= n {
		return txs
	}
	return txs[len(txs)-n:]
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
