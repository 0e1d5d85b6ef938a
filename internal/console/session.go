package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	klog "github.com/Klingon-tech/testnet-manager/internal/log"
)

// Prompt is printed before each line when input is a terminal.
const Prompt = "polytest> "

// State is the session lifecycle state.
type State int

const (
	Running State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "running"
}

// Session is the interactive read-eval-print loop.
type Session struct {
	app    *App
	in     io.Reader
	out    io.Writer
	prompt bool
	state  State
}

// NewSession creates a session reading lines from in. The prompt is shown
// only when in is a terminal.
func NewSession(app *App, in io.Reader) *Session {
	s := &Session{
		app: app,
		in:  in,
		out: app.out,
	}
	if f, ok := in.(*os.File); ok {
		s.prompt = term.IsTerminal(int(f.Fd()))
	}
	return s
}

// SetPrompt forces the prompt on or off.
func (s *Session) SetPrompt(on bool) {
	s.prompt = on
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Run reads and executes lines until quit, end of input, or ctx is
// cancelled (interrupt).
func (s *Session) Run(ctx context.Context) {
	fmt.Fprintln(s.out, "🎮 PolyTorus Interactive Mode")
	fmt.Fprintln(s.out, "Type 'help' for available commands, 'quit' to exit")

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)

	// Reading stdin blocks; it runs apart so an interrupt can end the
	// session while a read is pending. The reader may outlive Run.
	logger := klog.Console
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case <-done:
			default:
				logger.Warn().Err(err).Msg("Read input")
			}
		}
	}()

	for s.state == Running {
		if ctx.Err() != nil {
			fmt.Fprintln(s.out, "\nExiting...")
			s.state = Terminated
			break
		}
		if s.prompt {
			fmt.Fprintf(s.out, "\n%s", Prompt)
		}

		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out, "\nExiting...")
			s.state = Terminated
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out, "\nExiting...")
				s.state = Terminated
				continue
			}
			s.Execute(ctx, line)
		}
	}
}

// Execute parses and runs a single line. A failure while handling the line
// is printed and leaves the session running.
func (s *Session) Execute(ctx context.Context, line string) {
	defer func() {
		if r := recover(); r != nil {
			klog.Console.Error().Interface("panic", r).Str("line", line).Msg("Command panicked")
			fmt.Fprintf(s.out, "Error: %v\n", r)
		}
	}()
	s.dispatch(ctx, Parse(line))
}

func (s *Session) dispatch(ctx context.Context, cmd Command) {
	a := s.app
	switch c := cmd.(type) {
	case QuitCmd:
		s.state = Terminated
	case EmptyCmd:
	case HelpCmd:
		a.Help()
	case StatusCmd:
		a.Status(ctx)
	case WalletsCmd:
		a.ListWallets(ctx, true)
	case CreateWalletCmd:
		a.CreateWallet(ctx)
	case BalanceCmd:
		a.Balance(ctx, c.Address)
	case SendCmd:
		a.Send(ctx, c.From, c.To, c.Amount)
	case TransactionsCmd:
		a.Transactions(ctx)
	case StatsCmd:
		a.Stats(ctx)
	case MetricsCmd:
		a.Metrics()
	case UsageCmd:
		fmt.Fprintln(s.out, c.Usage)
	case InvalidAmountCmd:
		fmt.Fprintf(s.out, "❌ Invalid amount: %s\n", c.Amount)
	case UnknownCmd:
		fmt.Fprintf(s.out, "Unknown command: %s. Type 'help' for available commands.\n", c.Input)
	default:
		fmt.Fprintf(s.out, "Error: unhandled command %T\n", cmd)
	}
}
