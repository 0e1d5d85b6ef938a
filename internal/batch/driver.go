// Package batch sends a paced series of test transactions through the gateway.
package batch

import (
	"context"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/Klingon-tech/testnet-manager/config"
	"github.com/Klingon-tech/testnet-manager/internal/gateway"
	klog "github.com/Klingon-tech/testnet-manager/internal/log"
)

// MinWallets is the number of wallets needed to form a transfer pair.
const MinWallets = 2

// Gateway is the subset of the gateway client the driver uses.
type Gateway interface {
	ListWallets(ctx context.Context) ([]gateway.Wallet, error)
	SendTransaction(ctx context.Context, req gateway.TxRequest) (string, error)
}

// Observer is notified of every submission outcome.
type Observer interface {
	ObserveBatchSend(ok bool)
}

// Result summarizes one run.
type Result struct {
	Requested int
	Attempted int
	Sent      int
	Aborted   bool // Too few wallets; nothing was sent.
}

// Driver submits transactions one at a time, pausing between submissions.
type Driver struct {
	gw       Gateway
	out      io.Writer
	interval time.Duration
	gasPrice int
	observer Observer
}

// New creates a driver that prints progress to out.
func New(gw Gateway, out io.Writer, interval time.Duration, gasPrice int) *Driver {
	if gasPrice < 1 {
		gasPrice = config.DefaultGasPrice
	}
	return &Driver{
		gw:       gw,
		out:      out,
		interval: interval,
		gasPrice: gasPrice,
	}
}

// SetObserver attaches an observer for submission outcomes.
func (d *Driver) SetObserver(o Observer) {
	d.observer = o
}

// AmountFor returns the amount of the i-th transfer: 1.0, 1.1, 1.2, ...
func AmountFor(i int) float64 {
	return float64(10+i) / 10
}

// Run sends count transfers, rotating through the gateway's wallets so that
// transfer i goes from wallet i mod n to wallet (i+1) mod n. It stops early
// only when ctx is cancelled.
func (d *Driver) Run(ctx context.Context, count int) Result {
	res := Result{Requested: count}
	fmt.Fprintf(d.out, "🔄 Sending %d test transactions...\n", count)

	wallets, err := d.gw.ListWallets(ctx)
	if err != nil {
		fmt.Fprintf(d.out, "❌ Failed to list wallets: %v\n", err)
	}
	if len(wallets) < MinWallets {
		fmt.Fprintf(d.out, "❌ Need at least %d wallets for test transactions (found %d)\n", MinWallets, len(wallets))
		res.Aborted = true
		return res
	}

	n := len(wallets)
	for i := 0; i < count; i++ {
		req := gateway.TxRequest{
			From:     wallets[i%n].Address,
			To:       wallets[(i+1)%n].Address,
			Amount:   AmountFor(i),
			GasPrice: d.gasPrice,
		}

		res.Attempted++
		hash, err := d.gw.SendTransaction(ctx, req)
		if err != nil {
			fmt.Fprintf(d.out, "❌ Failed to send transaction %d: %v\n", i+1, err)
			klog.Batch.Debug().Err(err).Int("index", i).Msg("Send failed")
		} else {
			res.Sent++
			fmt.Fprintf(d.out, "✅ Transaction %d/%d: %s...\n", i+1, count, truncate(hash, 16))
		}
		if d.observer != nil {
			d.observer.ObserveBatchSend(err == nil)
		}

		if i < count-1 && !d.pause(ctx) {
			fmt.Fprintln(d.out, "Interrupted")
			break
		}
	}

	fmt.Fprintf(d.out, "✅ Sent %d/%d test transactions successfully\n", res.Sent, count)
	klog.Batch.Info().
		Int("sent", res.Sent).
		Int("attempted", res.Attempted).
		Int("requested", count).
		Msg("Batch finished")
	return res
}

// pause waits for the pacing interval. It returns false if ctx ended first.
func (d *Driver) pause(ctx context.Context) bool {
	if d.interval <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d.interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
