// testnet-manager is an operator client for a local multi-node testnet. It
// checks node liveness, reads chain statistics, manages wallets and sends
// transactions through the API gateway.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Klingon-tech/testnet-manager/config"
	"github.com/Klingon-tech/testnet-manager/internal/batch"
	"github.com/Klingon-tech/testnet-manager/internal/console"
	"github.com/Klingon-tech/testnet-manager/internal/gateway"
	klog "github.com/Klingon-tech/testnet-manager/internal/log"
	"github.com/Klingon-tech/testnet-manager/internal/metrics"
	"github.com/Klingon-tech/testnet-manager/internal/prober"
)

func main() {
	cfg, flags, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		if config.IsHelp(err) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
		os.Exit(2)
	}
	logger := klog.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.New()
	if cfg.Metrics.Addr != "" {
		srv, err := metrics.Listen(cfg.Metrics.Addr, collector)
		if err != nil {
			logger.Error().Err(err).Str("addr", cfg.Metrics.Addr).Msg("Metrics listener disabled")
		} else {
			defer srv.Stop()
		}
	}

	gw, err := gateway.NewFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	gw.SetRecorder(collector)

	p := prober.New(cfg.Nodes, cfg.Probe.Timeout)
	p.SetObserver(collector)

	driver := batch.New(gw, os.Stdout, cfg.Batch.Interval, cfg.Batch.GasPrice)
	driver.SetObserver(collector)

	app := console.NewApp(p, gw, os.Stdout)
	app.SetBatch(driver)
	app.SetMetrics(collector)
	app.SetGasPrice(cfg.Batch.GasPrice)

	logger.Debug().
		Str("gateway", gw.Endpoint()).
		Int("nodes", len(cfg.Nodes)).
		Str("action", flags.Action().String()).
		Msg("Starting")

	app.Dispatch(ctx, flags, os.Stdin)
}
