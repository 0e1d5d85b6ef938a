package console

import (
	"context"
	"io"

	"github.com/Klingon-tech/testnet-manager/config"
	klog "github.com/Klingon-tech/testnet-manager/internal/log"
)

// Dispatch runs the single action selected by f. Failures are printed, never
// returned; in feeds the interactive session.
func (a *App) Dispatch(ctx context.Context, f *config.Flags, in io.Reader) {
	action := f.Action()
	klog.Console.Debug().Str("action", action.String()).Msg("Dispatch")

	switch action {
	case config.ActionStatus:
		a.Status(ctx)
	case config.ActionInteractive:
		NewSession(a, in).Run(ctx)
	case config.ActionTestTransactions:
		a.TestTransactions(ctx, f.TestTransactions)
	case config.ActionCreateWallet:
		a.CreateWallet(ctx)
	case config.ActionListWallets:
		a.ListWallets(ctx, false)
	case config.ActionBalance:
		a.Balance(ctx, f.Balance)
	default:
		a.Hint()
	}
}
