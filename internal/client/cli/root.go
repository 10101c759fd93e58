package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/akashi/internal/common"
)

func (a *App) getStatus() string {
	var parts []string
	if a.isConnected() {
		parts = append(parts, common.ShortID(a.session.Account()))
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf(" (%s)", strings.Join(parts, " "))
}

// Run greets the user, starts the connectivity watcher and the metrics
// endpoint, and runs the REPL until exit or ctx cancellation.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to Akashi certificates (type 'help' for commands)")
	if last, err := a.wallets.LastAccount(ctx); err == nil && last != "" && a.wallets.KeystoreExists() {
		fmt.Fprintf(a.out, "Last account: %s. Type 'connect' to unlock it.\n", last)
	}

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval.Duration)

	if a.metricsServer != nil {
		go func() {
			if err := a.metricsServer.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error(ctx, "metrics server stopped", "error", err)
			}
		}()
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}
