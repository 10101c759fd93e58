package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/akashi/internal/client/config"
	"github.com/dmitrijs2005/akashi/internal/client/services"
	"github.com/dmitrijs2005/akashi/internal/client/wallet"
	"github.com/dmitrijs2005/akashi/internal/logging"
	"github.com/dmitrijs2005/akashi/internal/metrics"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App is the interactive client. It holds the connected wallet session and
// the current connectivity mode.
type App struct {
	config  *config.Config
	certs   services.CertificateService
	wallets services.WalletService
	tracker *services.ViewTracker
	logger  logging.Logger

	session wallet.Session

	mu   sync.RWMutex
	mode Mode

	reader *bufio.Reader
	out    io.Writer

	metricsServer *metrics.Server
	closers       []func() error
}

// Deps are the services an App drives.
type Deps struct {
	Config  *config.Config
	Certs   services.CertificateService
	Wallets services.WalletService
	Logger  logging.Logger
}

// New builds an App reading commands from in and writing to out.
func New(d Deps, in *bufio.Reader, out io.Writer) *App {
	logger := d.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &App{
		config:  d.Config,
		certs:   d.Certs,
		wallets: d.Wallets,
		tracker: &services.ViewTracker{},
		logger:  logger,
		reader:  in,
		out:     out,
	}
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) isConnected() bool {
	return a.session.Connected()
}

func (a *App) isOnline() bool {
	return a.Mode() == ModeOnline
}

// checkOnline pings the node once and updates the mode.
func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.certs.Ping(ctx)
	cancel()

	if err != nil {
		a.logger.Debug(ctx, "ping failed", "error", err)
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the node every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Close releases everything NewApp opened.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
