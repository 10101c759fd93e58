package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/akashi/internal/client/client"
	"github.com/dmitrijs2005/akashi/internal/client/config"
	"github.com/dmitrijs2005/akashi/internal/client/journal"
	"github.com/dmitrijs2005/akashi/internal/client/s3blob"
	"github.com/dmitrijs2005/akashi/internal/client/services"
	"github.com/dmitrijs2005/akashi/internal/client/walrus"
	"github.com/dmitrijs2005/akashi/internal/client/wallet"
	"github.com/dmitrijs2005/akashi/internal/filex"
	"github.com/dmitrijs2005/akashi/internal/logging"
	"github.com/dmitrijs2005/akashi/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// NewApp opens the journal, builds the transports from c and returns an App
// on stdin/stdout. Call Close when done.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	return newApp(ctx, c, logger, bufio.NewReader(os.Stdin), os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, in *bufio.Reader, out io.Writer) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dataDir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	j, err := journal.Open(ctx, c.JournalDriver, c.JournalPath(dataDir))
	if err != nil {
		logger.Error(ctx, "error initializing journal", "driver", c.JournalDriver, "error", err)
		return nil, err
	}

	store, err := newBlobStore(ctx, c)
	if err != nil {
		_ = j.Close()
		return nil, err
	}

	chain := client.NewRPCClient(c.RPCURL, client.WithTimeout(c.RequestTimeout.Duration))

	var m *metrics.Metrics
	var registry *prometheus.Registry
	if c.MetricsAddr != "" {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(registry)
	}

	guard := services.NewActionGuard()
	certs := services.NewCertificateService(store, chain, j,
		services.WithPackageID(c.PackageID),
		services.WithPaging(c.PageLimit, c.MaxPages),
		services.WithLogger(logger),
		services.WithMetrics(m),
		services.WithGuard(guard),
	)

	var gate wallet.PermissionGate = wallet.PromptGate{In: in, Out: out}
	if c.AutoConfirm {
		gate = wallet.AutoConfirm{}
	}
	ks := wallet.NewKeystore(c.KeystoreFile(dataDir))
	wallets := services.NewWalletService(ks, chain, j.Metadata, logger,
		wallet.WithGate(gate), wallet.WithGasBudget(c.GasBudget))

	app := New(Deps{Config: c, Certs: certs, Wallets: wallets, Logger: logger}, in, out)
	app.closers = append(app.closers, j.Close)

	if registry != nil {
		app.metricsServer = metrics.NewServer(c.MetricsAddr, registry, logger)
	}
	return app, nil
}

func newBlobStore(ctx context.Context, c *config.Config) (services.BlobStore, error) {
	switch c.StorageBackend {
	case config.BackendWalrus:
		opts := []walrus.Option{
			walrus.WithEpochs(c.StorageEpochs),
			walrus.WithMaxFileSize(c.MaxFileSize),
			walrus.WithTimeout(c.RequestTimeout.Duration),
			walrus.WithRetries(c.UploadRetries, 0),
		}
		if c.PublisherJWTSecret != "" {
			opts = append(opts, walrus.WithJWTSecret(c.PublisherJWTSecret))
		}
		return walrus.New(c.PublisherURL, c.AggregatorURL, opts...), nil

	case config.BackendS3:
		store, err := s3blob.New(ctx, s3blob.Options{
			Bucket:      c.S3Bucket,
			Region:      c.S3Region,
			Endpoint:    c.S3Endpoint,
			AccessKey:   c.S3AccessKey,
			SecretKey:   c.S3SecretKey,
			MaxFileSize: c.MaxFileSize,
			Timeout:     c.RequestTimeout.Duration,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, errors.New("unknown storage backend " + c.StorageBackend)
}
