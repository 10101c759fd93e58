package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/akashi/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-p string   Walrus publisher URL
//	-g string   Walrus aggregator URL
//	-r string   chain JSON-RPC URL
//	-k string   certificate package id
//	-d string   data directory
//	-j string   journal driver (sqlite|postgres)
//	-b string   storage backend (walrus|s3)
//	-t duration per-request timeout
//	-i int      online check interval in seconds
//	-l string   log level
//	-m string   metrics listen address
//	-y          sign without asking for confirmation
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-p", "-g", "-r", "-k", "-d", "-j", "-b", "-t", "-i", "-l", "-m", "-y",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.PublisherURL, "p", cfg.PublisherURL, "walrus publisher URL")
	fs.StringVar(&cfg.AggregatorURL, "g", cfg.AggregatorURL, "walrus aggregator URL")
	fs.StringVar(&cfg.RPCURL, "r", cfg.RPCURL, "chain JSON-RPC URL")
	fs.StringVar(&cfg.PackageID, "k", cfg.PackageID, "certificate package id")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.JournalDriver, "j", cfg.JournalDriver, "journal driver (sqlite|postgres)")
	fs.StringVar(&cfg.StorageBackend, "b", cfg.StorageBackend, "storage backend (walrus|s3)")
	fs.DurationVar(&cfg.RequestTimeout.Duration, "t", cfg.RequestTimeout.Duration, "per-request timeout")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address, empty disables")
	fs.BoolVar(&cfg.AutoConfirm, "y", cfg.AutoConfirm, "sign transactions without confirmation")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval.Duration = time.Duration(*onlineCheckInterval) * time.Second
}
