package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/akashi/internal/timex"
)

// Storage backends.
const (
	BackendWalrus = "walrus"
	BackendS3     = "s3"
)

// Journal drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultPackageID is the testnet deployment of the certificate program.
const DefaultPackageID = "0x57ef8f2cfa12b3f5fcff0c2ac99cd40de3d81038b0758f13f4dde3804e7d7333"

// Config holds runtime settings for the Akashi CLI.
//
// Every field can come from the config file (json/yaml keys), from the
// environment (AKASHI_ prefix plus the envconfig key) or, for the most
// common ones, from a short command-line flag.
type Config struct {
	// Blob storage.
	StorageBackend     string `json:"storage_backend" yaml:"storage_backend" envconfig:"STORAGE_BACKEND"`
	PublisherURL       string `json:"publisher_url" yaml:"publisher_url" envconfig:"PUBLISHER_URL"`
	AggregatorURL      string `json:"aggregator_url" yaml:"aggregator_url" envconfig:"AGGREGATOR_URL"`
	StorageEpochs      int    `json:"storage_epochs" yaml:"storage_epochs" envconfig:"STORAGE_EPOCHS"`
	PublisherJWTSecret string `json:"publisher_jwt_secret" yaml:"publisher_jwt_secret" envconfig:"PUBLISHER_JWT_SECRET"`
	UploadRetries      int    `json:"upload_retries" yaml:"upload_retries" envconfig:"UPLOAD_RETRIES"`
	MaxFileSize        int64  `json:"max_file_size" yaml:"max_file_size" envconfig:"MAX_FILE_SIZE"`

	S3Bucket    string `json:"s3_bucket" yaml:"s3_bucket" envconfig:"S3_BUCKET"`
	S3Region    string `json:"s3_region" yaml:"s3_region" envconfig:"S3_REGION"`
	S3Endpoint  string `json:"s3_endpoint" yaml:"s3_endpoint" envconfig:"S3_ENDPOINT"`
	S3AccessKey string `json:"s3_access_key" yaml:"s3_access_key" envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `json:"s3_secret_key" yaml:"s3_secret_key" envconfig:"S3_SECRET_KEY"`

	// Chain.
	RPCURL         string         `json:"rpc_url" yaml:"rpc_url" envconfig:"RPC_URL"`
	PackageID      string         `json:"package_id" yaml:"package_id" envconfig:"PACKAGE_ID"`
	GasBudget      uint64         `json:"gas_budget" yaml:"gas_budget" envconfig:"GAS_BUDGET"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	PageLimit      int            `json:"page_limit" yaml:"page_limit" envconfig:"PAGE_LIMIT"`
	MaxPages       int            `json:"max_pages" yaml:"max_pages" envconfig:"MAX_PAGES"`

	// Local state.
	DataDir       string `json:"data_dir" yaml:"data_dir" envconfig:"DATA_DIR"`
	JournalDriver string `json:"journal_driver" yaml:"journal_driver" envconfig:"JOURNAL_DRIVER"`
	JournalDSN    string `json:"journal_dsn" yaml:"journal_dsn" envconfig:"JOURNAL_DSN"`
	KeystorePath  string `json:"keystore_path" yaml:"keystore_path" envconfig:"KEYSTORE_PATH"`
	AutoConfirm   bool   `json:"auto_confirm" yaml:"auto_confirm" envconfig:"AUTO_CONFIRM"`

	// Operations.
	MetricsAddr         string         `json:"metrics_addr" yaml:"metrics_addr" envconfig:"METRICS_ADDR"`
	LogLevel            string         `json:"log_level" yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat           string         `json:"log_format" yaml:"log_format" envconfig:"LOG_FORMAT"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval" envconfig:"ONLINE_CHECK_INTERVAL"`
}

// LoadDefaults populates c with testnet defaults.
func (c *Config) LoadDefaults() {
	c.StorageBackend = BackendWalrus
	c.PublisherURL = "https://publisher.walrus-testnet.walrus.space"
	c.AggregatorURL = "https://aggregator.walrus-testnet.walrus.space"
	c.StorageEpochs = 100
	c.UploadRetries = 0
	c.MaxFileSize = 10 << 20

	c.S3Region = "us-east-1"

	c.RPCURL = "https://fullnode.testnet.sui.io:443"
	c.PackageID = DefaultPackageID
	c.GasBudget = 10_000_000
	c.RequestTimeout = timex.Duration{Duration: 30 * time.Second}
	c.PageLimit = 50
	c.MaxPages = 4

	c.DataDir = ".akashi"
	c.JournalDriver = DriverSQLite

	c.LogLevel = "info"
	c.LogFormat = "text"
	c.OnlineCheckInterval = timex.Duration{Duration: 5 * time.Second}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if present), the environment and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports the first setting that makes the client unusable.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageBackend {
	case BackendWalrus:
		if c.PublisherURL == "" || c.AggregatorURL == "" {
			errs = append(errs, errors.New("walrus backend needs publisher_url and aggregator_url"))
		}
		if c.StorageEpochs <= 0 {
			errs = append(errs, fmt.Errorf("storage_epochs must be positive, got %d", c.StorageEpochs))
		}
	case BackendS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("s3 backend needs s3_bucket"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage_backend %q", c.StorageBackend))
	}

	switch c.JournalDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.JournalDSN == "" {
			errs = append(errs, errors.New("postgres journal needs journal_dsn"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown journal_driver %q", c.JournalDriver))
	}

	if c.RPCURL == "" {
		errs = append(errs, errors.New("rpc_url is required"))
	}
	if !strings.HasPrefix(c.PackageID, "0x") {
		errs = append(errs, fmt.Errorf("package_id %q is not a 0x address", c.PackageID))
	}
	if c.RequestTimeout.Duration <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.PageLimit <= 0 || c.MaxPages <= 0 {
		errs = append(errs, errors.New("page_limit and max_pages must be positive"))
	}
	if c.UploadRetries < 0 {
		errs = append(errs, errors.New("upload_retries must not be negative"))
	}

	return errors.Join(errs...)
}

// JournalPath returns the DSN of the journal database. For SQLite with no
// explicit DSN it is journal.db inside dataDir.
func (c *Config) JournalPath(dataDir string) string {
	if c.JournalDSN != "" || c.JournalDriver != DriverSQLite {
		return c.JournalDSN
	}
	return filepath.Join(dataDir, "journal.db")
}

// KeystoreFile returns the keystore location, defaulting to keystore.json
// inside dataDir.
func (c *Config) KeystoreFile(dataDir string) string {
	if c.KeystorePath != "" {
		return c.KeystorePath
	}
	return filepath.Join(dataDir, "keystore.json")
}
