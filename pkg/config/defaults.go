package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/marmos91/dittodrive/pkg/accounts"
	"github.com/marmos91/dittodrive/pkg/drive"
	"github.com/marmos91/dittodrive/pkg/drive/store"
	s3store "github.com/marmos91/dittodrive/pkg/drive/store/s3"
)

// DefaultUmask is the umask of the root account and of accounts created
// without one.
const DefaultUmask = "rwx:r-x"

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values are replaced with defaults; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyDatabaseDefaults(&cfg.Database)
	applyStoreDefaults(&cfg.Store)
	applyDriveDefaults(&cfg.Drive)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_objects", "inuse_space", "goroutines"}
	}
}

func applyDatabaseDefaults(cfg *accounts.Config) {
	cfg.ApplyDefaults()
}

func applyStoreDefaults(cfg *StoreConfig) {
	if cfg.Type == "" {
		cfg.Type = store.TypeBadger
	}
	if cfg.Badger.Path == "" {
		cfg.Badger.Path = filepath.Join(getConfigDir(), "drive")
	}
	if cfg.S3.Key == "" {
		cfg.S3.Key = s3store.DefaultKey
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
}

func applyDriveDefaults(cfg *DriveConfig) {
	if cfg.RootName == "" {
		cfg.RootName = "/"
	}
	if cfg.RootUser == "" {
		cfg.RootUser = "root"
	}
	if cfg.RootUmask == "" {
		cfg.RootUmask = DefaultUmask
	}
	if cfg.DefaultUmask == "" {
		cfg.DefaultUmask = DefaultUmask
	}
	if cfg.MaxLinkDepth == 0 {
		cfg.MaxLinkDepth = drive.DefaultMaxLinkDepth
	}
}

// GetDefaultConfig returns a Config with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Database: accounts.Config{
			Type: accounts.DatabaseTypeSQLite,
		},
		Store: StoreConfig{
			Type: store.TypeBadger,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
