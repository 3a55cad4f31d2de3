package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/dittodrive/pkg/accounts"
	"github.com/marmos91/dittodrive/pkg/drive/store"
)

// EnvPrefix prefixes every environment override, e.g.
// DITTODRIVE_LOGGING_LEVEL=DEBUG.
const EnvPrefix = "DITTODRIVE"

// Config represents the DittoDrive configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (DITTODRIVE_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics controls Prometheus metrics collection
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Database configures the accounts database (SQLite or PostgreSQL).
	Database accounts.Config `mapstructure:"database" yaml:"database"`

	// Store selects where the drive snapshot is persisted.
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Drive holds the settings of the file tree itself.
	Drive DriveConfig `mapstructure:"drive" yaml:"drive"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure disables TLS towards the collector
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL
	// Default: "http://localhost:4040"
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	// Default: ["cpu", "alloc_objects", "inuse_space", "goroutines"]
	ProfileTypes []string `mapstructure:"profile_types" validate:"dive,oneof=cpu alloc_objects alloc_space inuse_objects inuse_space goroutines mutex_count mutex_duration block_count block_duration" yaml:"profile_types"`
}

// MetricsConfig configures Prometheus metrics.
// When Enabled is false, no metrics are collected.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port serves /metrics while the interactive shell runs. 0 disables
	// the endpoint; metrics remain readable with the shell's stats command.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// StoreConfig selects and configures the snapshot store.
type StoreConfig struct {
	// Type is one of memory, badger or s3.
	// Default: badger
	Type store.Type `mapstructure:"type" validate:"required,oneof=memory badger s3" yaml:"type"`

	Badger BadgerStoreConfig `mapstructure:"badger" yaml:"badger"`
	S3     S3StoreConfig     `mapstructure:"s3" yaml:"s3"`

	// Timeout bounds a single load or save.
	// Default: 30s
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0" yaml:"timeout"`
}

// BadgerStoreConfig configures the Badger snapshot store.
type BadgerStoreConfig struct {
	// Path is the database directory.
	// Default: $XDG_CONFIG_HOME/dittodrive/drive
	Path string `mapstructure:"path" yaml:"path"`
}

// S3StoreConfig configures the S3 snapshot store.
type S3StoreConfig struct {
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// Key is the snapshot object key.
	// Default: dittodrive/snapshot.json
	Key string `mapstructure:"key" yaml:"key,omitempty"`

	Region string `mapstructure:"region" yaml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint (MinIO, Localstack).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`

	// AccessKeyID and SecretAccessKey override the AWS credential chain.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`

	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style"`
}

// DriveConfig holds the settings of the drive tree.
type DriveConfig struct {
	// RootName is the name, and path, of the root directory.
	// Default: "/"
	RootName string `mapstructure:"root_name" validate:"required" yaml:"root_name"`

	// RootUser owns the root directory and bypasses permission checks.
	// Default: "root"
	RootUser string `mapstructure:"root_user" validate:"required" yaml:"root_user"`

	// RootUmask is the umask of the root account created by init.
	// Default: "rwx:r-x"
	RootUmask string `mapstructure:"root_umask" validate:"required,perms" yaml:"root_umask"`

	// DefaultUmask is given to accounts created without one.
	// Default: "rwx:r-x"
	DefaultUmask string `mapstructure:"default_umask" validate:"required,perms" yaml:"default_umask"`

	// MaxLinkDepth bounds link chains followed by run.
	// Default: 8
	MaxLinkDepth int `mapstructure:"max_link_depth" validate:"gte=1" yaml:"max_link_depth"`
}

// Load loads configuration from file, environment, and defaults.
//
// A missing config file is not an error: the defaults are returned, still
// subject to environment overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	return decode(v)
}

// MustLoad loads configuration with helpful error messages when the
// config file does not exist.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  dittodrive init\n\n"+
				"Or specify a custom config file:\n"+
				"  dittodrive <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  dittodrive init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// Watch reloads the configuration whenever the file at configPath changes
// and passes every valid result to onChange. Invalid edits are reported to
// onError and otherwise ignored.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no configuration file to watch")
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// SaveConfig saves the configuration to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file may hold database and S3 credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := GetDefaultConfig()
	if err := v.Unmarshal(cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v, reflect.TypeOf(Config{}), "")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// bindEnv registers every leaf key with viper. AutomaticEnv alone only
// answers Get calls; Unmarshal needs the keys to be known.
func bindEnv(v *viper.Viper, t reflect.Type, prefix string) {
	for i := range t.NumField() {
		f := t.Field(i)
		tag := strings.Split(f.Tag.Get("mapstructure"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct && f.Type != reflect.TypeOf(time.Duration(0)) {
			bindEnv(v, f.Type, key)
			continue
		}
		_ = v.BindEnv(key)
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error).
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		storeTypeDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// durationDecodeHook converts strings like "30s", "5m", "1h" to
// time.Duration.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// storeTypeDecodeHook lowercases store type names so "Badger" and
// "S3" are accepted.
func storeTypeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(store.Type("")) {
			return data, nil
		}
		if s, ok := data.(string); ok {
			return store.Type(strings.ToLower(strings.TrimSpace(s))), nil
		}
		return data, nil
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/dittodrive, ~/.config/dittodrive,
// or "." when no home directory is known.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dittodrive")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "dittodrive")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
