package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smartgwiza/reports-cli/internal/resilience"
)

// Config holds the full application configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend" mapstructure:"backend"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Session SessionConfig `yaml:"session" mapstructure:"session"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// BackendConfig configures the SmartGwiza API client.
type BackendConfig struct {
	BaseURL             string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs         int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec          float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst               int     `yaml:"burst" mapstructure:"burst"`
	RetryAttempts       int     `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoffMs      int     `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
	BreakerThreshold    int     `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldownSecs int     `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
}

// Timeout is the per-request HTTP timeout.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// RetryPolicy converts the retry settings.
func (b BackendConfig) RetryPolicy() resilience.Policy {
	p := resilience.DefaultPolicy()
	if b.RetryAttempts > 0 {
		p.Attempts = b.RetryAttempts
	}
	if b.RetryBackoffMs > 0 {
		p.InitialBackoff = time.Duration(b.RetryBackoffMs) * time.Millisecond
	}
	return p
}

// Breaker builds the circuit breaker for the client.
func (b BackendConfig) Breaker() *resilience.Breaker {
	return resilience.NewBreaker(b.BreakerThreshold, time.Duration(b.BreakerCooldownSecs)*time.Second)
}

// StoreConfig configures the snapshot cache and export history.
type StoreConfig struct {
	Driver             string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL        string `yaml:"database_url" mapstructure:"database_url"`
	SnapshotTTLMinutes int    `yaml:"snapshot_ttl_minutes" mapstructure:"snapshot_ttl_minutes"`
}

// SnapshotTTL is how long cached payloads stay fresh.
func (s StoreConfig) SnapshotTTL() time.Duration {
	return time.Duration(s.SnapshotTTLMinutes) * time.Minute
}

// ExportConfig configures report generation.
type ExportConfig struct {
	OutputDir       string `yaml:"output_dir" mapstructure:"output_dir"`
	Product         string `yaml:"product" mapstructure:"product"`
	Timezone        string `yaml:"timezone" mapstructure:"timezone"`
	DateFormat      string `yaml:"date_format" mapstructure:"date_format"`
	SubmissionLimit int    `yaml:"submission_limit" mapstructure:"submission_limit"`
	FarmerPageLimit int    `yaml:"farmer_page_limit" mapstructure:"farmer_page_limit"`
	TrendDays       int    `yaml:"trend_days" mapstructure:"trend_days"`
}

// Location resolves Timezone.
func (e ExportConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return nil, eris.Wrapf(err, "config: load timezone %q", e.Timezone)
	}
	return loc, nil
}

// SessionConfig locates the session file.
type SessionConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ResolvedPath returns Path, or ~/.smartgwiza/session.yaml when unset.
func (s SessionConfig) ResolvedPath() string {
	if s.Path != "" {
		return s.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".smartgwiza", "session.yaml")
	}
	return filepath.Join(home, ".smartgwiza", "session.yaml")
}

// ServerConfig configures the download server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SMARTGWIZA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("backend.base_url", "https://smartgwiza-be-1.onrender.com")
	v.SetDefault("backend.timeout_secs", 30)
	v.SetDefault("backend.rate_per_sec", 5.0)
	v.SetDefault("backend.burst", 5)
	v.SetDefault("backend.retry_attempts", 3)
	v.SetDefault("backend.retry_backoff_ms", 500)
	v.SetDefault("backend.breaker_threshold", 5)
	v.SetDefault("backend.breaker_cooldown_secs", 30)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "smartgwiza.db")
	v.SetDefault("store.snapshot_ttl_minutes", 60)
	v.SetDefault("export.output_dir", ".")
	v.SetDefault("export.product", "smartgwiza")
	v.SetDefault("export.timezone", "UTC")
	v.SetDefault("export.date_format", "2006-01-02 15:04")
	v.SetDefault("export.submission_limit", 200)
	v.SetDefault("export.farmer_page_limit", 100)
	v.SetDefault("export.trend_days", 30)
	v.SetDefault("session.path", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// Validation modes, one per command family.
const (
	ModeBackend = "backend" // commands that call the API
	ModeExport  = "export"  // report generation, online or offline
	ModeServe   = "serve"   // the download server
)

// Validate checks the settings mode depends on and reports every problem
// at once.
func (c *Config) Validate(mode string) error {
	var problems []string
	need := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}
	backend := func() {
		need(c.Backend.BaseURL != "", "backend.base_url is required")
		need(c.Backend.TimeoutSecs > 0, "backend.timeout_secs must be > 0")
	}
	export := func() {
		need(c.Export.Product != "", "export.product is required")
		need(c.Export.DateFormat != "", "export.date_format is required")
		if _, err := c.Export.Location(); err != nil {
			problems = append(problems, err.Error())
		}
		need(c.Store.Driver == "sqlite" || c.Store.Driver == "postgres", "store.driver must be sqlite or postgres")
		need(c.Store.DatabaseURL != "", "store.database_url is required")
	}

	switch mode {
	case ModeBackend:
		backend()
	case ModeExport:
		backend()
		export()
	case ModeServe:
		backend()
		export()
		need(c.Server.Port > 0 && c.Server.Port < 65536, "server.port must be between 1 and 65535")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
