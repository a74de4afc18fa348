// Package config loads cutover settings from defaults, an optional YAML file,
// a .env file and CUTOVER_* environment variables.
package config

import (
	"context"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete cutover configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Rewrite RewriteConfig `mapstructure:"rewrite" yaml:"rewrite"`
	Local   LocalConfig   `mapstructure:"local" yaml:"local"`
	Remote  RemoteConfig  `mapstructure:"remote" yaml:"remote"`
	Migrate MigrateConfig `mapstructure:"migrate" yaml:"migrate"`
	Verify  VerifyConfig  `mapstructure:"verify" yaml:"verify"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// RewriteConfig configures the URL literal rewriter.
type RewriteConfig struct {
	Constant   string   `mapstructure:"constant" yaml:"constant" validate:"required"`
	ImportPath string   `mapstructure:"import_path" yaml:"import_path" validate:"required"`
	Directive  string   `mapstructure:"directive" yaml:"directive"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions" validate:"required,min=1,dive,startswith=."`
	Exclude    []string `mapstructure:"exclude" yaml:"exclude"`
	ConfigFile string   `mapstructure:"config_file" yaml:"config_file"`
	IgnoreFile string   `mapstructure:"ignore_file" yaml:"ignore_file"`
}

// LocalConfig describes the containerized source database.
type LocalConfig struct {
	Runtime   string `mapstructure:"runtime" yaml:"runtime" validate:"required"`
	Container string `mapstructure:"container" yaml:"container" validate:"required"`
	User      string `mapstructure:"user" yaml:"user" validate:"required"`
	Password  string `mapstructure:"password" yaml:"password"`
	Database  string `mapstructure:"database" yaml:"database" validate:"required"`
}

// RemoteConfig describes the destination database.
type RemoteConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// MigrateConfig configures the dump and import.
type MigrateConfig struct {
	DumpFile     string   `mapstructure:"dump_file" yaml:"dump_file" validate:"required"`
	IgnoreTables []string `mapstructure:"ignore_tables" yaml:"ignore_tables"`
	KeepDump     bool     `mapstructure:"keep_dump" yaml:"keep_dump"`
}

// VerifyConfig configures the row count comparison.
type VerifyConfig struct {
	Tables []string `mapstructure:"tables" yaml:"tables" validate:"required,min=1"`
	// Direct connects to the remote with the Go driver instead of the container client.
	Direct          bool          `mapstructure:"direct" yaml:"direct"`
	ConnectAttempts uint          `mapstructure:"connect_attempts" yaml:"connect_attempts" validate:"min=1"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout" validate:"gt=0"`
}

const redacted = "********"

// Redacted returns a copy of c without secrets.
func (c Config) Redacted() Config {
	if c.Local.Password != "" {
		c.Local.Password = redacted
	}
	if c.Remote.URL != "" {
		c.Remote.URL = redacted
	}
	return c
}

// WriteYAML writes the redacted configuration to w.
func (c Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.Redacted()); err != nil {
		return err
	}
	return enc.Close()
}

type ctxKey struct{}

// WithContext returns a context carrying cfg.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the configuration stored by WithContext, or the
// defaults when there is none.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}
	cfg := Default()
	return &cfg
}
