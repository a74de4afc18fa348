package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".cutover"

const configType = "yaml"

// envPrefix is the environment variable prefix for cutover settings.
const envPrefix = "CUTOVER"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Rewrite: RewriteConfig{
			Constant:   "API_URL",
			ImportPath: "@/src/config/api",
			Directive:  "use client",
			Extensions: []string{".tsx", ".ts", ".js"},
			Exclude:    []string{"node_modules", ".next", ".git"},
			ConfigFile: "src/config/api.ts",
		},
		Local: LocalConfig{
			Runtime:   "docker",
			Container: "saas_mysql",
			User:      "root",
			Password:  "rootpassword",
			Database:  "saas_db",
		},
		Migrate: MigrateConfig{
			DumpFile:     "saas_backup.sql",
			IgnoreTables: []string{"_prisma_migrations"},
		},
		Verify: VerifyConfig{
			Tables:          []string{"users", "tenants", "assessment_models", "connections", "assessment_assignments"},
			ConnectAttempts: 3,
			ConnectTimeout:  30 * time.Second,
		},
	}
}

func applyDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("rewrite.constant", d.Rewrite.Constant)
	v.SetDefault("rewrite.import_path", d.Rewrite.ImportPath)
	v.SetDefault("rewrite.directive", d.Rewrite.Directive)
	v.SetDefault("rewrite.extensions", d.Rewrite.Extensions)
	v.SetDefault("rewrite.exclude", d.Rewrite.Exclude)
	v.SetDefault("rewrite.config_file", d.Rewrite.ConfigFile)
	v.SetDefault("rewrite.ignore_file", d.Rewrite.IgnoreFile)

	v.SetDefault("local.runtime", d.Local.Runtime)
	v.SetDefault("local.container", d.Local.Container)
	v.SetDefault("local.user", d.Local.User)
	v.SetDefault("local.password", d.Local.Password)
	v.SetDefault("local.database", d.Local.Database)

	v.SetDefault("remote.url", d.Remote.URL)

	v.SetDefault("migrate.dump_file", d.Migrate.DumpFile)
	v.SetDefault("migrate.ignore_tables", d.Migrate.IgnoreTables)
	v.SetDefault("migrate.keep_dump", d.Migrate.KeepDump)

	v.SetDefault("verify.tables", d.Verify.Tables)
	v.SetDefault("verify.direct", d.Verify.Direct)
	v.SetDefault("verify.connect_attempts", d.Verify.ConnectAttempts)
	v.SetDefault("verify.connect_timeout", d.Verify.ConnectTimeout)
}

// Load reads configuration from defaults, the config file, a .env file in
// the working directory and the environment, in increasing precedence.
// If configPath is empty, .cutover.yaml is searched in CWD and $HOME; a
// missing file is not an error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
