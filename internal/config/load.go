package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// CLEANAPI_SERVER_PORT or CLEANAPI_AUTH_JWT_SECRET.
const EnvPrefix = "CLEANAPI"

var defaults = map[string]any{
	"server.host":                        "0.0.0.0",
	"server.port":                        8080,
	"server.log_level":                   "info",
	"server.shutdown_timeout_seconds":    10,
	"database.url":                       "",
	"database.max_open_conns":            10,
	"database.max_idle_conns":            5,
	"database.conn_max_lifetime_minutes": 5,
	"auth.jwt_secret":                    "",
	"auth.token_lifetime_minutes":        60,
	"auth.clock_skew_seconds":            0,
	"auth.bcrypt_cost":                   10,
	"auth.login_rate_per_second":         1.0,
	"auth.login_burst":                   5,
	"storage.backend":                    "local",
	"storage.local_root":                 "./uploads",
	"storage.max_upload_bytes":           10 << 20,
	"storage.s3_bucket":                  "",
	"storage.s3_region":                  "",
	"storage.s3_endpoint":                "",
	"storage.s3_access_key_id":           "",
	"storage.s3_secret_access_key":       "",
	"storage.s3_use_path_style":          false,
}

// Load configuration from environment variables and optionally a config file
// (config.yaml in the working directory or ./config).
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
