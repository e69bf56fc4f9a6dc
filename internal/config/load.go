package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "FLASHDECK"

// Defaults applied before any file or environment value.
var defaults = map[string]any{
	"server.port":                         8080,
	"server.log_level":                    "info",
	"server.cors_allowed_origins":         []string{"http://localhost:3000"},
	"server.public_url":                   "http://localhost:3000",
	"backend.mode":                        BackendMock,
	"backend.state_file":                  "",
	"backend.state_key":                   "flashcard-app-storage",
	"database.url":                        "",
	"auth.token_lifetime_minutes":         60,
	"auth.refresh_token_lifetime_minutes": 10080,
	"auth.bcrypt_cost":                    10,
	"auth.require_email_confirmation":     true,
	"auth.verification_lifetime_minutes":  1440,
	"llm.gemini_api_key":                  "",
	"llm.gemini_base_url":                 "",
	"llm.default_model":                   "gemini-2.5-flash-lite",
	"llm.allowed_models":                  []string{"gemini-2.5-flash-lite", "gemma-3-4b-it"},
	"llm.max_output_tokens":               4096,
	"task.worker_count":                   2,
	"task.queue_size":                     100,
	"task.task_timeout_seconds":           30,
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// configFile may be empty, in which case ./config.yaml is used when present.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only affects Get; Unmarshal needs every key bound explicitly.
	for key := range defaults {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	if err := v.BindEnv("auth.jwt_secret"); err != nil {
		return nil, fmt.Errorf("failed to bind env for auth.jwt_secret: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags plus the cross-field rules that tags cannot express.
func Validate(cfg *Config) error {
	validate := validator.New()
	validate.RegisterStructValidation(backendRules, Config{})

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func backendRules(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)

	if cfg.Backend.Mode == BackendRemote && cfg.Database.URL == "" {
		sl.ReportError(cfg.Database.URL, "Database.URL", "URL", "required_for_remote", "")
	}
	if !slices.Contains(cfg.LLM.AllowedModels, cfg.LLM.DefaultModel) {
		sl.ReportError(cfg.LLM.DefaultModel, "LLM.DefaultModel", "DefaultModel", "in_allowed_models", "")
	}
}

// IsRemote reports whether the remote backend was selected.
func (c *Config) IsRemote() bool {
	return c.Backend.Mode == BackendRemote
}
