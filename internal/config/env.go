package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "SITEBUILDER_"

// Environment variables recognised by applyEnv.
const (
	EnvAssets      = EnvPrefix + "ASSETS"
	EnvTasks       = EnvPrefix + "TASKS"
	EnvOutput      = EnvPrefix + "OUTPUT"
	EnvCSSVendor   = EnvPrefix + "CSS_VENDOR"
	EnvDelay       = EnvPrefix + "DELAY"
	EnvVerifyLinks = EnvPrefix + "VERIFY_LINKS"
	EnvLogLevel    = EnvPrefix + "LOG_LEVEL"
	EnvLogFormat   = EnvPrefix + "LOG_FORMAT"
)

// envFiles are loaded in order; earlier files win since existing variables are never overwritten.
var envFiles = []string{".env.local", ".env"}

func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load env file", logfields.File(name), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.File(name))
	}
}

// applyEnv overlays SITEBUILDER_* variables onto cfg. Empty values are ignored.
func applyEnv(cfg *Config, getenv func(string) string) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvAssets, &cfg.Paths.Assets},
		{EnvTasks, &cfg.Paths.Tasks},
		{EnvOutput, &cfg.Paths.Output},
		{EnvCSSVendor, &cfg.Paths.CSSVendor},
	}
	for _, s := range strs {
		if v := getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	if v := getenv(EnvDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid duration in environment").
				WithContext("variable", EnvDelay).
				Build()
		}
		cfg.Build.Delay = d
	}
	if v := getenv(EnvVerifyLinks); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid boolean in environment").
				WithContext("variable", EnvVerifyLinks).
				Build()
		}
		cfg.Build.VerifyLinks = b
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = LogLevel(v)
	}
	if v := getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = LogFormat(v)
	}
	return nil
}
