package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/keylength"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/logging"
)

// #region config
// Config is the settings shared by the command-line tools.
type Config struct {
	DBPath         string `yaml:"db"` // empty disables run history
	Language       string `yaml:"language"`
	MaxKeyLength   int    `yaml:"max_key_length"`
	ProfileDir     string `yaml:"profile_dir"`
	FoldDiacritics bool   `yaml:"fold_diacritics"`
	PreserveFormat bool   `yaml:"preserve_format"`
	LogLevel       string `yaml:"log_level"`
	ListenAddr     string `yaml:"listen_addr"`
	RemoteAddr     string `yaml:"remote_addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Language:       "auto",
		MaxKeyLength:   keylength.DefaultMaxLength,
		FoldDiacritics: false,
		LogLevel:       "info",
		ListenAddr:     "localhost:50061",
	}
}

// #endregion config

// #region load
// Load starts from Default, overlays the YAML file at path if it exists
// (empty path skips the file), then applies VIGENERE_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.DBPath = envOr("VIGENERE_DB", cfg.DBPath)
	cfg.Language = envOr("VIGENERE_LANG", cfg.Language)
	cfg.ProfileDir = envOr("VIGENERE_PROFILE_DIR", cfg.ProfileDir)
	cfg.LogLevel = envOr("VIGENERE_LOG_LEVEL", cfg.LogLevel)
	cfg.ListenAddr = envOr("VIGENERE_ADDR", cfg.ListenAddr)
	cfg.RemoteAddr = envOr("VIGENERE_REMOTE", cfg.RemoteAddr)
	if v := envOr("VIGENERE_MAX_KEY_LENGTH", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("VIGENERE_MAX_KEY_LENGTH: %w", err)
		}
		cfg.MaxKeyLength = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// #endregion load

// #region validate
// Validate rejects settings the analyzer cannot run with.
func (c Config) Validate() error {
	if c.MaxKeyLength < keylength.MinLength || c.MaxKeyLength > keylength.MaxWindow {
		return fmt.Errorf("config: max_key_length %d outside [%d, %d]",
			c.MaxKeyLength, keylength.MinLength, keylength.MaxWindow)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Language == "" {
		return fmt.Errorf("config: language is empty")
	}
	return nil
}

// #endregion validate

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
