// Package config loads catalogctl settings from a config file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/joshuapare/catalogkit/catalog"
	"github.com/joshuapare/catalogkit/catalog/embedded"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. CATALOGKIT_BACKUP_SUFFIX.
	EnvPrefix = "CATALOGKIT"
	// FileName is the config file name searched for, without extension.
	FileName = "catalogkit"
)

// Config is the full set of settings.
type Config struct {
	Backup BackupConfig `mapstructure:"backup"`
	Patch  PatchConfig  `mapstructure:"patch"`
	Log    LogConfig    `mapstructure:"log"`
}

// BackupConfig controls backup naming.
type BackupConfig struct {
	Suffix string `mapstructure:"suffix"`
}

// PatchConfig controls checksum patching.
type PatchConfig struct {
	StrictProviderMatch bool   `mapstructure:"strict_provider_match"`
	ProviderMatch       string `mapstructure:"provider_match"`
	EmbeddedEncoding    string `mapstructure:"embedded_encoding"`
	Workers             int    `mapstructure:"workers"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration. An explicit path must exist; otherwise
// catalogkit.yaml is looked up in the working directory and
// $HOME/.config/catalogkit, and a missing file means defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	v.SetDefault("backup.suffix", catalog.DefaultBackupSuffix)
	v.SetDefault("patch.strict_provider_match", false)
	v.SetDefault("patch.provider_match", "suffix")
	v.SetDefault("patch.embedded_encoding", "utf16")
	v.SetDefault("patch.workers", 4)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &c, nil
}

// CatalogOptions converts the patch settings to catalog.Options.
func (c *Config) CatalogOptions(log zerolog.Logger) (catalog.Options, error) {
	match, err := embedded.ParseProviderMatch(c.Patch.ProviderMatch)
	if err != nil {
		return catalog.Options{}, fmt.Errorf("config: patch.provider_match: %w", err)
	}
	enc, err := embedded.ParseEncoding(c.Patch.EmbeddedEncoding)
	if err != nil {
		return catalog.Options{}, fmt.Errorf("config: patch.embedded_encoding: %w", err)
	}
	return catalog.Options{
		Logger:              log,
		BackupSuffix:        c.Backup.Suffix,
		StrictProviderMatch: c.Patch.StrictProviderMatch,
		ProviderMatch:       match,
		Encoding:            enc,
	}, nil
}

// LogLevel parses the configured level, defaulting to info.
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || c.Log.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
