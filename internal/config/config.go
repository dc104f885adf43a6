// Package config loads contextmap settings from defaults, an optional YAML
// file in the home directory and CONTEXTMAP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	FileName  = ".contextmap"
	EnvPrefix = "CONTEXTMAP"

	KeyDBPath         = "db.path"
	KeyDBCompression  = "db.compression"
	KeyHistoryLimit   = "history.limit"
	KeyLogLevel       = "log.level"
	KeyLogFormat      = "log.format"
	KeyCaptureTimeout = "collab.capture_timeout"
)

var ErrInvalidLogFormat = errors.New("config: log format must be text or json")

type Config struct {
	DBPath         string
	DBCompression  string
	HistoryLimit   int
	LogLevel       slog.Level
	LogFormat      string
	CaptureTimeout time.Duration
	// File is the config file that was read, empty when none was found.
	File string
}

// New returns a viper instance with defaults and environment binding set.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDBPath, defaultDBPath())
	v.SetDefault(KeyDBCompression, "zstd")
	v.SetDefault(KeyHistoryLimit, 100)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyCaptureTimeout, 500*time.Millisecond)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func defaultDBPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return FileName + ".db"
	}
	return filepath.Join(home, FileName, "contextmap.db")
}

// Load reads cfgFile, or $HOME/.contextmap.yaml when cfgFile is empty. A
// missing home config is not an error.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(FileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	cfg := Config{
		DBPath:         v.GetString(KeyDBPath),
		DBCompression:  strings.ToLower(v.GetString(KeyDBCompression)),
		HistoryLimit:   v.GetInt(KeyHistoryLimit),
		LogFormat:      strings.ToLower(v.GetString(KeyLogFormat)),
		CaptureTimeout: v.GetDuration(KeyCaptureTimeout),
		File:           v.ConfigFileUsed(),
	}
	if expanded, err := homedir.Expand(cfg.DBPath); err == nil {
		cfg.DBPath = expanded
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", KeyLogLevel, err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidLogFormat, cfg.LogFormat)
	}
	return cfg, nil
}

// Logger builds the slog logger described by cfg, writing to stderr.
func (c Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
