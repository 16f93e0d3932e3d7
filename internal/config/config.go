// Package config handles TOML configuration loading with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// DefaultMaxUploadBytes caps a single uploaded file at 100 MiB.
const DefaultMaxUploadBytes = 100 << 20

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Library LibraryConfig `toml:"library"`
	Probe   ProbeConfig   `toml:"probe"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type LibraryConfig struct {
	MaxUploadBytes int64  `toml:"max_upload_bytes"`
	ScratchDir     string `toml:"scratch_dir"`
}

type ProbeConfig struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Load reads the configuration file, applies defaults and environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8972
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.Library.MaxUploadBytes == 0 {
		cfg.Library.MaxUploadBytes = DefaultMaxUploadBytes
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("VIDSHELF_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VIDSHELF_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v, ok := os.LookupEnv("VIDSHELF_LOG_LEVEL"); ok {
		cfg.Server.LogLevel = v
	}
	if v, ok := os.LookupEnv("VIDSHELF_MAX_UPLOAD"); ok {
		max, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("VIDSHELF_MAX_UPLOAD: %w", err)
		}
		cfg.Library.MaxUploadBytes = max
	}
	if v, ok := os.LookupEnv("VIDSHELF_SCRATCH_DIR"); ok {
		cfg.Library.ScratchDir = v
	}
	return nil
}
