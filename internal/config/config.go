package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDocumentPath = "~/Documents/model.json"
	DefaultIndexPath    = "~/.cache/modelrepo/index.db"
	DefaultHistoryLimit = 100
	DefaultLogLevel     = "INFO"
	DefaultLogFormat    = "PRETTY"
)

// Config holds the settings shared by the binaries.
type Config struct {
	Document     string `yaml:"document"`
	Index        string `yaml:"index"`
	HistoryLimit int    `yaml:"history_limit"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	Editor       string `yaml:"editor"` // Overrides $VISUAL and $EDITOR
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Document:     DefaultDocumentPath,
		Index:        DefaultIndexPath,
		HistoryLimit: DefaultHistoryLimit,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
	}
}

// Path returns the config file location: MODELREPO_CONFIG, falling back to
// ~/.config/modelrepo/config.yaml.
func Path() string {
	if env := os.Getenv("MODELREPO_CONFIG"); env != "" {
		return env
	}
	return "~/.config/modelrepo/config.yaml"
}

// Load layers defaults, the YAML file at Path (if present) and the
// MODELREPO_DOCUMENT, MODELREPO_INDEX and MODELREPO_HISTORY env vars.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ExpandPath(path))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if env := os.Getenv("MODELREPO_DOCUMENT"); env != "" {
		cfg.Document = env
	}
	if env := os.Getenv("MODELREPO_INDEX"); env != "" {
		cfg.Index = env
	}
	if env := os.Getenv("MODELREPO_HISTORY"); env != "" {
		n, err := strconv.Atoi(env)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("MODELREPO_HISTORY must be a positive integer, got %q", env)
		}
		cfg.HistoryLimit = n
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}

	cfg.Document = ExpandPath(cfg.Document)
	cfg.Index = ExpandPath(cfg.Index)
	return cfg, nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
