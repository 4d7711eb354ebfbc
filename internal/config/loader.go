package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr               string `json:"addr" yaml:"addr" toml:"addr"`
	BackendURL         string `json:"backend_url" yaml:"backend_url" toml:"backend_url"`
	Transport          string `json:"transport" yaml:"transport" toml:"transport"`
	ProgressThrottleMS int    `json:"progress_throttle_ms" yaml:"progress_throttle_ms" toml:"progress_throttle_ms"`
	CompletionGraceMS  int    `json:"completion_grace_ms" yaml:"completion_grace_ms" toml:"completion_grace_ms"`
	CompletionWindowMS int    `json:"completion_window_ms" yaml:"completion_window_ms" toml:"completion_window_ms"`
	LogLevel           string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
