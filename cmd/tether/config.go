package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hearthlink/tether"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML config file shape. ${ENV_VAR} placeholders in the
// file are interpolated from the environment before parsing, so secrets can
// stay out of the file itself.
type fileConfig struct {
	Hearth struct {
		URL    string `yaml:"url"`
		APIKey string `yaml:"api_key"`
	} `yaml:"hearth"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Heartbeat struct {
		Interval string `yaml:"interval"`
	} `yaml:"heartbeat"`

	Emergency struct {
		Contacts []string `yaml:"contacts"`
		Region   string   `yaml:"region"`
	} `yaml:"emergency"`

	Debug struct {
		Enabled bool   `yaml:"enabled"`
		LogPath string `yaml:"log_path"`
	} `yaml:"debug"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".tether", "config.yaml")
}

// loadConfigFile reads and parses the YAML config. A missing default file
// is fine (nil, nil); an explicitly requested file that is missing is an
// error.
func loadConfigFile(path string) (*fileConfig, error) {
	explicit := path != ""
	if path == "" {
		path = defaultConfigPath()
		if path == "" {
			return nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	content := string(data)
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		placeholder := "${" + pair[0] + "}"
		content = strings.ReplaceAll(content, placeholder, pair[1])
	}

	var cfg fileConfig
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}

// apply overlays the file values onto cfg, leaving unset fields alone.
func (f *fileConfig) apply(cfg *tether.Config) {
	if f.Hearth.URL != "" {
		cfg.HearthURL = f.Hearth.URL
	}
	if f.Hearth.APIKey != "" {
		cfg.APIKey = f.Hearth.APIKey
	}
	if f.Storage.Path != "" {
		cfg.LocalPath = f.Storage.Path
	}
	if f.Heartbeat.Interval != "" {
		if d, err := time.ParseDuration(f.Heartbeat.Interval); err == nil {
			cfg.HeartbeatInterval = d
		}
	}
	if len(f.Emergency.Contacts) > 0 {
		cfg.EmergencyContacts = f.Emergency.Contacts
	}
	if f.Emergency.Region != "" {
		cfg.Region = f.Emergency.Region
	}
	if f.Debug.Enabled {
		cfg.Debug = true
	}
	if f.Debug.LogPath != "" {
		cfg.DebugLogPath = f.Debug.LogPath
	}
}
