// Package config loads the playback core's TOML configuration.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jmorel/arkplay/resume"
)

type Config struct {
	Resume ResumeConfig `koanf:"resume"`
	State  StateConfig  `koanf:"state"`
}

// ResumeConfig holds the resume/completion thresholds and save cadence.
type ResumeConfig struct {
	MinResumeSeconds    int     `koanf:"min_resume_seconds"`    // below this, don't save or offer resume (default: 30)
	CompletionPercent   float64 `koanf:"completion_percent"`    // watched fraction that counts as finished (default: 0.95)
	CompletionSeconds   int     `koanf:"completion_seconds"`    // or when less than this many seconds remain (default: 30)
	SaveIntervalSeconds int     `koanf:"save_interval_seconds"` // periodic save cadence (default: 10)
}

// StateConfig holds the state database location.
type StateConfig struct {
	DBPath string `koanf:"db_path"` // empty means the XDG data dir
}

func Load() (*Config, error) {
	return loadFrom(getConfigPaths())
}

func loadFrom(configPaths []string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := defaults()

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in db_path
	if cfg.State.DBPath != "" {
		cfg.State.DBPath = expandPath(cfg.State.DBPath)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Resume: ResumeConfig{
			MinResumeSeconds:    30,
			CompletionPercent:   0.95,
			CompletionSeconds:   30,
			SaveIntervalSeconds: 10,
		},
	}
}

// Policy converts the configured thresholds into a resume policy.
func (c *Config) Policy() resume.Policy {
	return resume.Policy{
		MinResume:           time.Duration(c.Resume.MinResumeSeconds) * time.Second,
		CompletionPercent:   c.Resume.CompletionPercent,
		CompletionRemaining: time.Duration(c.Resume.CompletionSeconds) * time.Second,
	}
}

// SaveInterval returns the periodic save cadence.
func (c *Config) SaveInterval() time.Duration {
	return time.Duration(c.Resume.SaveIntervalSeconds) * time.Second
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/arkplay/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "arkplay", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
