// Package config provides configuration management for kernelc.
// It loads user preferences describing where the engine artifacts live
// and where build output goes.
//
// Configuration is stored in JSON format at ~/.kernelc.json and includes:
//   - The Flutter artifact cache directory (engine snapshots, patched SDKs)
//   - An explicit Dart runtime binary, overriding cache discovery
//   - The build directory the fuchsia output directory is derived from
//   - The target platform (fuchsia-x64 or fuchsia-arm64)
//
// Missing configuration files yield an empty configuration; every field
// may also be set from the environment, which takes precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Default values used when neither the file nor the environment set a field.
const (
	DefaultBuildDir       = "build"
	DefaultTargetPlatform = "fuchsia-x64"
)

// Config holds user preferences for artifact lookup and build output.
type Config struct {
	CacheDir       string `json:"cache_dir,omitempty"`
	Runtime        string `json:"runtime,omitempty"`
	BuildDir       string `json:"build_dir,omitempty"`
	TargetPlatform string `json:"target_platform,omitempty"`

	warnings []string
}

// Warnings returns non-fatal problems found while loading. Loading runs
// before logging is set up, so callers report these once it is.
func (c *Config) Warnings() []string {
	return c.warnings
}

// Path returns the absolute path to the kernelc configuration file (~/.kernelc.json).
func Path() string {
	home := os.Getenv("HOME")
	if home == "" {
		if wd, _ := os.Getwd(); wd != "" {
			return filepath.Join(wd, ".kernelc.json")
		}
	}
	return filepath.Join(home, ".kernelc.json")
}

// Load reads configuration from disk and applies environment overrides.
// If the file is missing, the result holds only environment values and defaults.
func Load() (*Config, error) {
	cfg, err := LoadFile(Path())
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// LoadFile reads a single configuration file without env overrides or defaults.
func LoadFile(p string) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		// treat parse issues as empty config (non-fatal)
		return &Config{warnings: []string{fmt.Sprintf("Ignoring unreadable config %s: %v", p, err)}}, nil
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from KERNELC_* environment variables.
func (c *Config) ApplyEnv() {
	for env, field := range map[string]*string{
		"KERNELC_CACHE_DIR":       &c.CacheDir,
		"KERNELC_DART":            &c.Runtime,
		"KERNELC_BUILD_DIR":       &c.BuildDir,
		"KERNELC_TARGET_PLATFORM": &c.TargetPlatform,
	} {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.BuildDir == "" {
		c.BuildDir = DefaultBuildDir
	}
	if c.TargetPlatform == "" {
		c.TargetPlatform = DefaultTargetPlatform
	}
}
