// Package config loads the embedder-facing configuration for the demo
// driver and the API server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config represents the runtime configuration
type Config struct {
	// VM limits handed to the engine
	VM struct {
		MaxInstanceMemory uint32 `toml:"max_instance_memory"`
		MaxCodeSize       int    `toml:"max_code_size"`
		DefaultGas        uint64 `toml:"default_gas"`
	} `toml:"vm"`

	// API server settings
	Server struct {
		Listen           string `toml:"listen"`
		ReadTimeoutSecs  int    `toml:"read_timeout_secs"`
		WriteTimeoutSecs int    `toml:"write_timeout_secs"`
		SessionIdleSecs  int    `toml:"session_idle_secs"`
	} `toml:"server"`

	// Log settings
	Log struct {
		Prefix     string `toml:"prefix"`
		Timestamps bool   `toml:"timestamps"`
	} `toml:"log"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// VM defaults: 1 MiB of guest memory, 1 KiB of guest code
	cfg.VM.MaxInstanceMemory = 1024 * 1024
	cfg.VM.MaxCodeSize = 1024
	cfg.VM.DefaultGas = 1_000_000

	// Server defaults
	cfg.Server.Listen = "127.0.0.1:8080"
	cfg.Server.ReadTimeoutSecs = 15
	cfg.Server.WriteTimeoutSecs = 15
	cfg.Server.SessionIdleSecs = 600

	// Log defaults
	cfg.Log.Prefix = "riscv-vm "
	cfg.Log.Timestamps = true

	return cfg
}

// GetConfigPath returns the platform-specific config file path
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "riscv-vm")
	case "darwin":
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, "Library", "Application Support", "riscv-vm")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, _ := os.UserHomeDir()
			configDir = filepath.Join(home, ".config")
		}
		configDir = filepath.Join(configDir, "riscv-vm")
	}

	return filepath.Join(configDir, "config.toml")
}

// Load reads the configuration from the given path, layered over the
// defaults. A missing file is not an error: the defaults are returned.
// Environment variables (RISCV_VM_MAX_MEMORY, RISCV_VM_MAX_CODE_SIZE,
// RISCV_VM_LISTEN) override both.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = GetConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RISCV_VM_MAX_MEMORY"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.VM.MaxInstanceMemory = uint32(n)
		}
	}
	if v := os.Getenv("RISCV_VM_MAX_CODE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.VM.MaxCodeSize = n
		}
	}
	if v := os.Getenv("RISCV_VM_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
}

// Validate checks the configuration for usable values
func (c *Config) Validate() error {
	if c.VM.MaxCodeSize <= 0 {
		return fmt.Errorf("vm.max_code_size must be positive, got %d", c.VM.MaxCodeSize)
	}
	if c.VM.MaxInstanceMemory == 0 {
		return fmt.Errorf("vm.max_instance_memory must be positive")
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	if c.Server.ReadTimeoutSecs <= 0 || c.Server.WriteTimeoutSecs <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	return nil
}

// Save writes the configuration to the given path in TOML format
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}
