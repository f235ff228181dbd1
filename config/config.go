// Package config loads and saves the toolchain's TOML-backed configuration.
// cmd/rvsim reads it at startup; cmd/rvasm does not load it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the toolchain's full set of user-tunable knobs.
type Config struct {
	Assemble struct {
		DataSegmentStart uint32 `toml:"data_segment_start"`
		StrictImmediates bool   `toml:"strict_immediates"`
	} `toml:"assemble"`

	Pipeline struct {
		Pipelining              bool   `toml:"pipelining"`
		Forwarding              bool   `toml:"forwarding"`
		StructuralHazardEnabled bool   `toml:"structural_hazard_enabled"`
		CycleLimit              uint64 `toml:"cycle_limit"`
	} `toml:"pipeline"`

	Predictor struct {
		TwoBitCounter bool `toml:"two_bit_counter"`
	} `toml:"predictor"`

	Trace struct {
		Enabled       bool   `toml:"enabled"`
		OnlyInstruction uint64 `toml:"only_instruction"`
		DumpRegisters bool   `toml:"dump_registers"`
		DumpLatches   bool   `toml:"dump_latches"`
		DumpBTB       bool   `toml:"dump_btb"`
	} `toml:"trace"`

	Server struct {
		Address string `toml:"address"`
		Enabled bool   `toml:"enabled"`
	} `toml:"server"`
}

// DefaultConfig returns the toolchain's out-of-the-box configuration.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assemble.DataSegmentStart = 0x10000000
	cfg.Assemble.StrictImmediates = true

	cfg.Pipeline.Pipelining = true
	cfg.Pipeline.Forwarding = true
	cfg.Pipeline.StructuralHazardEnabled = false
	cfg.Pipeline.CycleLimit = 10000

	cfg.Predictor.TwoBitCounter = false

	cfg.Trace.Enabled = false
	cfg.Trace.OnlyInstruction = 0
	cfg.Trace.DumpRegisters = false
	cfg.Trace.DumpLatches = false
	cfg.Trace.DumpBTB = false

	cfg.Server.Address = ":8080"
	cfg.Server.Enabled = false

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "riscv-pipeline")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "riscv-pipeline")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific directory for log output.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		configDir := os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(configDir, "riscv-pipeline", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "riscv-pipeline", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file, falling back to
// defaults if it does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
