package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the toolchain's ambient settings (§10.1): assembler macro-expansion
// and lint behavior, plus emulator execution bounds and tracing.
type Config struct {
	// Assembler settings
	Assembler struct {
		MacroDepth int  `toml:"macro_depth"`
		Lint       bool `toml:"lint"`
	} `toml:"assembler"`

	// Emulator settings
	Emulator struct {
		MaxCycles   uint64 `toml:"max_cycles"`
		TraceFile   string `toml:"trace_file"`
		ColorOutput bool   `toml:"color_output"`
	} `toml:"emulator"`
}

// DefaultConfig returns a configuration with default values: the §4.3 macro depth of 256, lint
// disabled, and an emulator bounded at 1,000,000 cycles (§10.1).
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assembler.MacroDepth = 256
	cfg.Assembler.Lint = false

	cfg.Emulator.MaxCycles = 1_000_000
	cfg.Emulator.TraceFile = ""
	cfg.Emulator.ColorOutput = true

	return cfg
}

// GetConfigPath returns the platform-specific config file path
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\mc8\mc8.toml
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "mc8")

	case "darwin", "linux":
		// macOS/Linux: ~/.config/mc8/mc8.toml
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to current directory
			return "mc8.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "mc8")

	default:
		// Unknown platform: use current directory
		return "mc8.toml"
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0750); err != nil {
		// If we can't create the directory, fall back to current directory
		return "mc8.toml"
	}

	return filepath.Join(configDir, "mc8.toml")
}

// Load loads configuration from the default config file
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read and parse config file
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}
