package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Assembler.MacroDepth != 256 {
		t.Errorf("Expected MacroDepth=256, got %d", cfg.Assembler.MacroDepth)
	}
	if cfg.Assembler.Lint {
		t.Error("Expected Lint=false")
	}
	if cfg.Emulator.MaxCycles != 1_000_000 {
		t.Errorf("Expected MaxCycles=1000000, got %d", cfg.Emulator.MaxCycles)
	}
	if !cfg.Emulator.ColorOutput {
		t.Error("Expected ColorOutput=true")
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()
	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "mc8.toml" {
		t.Errorf("Expected path to end with mc8.toml, got %s", path)
	}
}

func TestLoadFrom(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	contents := `
[assembler]
macro_depth = 64
lint = true

[emulator]
max_cycles = 5000000
trace_file = "run.trace"
`
	if err := os.WriteFile(configPath, []byte(contents), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Assembler.MacroDepth != 64 {
		t.Errorf("Expected MacroDepth=64, got %d", loaded.Assembler.MacroDepth)
	}
	if !loaded.Assembler.Lint {
		t.Error("Expected Lint=true")
	}
	if loaded.Emulator.MaxCycles != 5000000 {
		t.Errorf("Expected MaxCycles=5000000, got %d", loaded.Emulator.MaxCycles)
	}
	if loaded.Emulator.TraceFile != "run.trace" {
		t.Errorf("Expected TraceFile=run.trace, got %s", loaded.Emulator.TraceFile)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}
	if cfg.Assembler.MacroDepth != 256 {
		t.Error("Expected default config when file doesn't exist")
	}
	if cfg.Emulator.MaxCycles != 1_000_000 {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[assembler]
macro_depth = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}
