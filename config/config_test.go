package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test assemble defaults
	if cfg.Assemble.DataSegmentStart != 0x10000000 {
		t.Errorf("Expected DataSegmentStart=0x10000000, got %#x", cfg.Assemble.DataSegmentStart)
	}
	if !cfg.Assemble.StrictImmediates {
		t.Error("Expected StrictImmediates=true")
	}

	// Test pipeline defaults
	if !cfg.Pipeline.Pipelining {
		t.Error("Expected Pipelining=true")
	}
	if !cfg.Pipeline.Forwarding {
		t.Error("Expected Forwarding=true")
	}
	if cfg.Pipeline.CycleLimit != 10000 {
		t.Errorf("Expected CycleLimit=10000, got %d", cfg.Pipeline.CycleLimit)
	}

	// Test predictor defaults
	if cfg.Predictor.TwoBitCounter {
		t.Error("Expected TwoBitCounter=false")
	}

	// Test trace defaults
	if cfg.Trace.Enabled {
		t.Error("Expected Trace.Enabled=false")
	}

	// Test server defaults
	if cfg.Server.Address != ":8080" {
		t.Errorf("Expected Address=:8080, got %s", cfg.Server.Address)
	}
	if cfg.Server.Enabled {
		t.Error("Expected Server.Enabled=false")
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	// Verify path is not empty
	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}

	// Verify path ends with config.toml
	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}

	// Platform-specific checks
	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "config.toml" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}

	case "darwin", "linux":
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "riscv-pipeline" && path != "config.toml" {
			t.Errorf("Expected path in riscv-pipeline directory or fallback, got %s", path)
		}
	}
}

func TestGetLogPath(t *testing.T) {
	path := GetLogPath()

	if path == "" {
		t.Error("GetLogPath returned empty string")
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "logs" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}

	case "darwin", "linux":
		if filepath.Base(path) != "logs" {
			t.Errorf("Expected path to end with logs, got %s", path)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Pipeline.Forwarding = false
	cfg.Pipeline.CycleLimit = 42
	cfg.Trace.Enabled = true
	cfg.Server.Address = ":9999"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Pipeline.Forwarding {
		t.Error("Expected Forwarding=false")
	}
	if loaded.Pipeline.CycleLimit != 42 {
		t.Errorf("Expected CycleLimit=42, got %d", loaded.Pipeline.CycleLimit)
	}
	if !loaded.Trace.Enabled {
		t.Error("Expected Trace.Enabled=true")
	}
	if loaded.Server.Address != ":9999" {
		t.Errorf("Expected Address=:9999, got %s", loaded.Server.Address)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}

	if cfg.Pipeline.CycleLimit != 10000 {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[pipeline]
cycle_limit = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err := LoadFrom(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("Parent directories were not created")
	}
}
