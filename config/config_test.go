package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bip39mix.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultValidates(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("Validate(Default()) error: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConf(t, `
# comment
mix.system_rounds = 3
wordlist.file = "/tmp/english.txt"
log.level = 'debug'
`)
	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if values["mix.system_rounds"] != "3" {
		t.Errorf("mix.system_rounds = %q, want 3", values["mix.system_rounds"])
	}
	if values["wordlist.file"] != "/tmp/english.txt" {
		t.Errorf("wordlist.file = %q, quotes should be stripped", values["wordlist.file"])
	}
	if values["log.level"] != "debug" {
		t.Errorf("log.level = %q, want debug", values["log.level"])
	}
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("missing file should yield no values, got %v", values)
	}
}

func TestLoadFile_BadLine(t *testing.T) {
	path := writeConf(t, "mix.dice = true\nnot a setting\n")
	_, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("LoadFile() error = %v, want line 2 format error", err)
	}
}

func TestApplyFileConfig(t *testing.T) {
	cfg := Default()
	err := ApplyFileConfig(cfg, map[string]string{
		"mix.system_rounds":  "2",
		"mix.dice":           "no",
		"mix.hide_input":     "off",
		"harness.source":     "DICE",
		"harness.iterations": "500",
		"harness.tolerance":  "0.1",
		"harness.max_rolls":  "5",
		"log.json":           "yes",
		"unknown.key":        "ignored",
	})
	if err != nil {
		t.Fatalf("ApplyFileConfig() error: %v", err)
	}
	if cfg.Mix.SystemRounds != 2 || cfg.Mix.Dice || cfg.Mix.HideInput {
		t.Errorf("mix = %+v", cfg.Mix)
	}
	if cfg.Harness.Source != SourceDice || cfg.Harness.Iterations != 500 || cfg.Harness.Tolerance != 0.1 || cfg.Harness.MaxRolls != 5 {
		t.Errorf("harness = %+v", cfg.Harness)
	}
	if !cfg.Log.JSON {
		t.Error("log.json should be true")
	}
}

func TestApplyFileConfig_BadNumber(t *testing.T) {
	err := ApplyFileConfig(Default(), map[string]string{"harness.iterations": "many"})
	if err == nil {
		t.Fatal("expected error for non-numeric iterations")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"rounds below ask", func(c *Config) { c.Mix.SystemRounds = -2 }},
		{"source", func(c *Config) { c.Harness.Source = "coin" }},
		{"iterations", func(c *Config) { c.Harness.Iterations = 0 }},
		{"odd bits", func(c *Config) { c.Harness.Bits = 7 }},
		{"tolerance high", func(c *Config) { c.Harness.Tolerance = 0.5 }},
		{"tolerance zero", func(c *Config) { c.Harness.Tolerance = 0 }},
		{"odd max bits", func(c *Config) { c.Harness.MaxBits = 3 }},
		{"max rolls", func(c *Config) { c.Harness.MaxRolls = MaxExhaustiveRolls + 1 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if err := Validate(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConf(t, "mix.system_rounds = 4\nmix.dice = false\nlog.level = warn\n")

	var f Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Register(fs)
	f.RegisterMix(fs)
	f.RegisterHarness(fs)
	if err := fs.Parse([]string{"--config", path, "--system-rounds", "0", "--iterations", "100"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	f.MarkSet(fs)

	cfg, err := Load(&f)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Mix.SystemRounds != 0 {
		t.Errorf("system rounds = %d, flag should override file", cfg.Mix.SystemRounds)
	}
	if cfg.Mix.Dice {
		t.Error("mix.dice from file should survive when flag not set")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Harness.Iterations != 100 {
		t.Errorf("iterations = %d, want 100", cfg.Harness.Iterations)
	}
	if cfg.File != path {
		t.Errorf("File = %q, want %q", cfg.File, path)
	}
}

func TestLoad_InvalidFromFlags(t *testing.T) {
	var f Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Register(fs)
	f.RegisterHarness(fs)
	if err := fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "none.conf"), "--bits", "9"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	f.MarkSet(fs)

	if _, err := Load(&f); err == nil {
		t.Fatal("expected invalid config error")
	}
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "bip39mix.conf")
	if err := WriteDefaultConfig(path); err != nil {
		t.Fatalf("WriteDefaultConfig() error: %v", err)
	}
	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	cfg := Default()
	cfg.Mix.Dice = false
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig() error: %v", err)
	}
	want := Default()
	if cfg.Mix != want.Mix || cfg.Harness != want.Harness || cfg.Log != want.Log {
		t.Errorf("default file does not reproduce defaults: %+v", cfg)
	}
}
