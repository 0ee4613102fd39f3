// Package config handles application configuration.
//
// Settings are resolved in order of increasing precedence:
//   - Built-in defaults
//   - The config file (key = value)
//   - Command-line flags that were explicitly set
//
// Nothing secret is ever read from or written to the config file.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds runtime settings for the mixer and the dice harness.
type Config struct {
	// Wordlist source
	Wordlist WordlistConfig

	// Interactive mixing session
	Mix MixConfig

	// Statistical harness
	Harness HarnessConfig

	// Logging
	Log LogConfig

	// Path the config was loaded from (not persisted).
	File string
}

// WordlistConfig selects the BIP39 wordlist.
type WordlistConfig struct {
	// Path to a line-oriented wordlist. Empty means the built-in English list.
	Path string `conf:"wordlist.file"`
}

// AskRounds makes the session prompt for the number of OS entropy rounds.
const AskRounds = -1

// MixConfig holds mixing session settings.
type MixConfig struct {
	SystemRounds int  `conf:"mix.system_rounds"` // AskRounds to prompt
	Dice         bool `conf:"mix.dice"`          // Ask for die rolls after OS rounds
	HideInput    bool `conf:"mix.hide_input"`    // Read the mnemonic without echo on a terminal
}

// HarnessSource names the bit generator the harness analyses.
type HarnessSource string

const (
	SourceSystem HarnessSource = "system"
	SourceDice   HarnessSource = "dice"
)

// HarnessConfig holds statistical harness settings.
type HarnessConfig struct {
	Source     HarnessSource `conf:"harness.source"`
	Iterations int           `conf:"harness.iterations"`
	Bits       int           `conf:"harness.bits"`
	Tolerance  float64       `conf:"harness.tolerance"`
	MaxBits    int           `conf:"harness.max_bits"`  // Exhaustive test: widest bit string
	MaxRolls   int           `conf:"harness.max_rolls"` // Exhaustive test: longest roll sequence
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific directory holding the
// config file.
//
//	Linux:   ~/.bip39mix
//	macOS:   ~/Library/Application Support/bip39mix
//	Windows: %APPDATA%\bip39mix
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bip39mix"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "bip39mix")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "bip39mix")
		}
		return filepath.Join(home, "AppData", "Roaming", "bip39mix")
	default:
		return filepath.Join(home, ".bip39mix")
	}
}

// DefaultConfigFile returns the default config file path.
func DefaultConfigFile() string {
	return filepath.Join(DefaultDataDir(), "bip39mix.conf")
}
