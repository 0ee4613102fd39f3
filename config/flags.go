package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flag names.
const (
	FlagConfig       = "config"
	FlagWordlist     = "wordlist"
	FlagSystemRounds = "system-rounds"
	FlagNoDice       = "no-dice"
	FlagShowInput    = "show-input"
	FlagLogLevel     = "log-level"
	FlagLogFile      = "log-file"
	FlagLogJSON      = "log-json"

	FlagSource     = "source"
	FlagIterations = "iterations"
	FlagBits       = "bits"
	FlagTolerance  = "tolerance"
	FlagMaxBits    = "max-bits"
	FlagMaxRolls   = "max-rolls"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Core
	Config   string
	Wordlist string

	// Mixing
	SystemRounds int
	NoDice       bool
	ShowInput    bool

	// Harness
	Source     string
	Iterations int
	Bits       int
	Tolerance  float64
	MaxBits    int
	MaxRolls   int

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Explicitly-set flags (for zero-value and bool overrides).
	SetSystemRounds bool
	SetNoDice       bool
	SetShowInput    bool
	SetLogJSON      bool
	SetTolerance    bool
}

// Register adds the flags shared by every command.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.Config, FlagConfig, "c", "", "Config file path (default: "+DefaultConfigFile()+")")
	fs.StringVar(&f.Wordlist, FlagWordlist, "", "BIP39 wordlist file (default: built-in English)")
	fs.StringVar(&f.LogLevel, FlagLogLevel, "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, FlagLogFile, "", "Log file path")
	fs.BoolVar(&f.LogJSON, FlagLogJSON, false, "Output logs as JSON")
}

// RegisterMix adds the mixing session flags.
func (f *Flags) RegisterMix(fs *pflag.FlagSet) {
	fs.IntVar(&f.SystemRounds, FlagSystemRounds, AskRounds, "Rounds of OS entropy to mix in (-1 asks)")
	fs.BoolVar(&f.NoDice, FlagNoDice, false, "Skip the die-roll step")
	fs.BoolVar(&f.ShowInput, FlagShowInput, false, "Echo the mnemonic while typing it")
}

// RegisterHarness adds the statistical harness flags.
func (f *Flags) RegisterHarness(fs *pflag.FlagSet) {
	fs.StringVar(&f.Source, FlagSource, "", "Bit generator to test: system or dice")
	fs.IntVar(&f.Iterations, FlagIterations, 0, "Bit strings to generate in the frequency test")
	fs.IntVar(&f.Bits, FlagBits, 0, "Bit string width in the frequency test")
	fs.Float64Var(&f.Tolerance, FlagTolerance, 0, "Allowed deviation from 50% per bit position")
	fs.IntVar(&f.MaxBits, FlagMaxBits, 0, "Widest bit string in the exhaustive test")
	fs.IntVar(&f.MaxRolls, FlagMaxRolls, 0, "Longest roll sequence in the exhaustive test")
}

// MarkSet records which flags were given explicitly. Call after parsing.
func (f *Flags) MarkSet(fs *pflag.FlagSet) {
	f.SetSystemRounds = fs.Changed(FlagSystemRounds)
	f.SetNoDice = fs.Changed(FlagNoDice)
	f.SetShowInput = fs.Changed(FlagShowInput)
	f.SetLogJSON = fs.Changed(FlagLogJSON)
	f.SetTolerance = fs.Changed(FlagTolerance)
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.Wordlist != "" {
		cfg.Wordlist.Path = f.Wordlist
	}

	if f.SetSystemRounds {
		cfg.Mix.SystemRounds = f.SystemRounds
	}
	if f.SetNoDice {
		cfg.Mix.Dice = !f.NoDice
	}
	if f.SetShowInput {
		cfg.Mix.HideInput = !f.ShowInput
	}

	if f.Source != "" {
		cfg.Harness.Source = HarnessSource(f.Source)
	}
	if f.Iterations != 0 {
		cfg.Harness.Iterations = f.Iterations
	}
	if f.Bits != 0 {
		cfg.Harness.Bits = f.Bits
	}
	if f.SetTolerance {
		cfg.Harness.Tolerance = f.Tolerance
	}
	if f.MaxBits != 0 {
		cfg.Harness.MaxBits = f.MaxBits
	}
	if f.MaxRolls != 0 {
		cfg.Harness.MaxRolls = f.MaxRolls
	}

	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// Load resolves configuration with the following precedence:
// 1. Default values
// 2. Config file (missing file is fine)
// 3. Command-line flags
func Load(f *Flags) (*Config, error) {
	cfg := Default()

	path := f.Config
	if path == "" {
		path = DefaultConfigFile()
	}
	cfg.File = path

	values, err := LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, values); err != nil {
		return nil, fmt.Errorf("applying config file: %w", err)
	}

	ApplyFlags(cfg, f)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
