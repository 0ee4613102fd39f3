package config

import (
	"fmt"

	"github.com/Klingon-tech/bip39mix/internal/log"
	"github.com/Klingon-tech/bip39mix/internal/stats"
)

// MaxExhaustiveRolls caps harness.max_rolls; the exhaustive test walks
// 6^n roll sequences.
const MaxExhaustiveRolls = stats.MaxExhaustiveRolls

// Validate checks config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Mix.SystemRounds < AskRounds {
		return fmt.Errorf("mix.system_rounds must be >= 0, or %d to ask", AskRounds)
	}

	switch cfg.Harness.Source {
	case SourceSystem, SourceDice:
	default:
		return fmt.Errorf("harness.source must be %q or %q", SourceSystem, SourceDice)
	}
	if cfg.Harness.Iterations < 1 {
		return fmt.Errorf("harness.iterations must be positive")
	}
	if cfg.Harness.Bits < 2 || cfg.Harness.Bits%2 != 0 {
		return fmt.Errorf("harness.bits must be a positive even number")
	}
	if cfg.Harness.Tolerance <= 0 || cfg.Harness.Tolerance >= 0.5 {
		return fmt.Errorf("harness.tolerance must be in (0, 0.5)")
	}
	if cfg.Harness.MaxBits < 2 || cfg.Harness.MaxBits%2 != 0 {
		return fmt.Errorf("harness.max_bits must be a positive even number")
	}
	if cfg.Harness.MaxRolls < 1 || cfg.Harness.MaxRolls > MaxExhaustiveRolls {
		return fmt.Errorf("harness.max_rolls must be in range [1, %d]", MaxExhaustiveRolls)
	}

	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	return nil
}
