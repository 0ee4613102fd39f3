package config

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Mix: MixConfig{
			SystemRounds: AskRounds,
			Dice:         true,
			HideInput:    true,
		},
		Harness: HarnessConfig{
			Source:     SourceSystem,
			Iterations: 10000,
			Bits:       256,
			Tolerance:  0.05,
			MaxBits:    14,
			MaxRolls:   7,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
