package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadFile loads settings from a .conf file.
// Format: key = value (one per line, # for comments). A missing file
// yields no values.
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file values to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Wordlist
	case "wordlist.file", "wordlist":
		cfg.Wordlist.Path = value

	// Mixing
	case "mix.system_rounds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Mix.SystemRounds = n
	case "mix.dice":
		cfg.Mix.Dice = parseBool(value)
	case "mix.hide_input":
		cfg.Mix.HideInput = parseBool(value)

	// Harness
	case "harness.source":
		cfg.Harness.Source = HarnessSource(strings.ToLower(value))
	case "harness.iterations":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Harness.Iterations = n
	case "harness.bits":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Harness.Bits = n
	case "harness.tolerance":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		cfg.Harness.Tolerance = f
	case "harness.max_bits":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Harness.MaxBits = n
	case "harness.max_rolls":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Harness.MaxRolls = n

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a commented default configuration file. The
// parent directory is created if needed.
func WriteDefaultConfig(path string) error {
	d := Default()
	content := `# bip39mix configuration
#
# Only tool settings live here. Mnemonics, entropy and die rolls are never
# read from or written to disk.

# ============================================================================
# Wordlist
# ============================================================================

# Line-oriented BIP39 wordlist (2048 words). Empty = built-in English list.
# wordlist.file = /path/to/english.txt

# ============================================================================
# Mixing session
# ============================================================================

# Rounds of OS entropy to XOR in (-1 = ask every time)
mix.system_rounds = ` + strconv.Itoa(d.Mix.SystemRounds) + `

# Ask for physical die rolls after the OS rounds
mix.dice = ` + strconv.FormatBool(d.Mix.Dice) + `

# Do not echo the mnemonic while typing it on a terminal
mix.hide_input = ` + strconv.FormatBool(d.Mix.HideInput) + `

# ============================================================================
# Dice harness (dicecheck)
# ============================================================================

# Bit generator under test: system or dice
harness.source = ` + string(d.Harness.Source) + `
harness.iterations = ` + strconv.Itoa(d.Harness.Iterations) + `
harness.bits = ` + strconv.Itoa(d.Harness.Bits) + `

# Allowed deviation of any bit position from 50%
harness.tolerance = ` + strconv.FormatFloat(d.Harness.Tolerance, 'f', -1, 64) + `

# Exhaustive uniformity test bounds
harness.max_bits = ` + strconv.Itoa(d.Harness.MaxBits) + `
harness.max_rolls = ` + strconv.Itoa(d.Harness.MaxRolls) + `

# ============================================================================
# Logging
# ============================================================================

log.level = ` + d.Log.Level + `
# log.file =
log.json = false
`
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, []byte(content), 0644)
}
