// Package stats checks bit generators for position-specific bias.
//
// FrequencyTest samples a generator many times and compares the share of
// zeros and ones at every bit position with one half. ExhaustiveUniformity
// enumerates every die-roll sequence for small widths and requires exactly
// equal counts.
package stats

import (
	"context"
	"fmt"
	"math"

	"github.com/Klingon-tech/bip39mix/internal/entropy"
	"github.com/Klingon-tech/bip39mix/internal/log"
)

// Position holds the bit counts observed at one index.
type Position struct {
	Index int
	Zeros int
	Ones  int
}

// Total returns the number of samples counted.
func (p Position) Total() int {
	return p.Zeros + p.Ones
}

// ZeroRatio returns the share of zeros, or 0 with no samples.
func (p Position) ZeroRatio() float64 {
	if p.Total() == 0 {
		return 0
	}
	return float64(p.Zeros) / float64(p.Total())
}

// OneRatio returns the share of ones, or 0 with no samples.
func (p Position) OneRatio() float64 {
	if p.Total() == 0 {
		return 0
	}
	return float64(p.Ones) / float64(p.Total())
}

// Deviation returns how far the position is from an even split.
func (p Position) Deviation() float64 {
	return math.Abs(p.ZeroRatio() - 0.5)
}

// FrequencyReport is the result of FrequencyTest.
type FrequencyReport struct {
	Bits       int
	Iterations int
	Tolerance  float64
	Positions  []Position
	// Failures lists the positions whose deviation exceeds Tolerance.
	Failures []Position
	// Worst is the index with the most lopsided split, or -1 when every
	// position split exactly evenly.
	Worst      int
	WorstRatio float64
}

// Passed reports whether every position was within tolerance.
func (r *FrequencyReport) Passed() bool {
	return len(r.Failures) == 0
}

// FrequencyTest draws iterations bit strings of width bits from src and
// counts zeros and ones per position.
func FrequencyTest(ctx context.Context, src entropy.Source, bits, iterations int, tolerance float64) (*FrequencyReport, error) {
	if bits < 1 {
		return nil, fmt.Errorf("%w: bit width %d", entropy.ErrInvalidArgument, bits)
	}
	if iterations < 1 {
		return nil, fmt.Errorf("%w: iterations %d", entropy.ErrInvalidArgument, iterations)
	}
	if tolerance <= 0 || tolerance >= 0.5 {
		return nil, fmt.Errorf("%w: tolerance %v outside (0, 0.5)", entropy.ErrInvalidArgument, tolerance)
	}

	positions := make([]Position, bits)
	for i := range positions {
		positions[i].Index = i
	}

	done := log.Benchmark("frequency test")
	defer done()

	for it := 0; it < iterations; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sample, err := src.Fetch(bits)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", it+1, err)
		}
		if sample.Len() != bits {
			return nil, fmt.Errorf("iteration %d: %w: got %d bits, want %d", it+1, entropy.ErrLengthMismatch, sample.Len(), bits)
		}
		for i := 0; i < bits; i++ {
			if sample[i] == '0' {
				positions[i].Zeros++
			} else {
				positions[i].Ones++
			}
		}
	}

	report := &FrequencyReport{
		Bits:       bits,
		Iterations: iterations,
		Tolerance:  tolerance,
		Positions:  positions,
		Worst:      -1,
		WorstRatio: 0.5,
	}
	for _, p := range positions {
		if p.Deviation() > tolerance {
			report.Failures = append(report.Failures, p)
		}
		if high := max(p.ZeroRatio(), p.OneRatio()); high > report.WorstRatio {
			report.Worst = p.Index
			report.WorstRatio = high
		}
	}

	log.Stats.Info().
		Int("bits", bits).
		Int("iterations", iterations).
		Int("failures", len(report.Failures)).
		Int("worst", report.Worst).
		Float64("worst_ratio", report.WorstRatio).
		Msg("Frequency test finished")
	return report, nil
}
