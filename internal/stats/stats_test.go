package stats

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/bip39mix/internal/entropy"
	"github.com/Klingon-tech/bip39mix/pkg/bitstring"
)

// cycleSource returns its patterns in turn.
type cycleSource struct {
	patterns []bitstring.BitString
	n        int
}

func (c *cycleSource) Fetch(bits int) (bitstring.BitString, error) {
	p := c.patterns[c.n%len(c.patterns)]
	c.n++
	return p[:bits], nil
}

type failingSource struct{ err error }

func (f failingSource) Fetch(int) (bitstring.BitString, error) { return "", f.err }

func seeded() *rand.Rand {
	return rand.New(rand.NewChaCha8([32]byte{1, 2, 3}))
}

func TestPosition(t *testing.T) {
	p := Position{Index: 3, Zeros: 30, Ones: 70}
	assert.Equal(t, 100, p.Total())
	assert.InDelta(t, 0.3, p.ZeroRatio(), 1e-9)
	assert.InDelta(t, 0.7, p.OneRatio(), 1e-9)
	assert.InDelta(t, 0.2, p.Deviation(), 1e-9)

	var empty Position
	assert.Zero(t, empty.ZeroRatio())
	assert.Zero(t, empty.OneRatio())
}

func TestFrequencyTest_EvenSplit(t *testing.T) {
	src := &cycleSource{patterns: []bitstring.BitString{"0101", "1010"}}
	report, err := FrequencyTest(context.Background(), src, 4, 100, 0.05)
	require.NoError(t, err)

	assert.True(t, report.Passed())
	assert.Equal(t, -1, report.Worst)
	assert.Equal(t, 0.5, report.WorstRatio)
	require.Len(t, report.Positions, 4)
	for _, p := range report.Positions {
		assert.Equal(t, 50, p.Zeros)
		assert.Equal(t, 50, p.Ones)
	}
}

func TestFrequencyTest_Biased(t *testing.T) {
	// Position 0 is always 0, position 2 is 1 three times in four.
	src := &cycleSource{patterns: []bitstring.BitString{"001", "010", "001", "011"}}
	report, err := FrequencyTest(context.Background(), src, 3, 400, 0.05)
	require.NoError(t, err)

	assert.False(t, report.Passed())
	require.Len(t, report.Failures, 2)
	assert.Equal(t, 0, report.Failures[0].Index)
	assert.Equal(t, 2, report.Failures[1].Index)
	assert.Equal(t, 0, report.Worst)
	assert.Equal(t, 1.0, report.WorstRatio)
	assert.Equal(t, 400, report.Positions[0].Zeros)
	assert.Equal(t, 200, report.Positions[1].Zeros)
	assert.Equal(t, 100, report.Positions[2].Zeros)
}

func TestFrequencyTest_SystemSource(t *testing.T) {
	report, err := FrequencyTest(context.Background(), entropy.NewSystemSource(), 256, 4000, 0.05)
	require.NoError(t, err)
	assert.True(t, report.Passed(), "failures: %v", report.Failures)
}

func TestFrequencyTest_DiceSource(t *testing.T) {
	src := NewDiceSource(seeded())
	report, err := FrequencyTest(context.Background(), src, 64, 4000, 0.05)
	require.NoError(t, err)
	assert.True(t, report.Passed(), "failures: %v", report.Failures)
}

func TestFrequencyTest_InvalidArgs(t *testing.T) {
	ctx := context.Background()
	src := entropy.NewSystemSource()
	for _, tc := range []struct {
		name       string
		bits, iter int
		tol        float64
	}{
		{"zero bits", 0, 10, 0.05},
		{"zero iterations", 8, 0, 0.05},
		{"zero tolerance", 8, 10, 0},
		{"half tolerance", 8, 10, 0.5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FrequencyTest(ctx, src, tc.bits, tc.iter, tc.tol)
			require.ErrorIs(t, err, entropy.ErrInvalidArgument)
		})
	}
}

func TestFrequencyTest_SourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := FrequencyTest(context.Background(), failingSource{boom}, 8, 10, 0.05)
	require.ErrorIs(t, err, boom)
}

func TestFrequencyTest_ShortSample(t *testing.T) {
	src := &cycleSource{patterns: []bitstring.BitString{"01"}}
	_, err := FrequencyTest(context.Background(), shortSource{src}, 4, 10, 0.05)
	require.ErrorIs(t, err, entropy.ErrLengthMismatch)
}

// shortSource always returns two bits.
type shortSource struct{ inner *cycleSource }

func (s shortSource) Fetch(int) (bitstring.BitString, error) { return s.inner.Fetch(2) }

func TestFrequencyTest_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FrequencyTest(ctx, entropy.NewSystemSource(), 8, 10, 0.05)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiceSource_Fetch(t *testing.T) {
	src := NewDiceSource(seeded())
	for _, bits := range []int{2, 64, 128, 256} {
		out, err := src.Fetch(bits)
		require.NoError(t, err)
		assert.Equal(t, bits, out.Len())
		require.NoError(t, out.Validate())
	}

	_, err := src.Fetch(3)
	require.ErrorIs(t, err, entropy.ErrInvalidArgument)
}

func TestDiceSource_Extends(t *testing.T) {
	// Two rolls for two bits fail whenever both are 4 or 5.
	src := NewDiceSource(seeded())
	for range 500 {
		_, err := src.Fetch(2)
		require.NoError(t, err)
	}
	assert.Positive(t, src.Extended)
}

func TestDiceSource_DefaultSeed(t *testing.T) {
	a, err := NewDiceSource(nil).Fetch(256)
	require.NoError(t, err)
	b, err := NewDiceSource(nil).Fetch(256)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestExhaustiveUniformity(t *testing.T) {
	report, err := ExhaustiveUniformity(context.Background(), 6, 5)
	require.NoError(t, err)
	assert.True(t, report.Passed())
	require.Len(t, report.Cells, 15)

	first := report.Cells[0]
	assert.Equal(t, 2, first.Bits)
	assert.Equal(t, 1, first.Rolls)
	assert.Equal(t, 6, first.Sequences)
	assert.Equal(t, 4, first.Successes)
	assert.Equal(t, []int{2, 2}, first.Zeros)
	assert.Equal(t, []int{2, 2}, first.Ones)

	// Four bits need two accepted rolls.
	for _, c := range report.Cells {
		if c.Bits == 4 && c.Rolls == 1 {
			assert.Zero(t, c.Successes)
		}
		if c.Bits == 6 && c.Rolls == 5 {
			assert.Equal(t, 7776, c.Sequences)
			assert.Positive(t, c.Successes)
		}
	}
}

func TestExhaustiveUniformity_InvalidArgs(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct{ bits, rolls int }{
		{0, 3}, {3, 3}, {4, 0}, {4, MaxExhaustiveRolls + 1},
	} {
		_, err := ExhaustiveUniformity(ctx, tc.bits, tc.rolls)
		require.ErrorIs(t, err, entropy.ErrInvalidArgument, "bits=%d rolls=%d", tc.bits, tc.rolls)
	}
}

func TestExhaustiveUniformity_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExhaustiveUniformity(ctx, 4, 3)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCellUniform(t *testing.T) {
	assert.True(t, Cell{}.Uniform())
	assert.True(t, Cell{Zeros: []int{3, 3}, Ones: []int{3, 3}}.Uniform())
	assert.False(t, Cell{Zeros: []int{1, 2}, Ones: []int{2, 1}}.Uniform())
	assert.False(t, Cell{Zeros: []int{2, 2}, Ones: []int{3, 3}}.Uniform())
}

func TestNext(t *testing.T) {
	seq := []int{1, 6}
	require.True(t, next(seq))
	assert.Equal(t, []int{2, 1}, seq)

	seq = []int{6, 6}
	require.False(t, next(seq))
	assert.Equal(t, []int{1, 1}, seq)

	// Every sequence is visited once.
	seq = []int{1, 1, 1}
	seen := map[string]bool{}
	for {
		key := fmtSeq(seq)
		require.False(t, seen[key])
		seen[key] = true
		if !next(seq) {
			break
		}
	}
	assert.Len(t, seen, 216)
}

func fmtSeq(seq []int) string {
	var b strings.Builder
	for _, v := range seq {
		b.WriteByte(byte('0' + v))
	}
	return b.String()
}
