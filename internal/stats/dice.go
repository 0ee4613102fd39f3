package stats

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Klingon-tech/bip39mix/internal/entropy"
	"github.com/Klingon-tech/bip39mix/internal/log"
	"github.com/Klingon-tech/bip39mix/pkg/bitstring"
)

// MaxExhaustiveRolls bounds the 6^n enumeration.
const MaxExhaustiveRolls = 10

// DiceSource feeds simulated fair die rolls through the dice extractor.
// It starts with twice the minimum number of rolls and adds one roll at a
// time until the extractor accepts the sequence.
type DiceSource struct {
	rng *rand.Rand

	// Extended counts how often a sequence needed extra rolls.
	Extended int
}

// NewDiceSource returns a dice source. A nil rng is seeded from the OS
// random source.
func NewDiceSource(rng *rand.Rand) *DiceSource {
	if rng == nil {
		var seed [32]byte
		_, _ = crand.Read(seed[:])
		rng = rand.New(rand.NewChaCha8(seed))
	}
	return &DiceSource{rng: rng}
}

func (d *DiceSource) roll() int {
	return d.rng.IntN(entropy.DieFaces) + 1
}

// Fetch returns bits bits extracted from simulated rolls.
func (d *DiceSource) Fetch(bits int) (bitstring.BitString, error) {
	minimum, err := entropy.MinimumRollsForBits(bits)
	if err != nil {
		return "", err
	}
	rolls := make([]int, 2*minimum)
	for i := range rolls {
		rolls[i] = d.roll()
	}
	for {
		out, err := entropy.RollsToBitstring(rolls, bits)
		if !errors.Is(err, entropy.ErrInsufficientEntropy) {
			return out, err
		}
		d.Extended++
		log.Stats.Debug().Int("rolls", len(rolls)).Msg("Rolls insufficient, adding another")
		rolls = append(rolls, d.roll())
	}
}

// Cell is the outcome of enumerating every sequence of Rolls die rolls for
// a Bits-wide output.
type Cell struct {
	Bits      int
	Rolls     int
	Sequences int
	// Successes counts sequences that had enough accepted rolls.
	Successes int
	Zeros     []int
	Ones      []int
}

// Uniform reports whether every position saw the same number of zeros and
// ones, and every position the same count.
func (c Cell) Uniform() bool {
	if len(c.Zeros) == 0 {
		return true
	}
	want := c.Zeros[0]
	for i := range c.Zeros {
		if c.Zeros[i] != want || c.Ones[i] != want {
			return false
		}
	}
	return true
}

// UniformityReport is the result of ExhaustiveUniformity.
type UniformityReport struct {
	MaxBits  int
	MaxRolls int
	Cells    []Cell
	Failures []Cell
}

// Passed reports whether every cell was uniform.
func (r *UniformityReport) Passed() bool {
	return len(r.Failures) == 0
}

// ExhaustiveUniformity runs every roll sequence of length 1..maxRolls
// through the extractor for every even width 2..maxBits.
func ExhaustiveUniformity(ctx context.Context, maxBits, maxRolls int) (*UniformityReport, error) {
	if maxBits < entropy.BitsPerRoll || maxBits%entropy.BitsPerRoll != 0 {
		return nil, fmt.Errorf("%w: max bits %d must be a positive even number", entropy.ErrInvalidArgument, maxBits)
	}
	if maxRolls < 1 || maxRolls > MaxExhaustiveRolls {
		return nil, fmt.Errorf("%w: max rolls %d outside 1-%d", entropy.ErrInvalidArgument, maxRolls, MaxExhaustiveRolls)
	}

	done := log.Benchmark("exhaustive uniformity")
	defer done()

	report := &UniformityReport{MaxBits: maxBits, MaxRolls: maxRolls}
	for bits := entropy.BitsPerRoll; bits <= maxBits; bits += entropy.BitsPerRoll {
		for rolls := 1; rolls <= maxRolls; rolls++ {
			cell, err := enumerate(ctx, bits, rolls)
			if err != nil {
				return nil, err
			}
			report.Cells = append(report.Cells, cell)
			if !cell.Uniform() {
				report.Failures = append(report.Failures, cell)
				log.Stats.Warn().Int("bits", bits).Int("rolls", rolls).Msg("Bit counts not uniform")
			}
		}
	}

	log.Stats.Info().
		Int("cells", len(report.Cells)).
		Int("failures", len(report.Failures)).
		Msg("Exhaustive uniformity finished")
	return report, nil
}

func enumerate(ctx context.Context, bits, n int) (Cell, error) {
	cell := Cell{
		Bits:  bits,
		Rolls: n,
		Zeros: make([]int, bits),
		Ones:  make([]int, bits),
	}

	seq := make([]int, n)
	for i := range seq {
		seq[i] = 1
	}
	for {
		if cell.Sequences%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return Cell{}, err
			}
		}
		cell.Sequences++

		out, err := entropy.RollsToBitstring(seq, bits)
		switch {
		case err == nil:
			cell.Successes++
			for i := 0; i < bits; i++ {
				if out[i] == '0' {
					cell.Zeros[i]++
				} else {
					cell.Ones[i]++
				}
			}
		case errors.Is(err, entropy.ErrInsufficientEntropy):
		default:
			return Cell{}, err
		}

		if !next(seq) {
			return cell, nil
		}
	}
}

// next advances seq to the following sequence in lexicographic order and
// reports false after the last one.
func next(seq []int) bool {
	for i := len(seq) - 1; i >= 0; i-- {
		if seq[i] < entropy.DieFaces {
			seq[i]++
			return true
		}
		seq[i] = 1
	}
	return false
}
