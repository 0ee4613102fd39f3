// Package entropy extracts unbiased bits from die rolls and mixes entropy
// sources together.
//
// A six-sided die does not map evenly onto bits. Rolls of 6 are filtered to
// 0, and rolls of 4 or 5 are thrown away, leaving four equally likely faces
// {0,1,2,3}. Every accepted roll is therefore one uniform base-4 digit, or
// two unbiased bits. Keeping 4s and 5s anywhere in the sequence, even only
// at the end, biases the binary conversion. Because of this the number of
// rolls a user needs is not fixed, and bit widths must be even.
package entropy

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/Klingon-tech/bip39mix/internal/log"
	"github.com/Klingon-tech/bip39mix/pkg/bitstring"
)

// Errors.
var (
	ErrInvalidArgument     = bitstring.ErrInvalidArgument
	ErrInsufficientEntropy = errors.New("insufficient entropy")
	ErrLengthMismatch      = errors.New("bit string length mismatch")
)

// Die constants.
const (
	DieFaces     = 6
	BitsPerRoll  = 2
	filteredFace = 6
)

// InsufficientEntropyError reports how many accepted rolls were available
// and how many the requested width needs.
type InsufficientEntropyError struct {
	Accepted int
	Required int
}

func (e *InsufficientEntropyError) Error() string {
	return fmt.Sprintf("insufficient entropy: %d accepted rolls, need at least %d", e.Accepted, e.Required)
}

// Is makes errors.Is(err, ErrInsufficientEntropy) hold.
func (e *InsufficientEntropyError) Is(target error) bool {
	return target == ErrInsufficientEntropy
}

// Remaining returns how many more accepted rolls are needed.
func (e *InsufficientEntropyError) Remaining() int {
	return e.Required - e.Accepted
}

func checkWidth(bits int) error {
	if bits < 1 || bits%BitsPerRoll != 0 {
		return fmt.Errorf("%w: bit width %d must be a positive multiple of %d", ErrInvalidArgument, bits, BitsPerRoll)
	}
	return nil
}

// MinimumRollsForBits returns the absolute minimum number of accepted rolls
// needed for bits of entropy. Discarded rolls are not accounted for.
func MinimumRollsForBits(bits int) (int, error) {
	if err := checkWidth(bits); err != nil {
		return 0, err
	}
	return (bits + BitsPerRoll - 1) / BitsPerRoll, nil
}

// EstimatedRollsForBits returns the expected number of raw rolls needed,
// given that on average one roll in three is discarded.
func EstimatedRollsForBits(bits int) (int, error) {
	n, err := MinimumRollsForBits(bits)
	if err != nil {
		return 0, err
	}
	return (n*4 + 2) / 3, nil
}

// accepted maps a die face to its base-4 digit, or false if discarded.
func accepted(face int) (int64, bool) {
	switch face {
	case 4, 5:
		return 0, false
	case filteredFace:
		return 0, true
	default:
		return int64(face), true
	}
}

func checkFace(i, face int) error {
	if face < 1 || face > DieFaces {
		return fmt.Errorf("%w: roll #%d is %d, want 1-%d", ErrInvalidArgument, i+1, face, DieFaces)
	}
	return nil
}

// CountAccepted returns how many rolls survive filtering.
func CountAccepted(rolls []int) int {
	n := 0
	for _, r := range rolls {
		if _, ok := accepted(r); ok {
			n++
		}
	}
	return n
}

// RollsToBitstring converts die rolls to exactly targetBits unbiased bits.
//
// Accepted rolls are read as base-4 digits, the first accepted roll being
// the least significant. The low-order targetBits bits of the total are
// returned, so digits beyond what the width needs are the ones dropped.
func RollsToBitstring(rolls []int, targetBits int) (bitstring.BitString, error) {
	required, err := MinimumRollsForBits(targetBits)
	if err != nil {
		return "", err
	}

	total := new(big.Int)
	digit := new(big.Int)
	n := 0
	for i, face := range rolls {
		if err := checkFace(i, face); err != nil {
			return "", err
		}
		v, ok := accepted(face)
		if !ok {
			continue
		}
		digit.SetInt64(v)
		total.Add(total, digit.Lsh(digit, uint(BitsPerRoll*n)))
		n++
	}

	log.Dice.Debug().
		Int("rolls", len(rolls)).
		Int("accepted", n).
		Int("required", required).
		Int("bits", targetBits).
		Msg("converting die rolls")

	if n < required {
		return "", &InsufficientEntropyError{Accepted: n, Required: required}
	}

	bits, err := bitstring.FromBig(total, targetBits)
	if err != nil {
		return "", err
	}
	return bits[bits.Len()-targetBits:], nil
}

// ParseRolls reads whitespace-separated die faces such as "1 6 3 4".
func ParseRolls(s string) ([]int, error) {
	fields := strings.Fields(s)
	rolls := make([]int, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: roll #%d %q is not a number", ErrInvalidArgument, i+1, f)
		}
		if err := checkFace(i, v); err != nil {
			return nil, err
		}
		rolls = append(rolls, v)
	}
	return rolls, nil
}
