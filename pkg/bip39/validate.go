package bip39

import (
	"fmt"
	"strings"

	"github.com/Klingon-tech/bip39mix/pkg/bitstring"
)

// Warning is an advisory finding. Warnings never block processing.
type Warning int

// Advisory findings.
const (
	WarnAllZero Warning = iota + 1
	WarnAllOnes
	WarnAtypicalWordCount
	WarnInconsistentLength
)

func (w Warning) String() string {
	switch w {
	case WarnAllZero:
		return "entropy is all zero bits"
	case WarnAllOnes:
		return "entropy is all one bits"
	case WarnAtypicalWordCount:
		return "atypical mnemonic word count"
	case WarnInconsistentLength:
		return "decoded mnemonic length inconsistent with BIP39"
	default:
		return fmt.Sprintf("warning(%d)", int(w))
	}
}

// Warnings is a set of advisory findings.
type Warnings []Warning

// Has reports whether w is present.
func (ws Warnings) Has(w Warning) bool {
	for _, x := range ws {
		if x == w {
			return true
		}
	}
	return false
}

func (ws Warnings) String() string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}

// standardWordCounts are the mnemonic lengths for the five BIP39 entropy sizes.
var standardWordCounts = map[int]bool{12: true, 15: true, 18: true, 21: true, 24: true}

// IsStandardLength reports whether words is one of 12, 15, 18, 21 or 24.
func IsStandardLength(words int) bool {
	return standardWordCounts[words]
}

// ValidateEntropyLength returns nil for a BIP39-sized entropy, otherwise an
// error matching ErrNotMultipleOf32, ErrTooShort or ErrTooLong.
func ValidateEntropyLength(entropy bitstring.BitString) error {
	n := entropy.Len()
	switch {
	case n%EntropyMultiple != 0:
		return fmt.Errorf("%w (got %d)", ErrNotMultipleOf32, n)
	case n < MinEntropyBits:
		return fmt.Errorf("%w (got %d)", ErrTooShort, n)
	case n > MaxEntropyBits:
		return fmt.Errorf("%w (got %d)", ErrTooLong, n)
	}
	return nil
}

// DetectWeakEntropy flags entropy that is all zeros or all ones.
func DetectWeakEntropy(entropy bitstring.BitString) Warnings {
	if entropy.Len() == 0 {
		return nil
	}
	switch {
	case entropy.IsZero():
		return Warnings{WarnAllZero}
	case entropy.IsAllOnes():
		return Warnings{WarnAllOnes}
	}
	return nil
}

// Inspect returns advisory findings about a mnemonic's shape. Word
// membership and checksum are checked by MnemonicToEntropy.
func Inspect(m Mnemonic) Warnings {
	var ws Warnings
	if !IsStandardLength(m.Len()) {
		ws = append(ws, WarnAtypicalWordCount)
	}
	if (m.Len()*BitsPerWord)%(EntropyMultiple+1) != 0 {
		ws = append(ws, WarnInconsistentLength)
	}
	return ws
}
