package bip39

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/bip39mix/pkg/bitstring"
)

// Codec errors.
var (
	ErrInvalidArgument     = bitstring.ErrInvalidArgument
	ErrEmptyMnemonic       = fmt.Errorf("%w: empty mnemonic", ErrInvalidArgument)
	ErrUnknownWord         = errors.New("word not in wordlist")
	ErrWordIndexOutOfRange = errors.New("word index out of range")
	ErrChecksumMismatch    = errors.New("mnemonic checksum mismatch")
	ErrInvalidWordlist     = errors.New("invalid wordlist")
)

// Entropy length violations. Each sub-kind matches ErrEntropyLength.
var (
	ErrEntropyLength   = errors.New("invalid entropy length")
	ErrNotMultipleOf32 = fmt.Errorf("%w: not a multiple of %d bits", ErrEntropyLength, EntropyMultiple)
	ErrTooShort        = fmt.Errorf("%w: fewer than %d bits", ErrEntropyLength, MinEntropyBits)
	ErrTooLong         = fmt.Errorf("%w: more than %d bits", ErrEntropyLength, MaxEntropyBits)
)

// UnknownWordError reports a mnemonic word missing from the wordlist.
// Position is 1-based.
type UnknownWordError struct {
	Word     string
	Position int
}

func (e *UnknownWordError) Error() string {
	return fmt.Sprintf("word #%d %q not in wordlist", e.Position, e.Word)
}

// Is makes errors.Is(err, ErrUnknownWord) hold.
func (e *UnknownWordError) Is(target error) bool {
	return target == ErrUnknownWord
}
