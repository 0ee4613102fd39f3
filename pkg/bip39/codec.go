// Package bip39 encodes entropy as BIP39 mnemonic sentences and decodes them
// back, verifying the embedded checksum.
//
// Relation between entropy length (ENT), checksum length (CS) and mnemonic
// length in words (MS):
//
//	CS = ENT / 32
//	MS = (ENT + CS) / 11
//
//	|  ENT  | CS | ENT+CS |  MS  |
//	+-------+----+--------+------+
//	|  128  |  4 |   132  |  12  |
//	|  160  |  5 |   165  |  15  |
//	|  192  |  6 |   198  |  18  |
//	|  224  |  7 |   231  |  21  |
//	|  256  |  8 |   264  |  24  |
package bip39

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/Klingon-tech/bip39mix/pkg/bitstring"
)

// BIP39 size constants.
const (
	EntropyMultiple = 32
	MinEntropyBits  = 128
	MaxEntropyBits  = 256
	BitsPerWord     = 11
)

// Mnemonic is an ordered sequence of wordlist words.
type Mnemonic []string

// ParseMnemonic splits a sentence on whitespace.
func ParseMnemonic(sentence string) Mnemonic {
	return Mnemonic(strings.Fields(sentence))
}

// String joins the words with single spaces.
func (m Mnemonic) String() string {
	return strings.Join(m, " ")
}

// Len returns the word count.
func (m Mnemonic) Len() int {
	return len(m)
}

// Codec converts between entropy and mnemonics over one wordlist.
type Codec struct {
	wordlist *Wordlist
}

// NewCodec returns a codec bound to wl.
func NewCodec(wl *Wordlist) (*Codec, error) {
	if wl == nil {
		return nil, fmt.Errorf("%w: nil wordlist", ErrInvalidWordlist)
	}
	return &Codec{wordlist: wl}, nil
}

// Wordlist returns the codec's wordlist.
func (c *Codec) Wordlist() *Wordlist {
	return c.wordlist
}

// Checksum returns the first len(entropy)/32 bits of SHA-256 over the
// byte-packed entropy. The entropy length must be a multiple of 8.
func Checksum(entropy bitstring.BitString) (bitstring.BitString, error) {
	data, err := entropy.Bytes()
	if err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	sum := sha256.Sum256(data)
	digest := bitstring.FromBytes(sum[:])

	n := entropy.Len() / EntropyMultiple
	if n > digest.Len() {
		n = digest.Len()
	}
	return digest[:n], nil
}

// EntropyToMnemonic appends the checksum to entropy and maps each 11-bit
// group to a word. Bits left over after the last whole group are dropped.
func (c *Codec) EntropyToMnemonic(entropy bitstring.BitString) (Mnemonic, error) {
	cs, err := Checksum(entropy)
	if err != nil {
		return nil, err
	}
	chunks := (entropy + cs).Chunks(BitsPerWord)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %d bits of entropy encode no words", ErrInvalidArgument, entropy.Len())
	}

	words := make(Mnemonic, len(chunks))
	for i, chunk := range chunks {
		idx, err := chunk.Uint()
		if err != nil {
			return nil, err
		}
		word, err := c.wordlist.Word(int(idx))
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i+1, err)
		}
		words[i] = word
	}
	return words, nil
}

// Indices looks up the wordlist position of every word.
func (c *Codec) Indices(m Mnemonic) ([]int, error) {
	if len(m) == 0 {
		return nil, ErrEmptyMnemonic
	}
	out := make([]int, len(m))
	for i, word := range m {
		idx, ok := c.wordlist.Index(word)
		if !ok {
			return nil, &UnknownWordError{Word: word, Position: i + 1}
		}
		out[i] = idx
	}
	return out, nil
}

// MnemonicToEntropy decodes m and verifies its checksum. The returned bits
// exclude the checksum.
func (c *Codec) MnemonicToEntropy(m Mnemonic) (bitstring.BitString, error) {
	indices, err := c.Indices(m)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(len(indices) * BitsPerWord)
	for _, idx := range indices {
		chunk, err := bitstring.FromUint(uint64(idx), BitsPerWord)
		if err != nil {
			return "", err
		}
		sb.WriteString(string(chunk))
	}
	bits := bitstring.BitString(sb.String())

	split := EntropyBitsFor(bits.Len())
	raw, supplied := bits[:split], bits[split:]
	if raw.Len()%8 != 0 {
		return "", fmt.Errorf("%w: %d words decode to %d entropy bits, not whole bytes", ErrChecksumMismatch, len(m), raw.Len())
	}
	computed, err := Checksum(raw)
	if err != nil {
		return "", err
	}
	if computed != supplied {
		return "", ErrChecksumMismatch
	}
	return raw, nil
}

// EntropyBitsFor returns how many of totalBits decoded mnemonic bits are
// entropy, using the exact ENT:(ENT+CS) = 32:33 ratio.
func EntropyBitsFor(totalBits int) int {
	return totalBits * EntropyMultiple / (EntropyMultiple + 1)
}

// WordsFor returns the mnemonic length for entropyBits of entropy.
func WordsFor(entropyBits int) int {
	return (entropyBits + entropyBits/EntropyMultiple) / BitsPerWord
}
