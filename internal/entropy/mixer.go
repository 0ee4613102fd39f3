package entropy

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/Klingon-tech/bip39mix/internal/log"
	"github.com/Klingon-tech/bip39mix/pkg/bitstring"
)

// Source produces bit strings of a requested length.
type Source interface {
	Fetch(bits int) (bitstring.BitString, error)
}

// SystemSource reads entropy from a byte stream, by default the operating
// system's cryptographic random source.
type SystemSource struct {
	Reader io.Reader
}

// NewSystemSource returns a source backed by crypto/rand.
func NewSystemSource() *SystemSource {
	return &SystemSource{Reader: rand.Reader}
}

// Fetch reads ceil(bits/8) bytes and returns the first bits bits.
func (s *SystemSource) Fetch(bits int) (bitstring.BitString, error) {
	if bits < 0 {
		return "", fmt.Errorf("%w: bit count %d is negative", ErrInvalidArgument, bits)
	}
	r := s.Reader
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read system entropy: %w", err)
	}
	log.Mixer.Debug().Int("bits", bits).Int("bytes", len(buf)).Msg("fetched system entropy")
	return bitstring.FromBytes(buf)[:bits], nil
}

// FetchSystemEntropy returns bits bits from the operating system's
// cryptographic random source.
func FetchSystemEntropy(bits int) (bitstring.BitString, error) {
	return NewSystemSource().Fetch(bits)
}

// XorBits returns the bitwise XOR of two equal-length bit strings.
func XorBits(a, b bitstring.BitString) (bitstring.BitString, error) {
	if a.Len() != b.Len() {
		return "", fmt.Errorf("%w: %d and %d bits", ErrLengthMismatch, a.Len(), b.Len())
	}
	if err := a.Validate(); err != nil {
		return "", err
	}
	if err := b.Validate(); err != nil {
		return "", err
	}
	out := make([]byte, a.Len())
	for i := range out {
		out[i] = '0' + (a[i]^b[i])&1
	}
	return bitstring.BitString(out), nil
}
