// Package bitstring converts between binary-digit strings and the other
// representations entropy passes through: integers, hex and raw bytes.
//
// A BitString is an explicit-width unsigned bit vector. Leading zeros are
// significant and are never stripped by any function in this package.
package bitstring

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ErrInvalidArgument is returned for malformed or out-of-domain input.
var ErrInvalidArgument = errors.New("invalid argument")

const hexDigits = "0123456789abcdef"

// BitString is an ordered sequence of '0' and '1' characters, most
// significant bit first.
type BitString string

// Parse validates s and returns it as a BitString.
func Parse(s string) (BitString, error) {
	b := BitString(s)
	if err := b.Validate(); err != nil {
		return "", err
	}
	return b, nil
}

// Validate reports whether every character is a binary digit.
func (b BitString) Validate() error {
	for i := 0; i < len(b); i++ {
		if b[i] != '0' && b[i] != '1' {
			return fmt.Errorf("%w: character %q at offset %d is not a binary digit", ErrInvalidArgument, b[i], i)
		}
	}
	return nil
}

// Len returns the number of bits.
func (b BitString) Len() int {
	return len(b)
}

// String returns the raw binary digits.
func (b BitString) String() string {
	return string(b)
}

// Zeros returns n zero bits.
func Zeros(n int) BitString {
	if n <= 0 {
		return ""
	}
	return BitString(strings.Repeat("0", n))
}

// Ones returns n one bits.
func Ones(n int) BitString {
	if n <= 0 {
		return ""
	}
	return BitString(strings.Repeat("1", n))
}

// IsZero reports whether no bit is set. The empty string is zero.
func (b BitString) IsZero() bool {
	return strings.IndexByte(string(b), '1') < 0
}

// IsAllOnes reports whether every bit is set. The empty string is not.
func (b BitString) IsAllOnes() bool {
	return len(b) > 0 && strings.IndexByte(string(b), '0') < 0
}

// FromBig returns the binary representation of v, left-padded with zeros
// to at least minWidth digits. Zero is rendered as a single "0" unless
// minWidth asks for more.
func FromBig(v *big.Int, minWidth int) (BitString, error) {
	if v == nil || v.Sign() < 0 {
		return "", fmt.Errorf("%w: value must be a non-negative integer", ErrInvalidArgument)
	}
	if minWidth < 0 {
		return "", fmt.Errorf("%w: width %d is negative", ErrInvalidArgument, minWidth)
	}
	return pad(v.Text(2), minWidth), nil
}

// FromUint is FromBig for values that fit in a machine word.
func FromUint(v uint64, minWidth int) (BitString, error) {
	if minWidth < 0 {
		return "", fmt.Errorf("%w: width %d is negative", ErrInvalidArgument, minWidth)
	}
	return pad(strconv.FormatUint(v, 2), minWidth), nil
}

func pad(digits string, width int) BitString {
	if len(digits) >= width {
		return BitString(digits)
	}
	return BitString(strings.Repeat("0", width-len(digits)) + digits)
}

// FromHex parses an unsigned hex string into exactly 4*len(s) bits, so
// leading zero nibbles survive. Both letter cases are accepted.
func FromHex(s string) (BitString, error) {
	var sb strings.Builder
	sb.Grow(len(s) * 4)
	for i := 0; i < len(s); i++ {
		nibble, ok := hexValue(s[i])
		if !ok {
			return "", fmt.Errorf("%w: %q is not a hex digit", ErrInvalidArgument, s[i])
		}
		for shift := 3; shift >= 0; shift-- {
			sb.WriteByte('0' + (nibble>>uint(shift))&1)
		}
	}
	return BitString(sb.String()), nil
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Hex returns the lowercase hex encoding of b. A length that is not a
// multiple of 4 is treated as left-padded with zeros to the next multiple.
func (b BitString) Hex() (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	bits := string(pad(string(b), (len(b)+3)/4*4))
	out := make([]byte, len(bits)/4)
	for i := range out {
		var nibble byte
		for _, c := range []byte(bits[i*4 : i*4+4]) {
			nibble = nibble<<1 | (c - '0')
		}
		out[i] = hexDigits[nibble]
	}
	return string(out), nil
}

// Bytes packs b into bytes, most significant bit first. The length must be
// a multiple of 8.
func (b BitString) Bytes() ([]byte, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits do not pack into whole bytes", ErrInvalidArgument, len(b))
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, len(b)/8)
	for i := range out {
		var v byte
		for _, c := range []byte(b[i*8 : i*8+8]) {
			v = v<<1 | (c - '0')
		}
		out[i] = v
	}
	return out, nil
}

// FromBytes expands p into 8 bits per byte, most significant bit first.
func FromBytes(p []byte) BitString {
	var sb strings.Builder
	sb.Grow(len(p) * 8)
	for _, v := range p {
		for shift := 7; shift >= 0; shift-- {
			sb.WriteByte('0' + (v>>uint(shift))&1)
		}
	}
	return BitString(sb.String())
}

// Uint interprets b as an unsigned integer. It fails for more than 64 bits.
func (b BitString) Uint() (uint64, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if len(b) > 64 {
		return 0, fmt.Errorf("%w: %d bits overflow uint64", ErrInvalidArgument, len(b))
	}
	v, err := strconv.ParseUint(string(b), 2, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return v, nil
}

// Chunks splits b into consecutive groups of size bits. Trailing bits that
// do not fill a whole group are dropped.
func (b BitString) Chunks(size int) []BitString {
	if size <= 0 {
		return nil
	}
	n := len(b) / size
	out := make([]BitString, n)
	for i := 0; i < n; i++ {
		out[i] = b[i*size : (i+1)*size]
	}
	return out
}
