// Package session drives one mixing run: a mnemonic is opened, OS and dice
// entropy are XORed into it round by round, and every intermediate state is
// reported back to the caller.
//
// A Session never reads input. The caller hands it a sentence, asks for a
// system round, or asks what a dice round needs and then supplies the rolls.
// An InsufficientEntropyError from MixDice leaves the session unchanged so
// the caller can extend the roll sequence and try again.
package session

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/bip39mix/internal/entropy"
	"github.com/Klingon-tech/bip39mix/internal/log"
	"github.com/Klingon-tech/bip39mix/pkg/bip39"
	"github.com/Klingon-tech/bip39mix/pkg/bitstring"
)

// Errors.
var (
	ErrRederivationFailed = errors.New("re-derived mnemonic does not match input")
	ErrNotOpen            = errors.New("no mnemonic opened")
	ErrAlreadyOpen        = errors.New("mnemonic already opened")
	ErrNilCodec           = errors.New("codec is required")
)

// Kind identifies where the entropy of a round came from.
type Kind int

const (
	KindSystem Kind = iota
	KindDice
)

func (k Kind) String() string {
	switch k {
	case KindSystem:
		return "system"
	case KindDice:
		return "dice"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// State is one entropy value in every form the caller displays.
type State struct {
	Entropy  bitstring.BitString
	Hex      string
	Mnemonic bip39.Mnemonic
}

// Opened is the result of accepting the input mnemonic.
type Opened struct {
	State
	// Warnings holds advisory findings on both the sentence and its entropy.
	Warnings bip39.Warnings
}

// Round records one mixing step: Result = Previous XOR Input.
type Round struct {
	Number   int
	Kind     Kind
	Previous State
	Input    State
	Result   State
	Warnings bip39.Warnings
}

// DiceRequest tells the caller how many rolls a dice round needs.
type DiceRequest struct {
	Bits int
	// Minimum is the number of accepted rolls required.
	Minimum int
	// Estimated allows for the rolls of 4 and 5 that are discarded.
	Estimated int
}

// Session holds the running state of one mixing run.
type Session struct {
	codec  *bip39.Codec
	source entropy.Source

	opened  bool
	current State
	rounds  []Round
}

// New creates a session. A nil source uses the OS random source.
func New(codec *bip39.Codec, source entropy.Source) (*Session, error) {
	if codec == nil {
		return nil, ErrNilCodec
	}
	if source == nil {
		source = entropy.NewSystemSource()
	}
	return &Session{codec: codec, source: source}, nil
}

// Open validates sentence and makes its entropy the current state.
//
// Every word is checked against the wordlist first, then the checksum, then
// re-encoding must reproduce the normalised sentence, and finally the entropy
// length must be a valid BIP39 length. Word count and weak-entropy findings
// are returned as warnings.
func (s *Session) Open(sentence string) (*Opened, error) {
	if s.opened {
		return nil, ErrAlreadyOpen
	}

	m := bip39.ParseMnemonic(sentence)
	if _, err := s.codec.Indices(m); err != nil {
		return nil, err
	}
	warnings := bip39.Inspect(m)
	if len(warnings) > 0 {
		log.Session.Warn().Int("words", m.Len()).Str("warnings", warnings.String()).Msg("Atypical mnemonic")
	}

	ent, err := s.codec.MnemonicToEntropy(m)
	if err != nil {
		return nil, err
	}

	again, err := s.codec.EntropyToMnemonic(ent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRederivationFailed, err)
	}
	if again.String() != m.String() {
		return nil, ErrRederivationFailed
	}

	if err := bip39.ValidateEntropyLength(ent); err != nil {
		return nil, err
	}

	weak := bip39.DetectWeakEntropy(ent)
	if len(weak) > 0 {
		log.Session.Warn().Str("warnings", weak.String()).Msg("Weak input entropy")
	}
	warnings = append(warnings, weak...)

	state, err := s.state(ent)
	if err != nil {
		return nil, err
	}
	s.current = state
	s.opened = true

	log.Session.Info().Int("words", m.Len()).Int("bits", ent.Len()).Msg("Mnemonic opened")
	return &Opened{State: state, Warnings: warnings}, nil
}

// Current returns the latest state.
func (s *Session) Current() (State, error) {
	if !s.opened {
		return State{}, ErrNotOpen
	}
	return s.current, nil
}

// Rounds returns the rounds mixed so far.
func (s *Session) Rounds() []Round {
	out := make([]Round, len(s.rounds))
	copy(out, s.rounds)
	return out
}

// Bits returns the entropy width of the opened mnemonic.
func (s *Session) Bits() int {
	return s.current.Entropy.Len()
}

// MixSystem XORs one fetch of OS entropy into the current state.
func (s *Session) MixSystem() (*Round, error) {
	if !s.opened {
		return nil, ErrNotOpen
	}
	in, err := s.source.Fetch(s.Bits())
	if err != nil {
		return nil, fmt.Errorf("fetch system entropy: %w", err)
	}
	return s.mix(KindSystem, in)
}

// DiceRequest reports what a dice round for the current width needs.
func (s *Session) DiceRequest() (*DiceRequest, error) {
	if !s.opened {
		return nil, ErrNotOpen
	}
	bits := s.Bits()
	minimum, err := entropy.MinimumRollsForBits(bits)
	if err != nil {
		return nil, err
	}
	estimated, err := entropy.EstimatedRollsForBits(bits)
	if err != nil {
		return nil, err
	}
	return &DiceRequest{Bits: bits, Minimum: minimum, Estimated: estimated}, nil
}

// MixDice converts rolls to bits and XORs them into the current state.
// On error the session is unchanged.
func (s *Session) MixDice(rolls []int) (*Round, error) {
	if !s.opened {
		return nil, ErrNotOpen
	}
	in, err := entropy.RollsToBitstring(rolls, s.Bits())
	if err != nil {
		var insufficient *entropy.InsufficientEntropyError
		if errors.As(err, &insufficient) {
			log.Session.Debug().Int("rolls", len(rolls)).Int("remaining", insufficient.Remaining()).Msg("More rolls needed")
		}
		return nil, err
	}
	return s.mix(KindDice, in)
}

func (s *Session) mix(kind Kind, in bitstring.BitString) (*Round, error) {
	input, err := s.state(in)
	if err != nil {
		return nil, err
	}
	combined, err := entropy.XorBits(s.current.Entropy, in)
	if err != nil {
		return nil, err
	}
	result, err := s.state(combined)
	if err != nil {
		return nil, err
	}

	round := Round{
		Number:   len(s.rounds) + 1,
		Kind:     kind,
		Previous: s.current,
		Input:    input,
		Result:   result,
		Warnings: bip39.DetectWeakEntropy(combined),
	}
	s.rounds = append(s.rounds, round)
	s.current = result

	log.Session.Info().Int("round", round.Number).Stringer("kind", kind).Int("bits", combined.Len()).Msg("Entropy mixed")
	return &round, nil
}

func (s *Session) state(ent bitstring.BitString) (State, error) {
	h, err := ent.Hex()
	if err != nil {
		return State{}, err
	}
	m, err := s.codec.EntropyToMnemonic(ent)
	if err != nil {
		return State{}, err
	}
	return State{Entropy: ent, Hex: h, Mnemonic: m}, nil
}
