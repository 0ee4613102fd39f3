// Package crosscheck verifies mnemonics against independent BIP39 and BIP32
// implementations so a result can be compared with third-party wallets.
//
// The seed is derived twice, once by go-bip39 and once directly with
// PBKDF2-SHA512, and the root public key is computed twice, once by
// go-bip32 and once from the master private key with dcrd's secp256k1.
package crosscheck

import (
	"bytes"
	"crypto/sha512"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"

	"github.com/Klingon-tech/bip39mix/internal/log"
)

// SeedSize is the length of a derived seed in bytes (512 bits).
const SeedSize = 64

// seedIterations is the PBKDF2 round count fixed by BIP39.
const seedIterations = 2048

// BIP-44 account path: m/44'/0'/0'.
const (
	PurposeBIP44    = bip32.FirstHardenedChild + 44
	CoinTypeBitcoin = bip32.FirstHardenedChild + 0
	AccountFirst    = bip32.FirstHardenedChild + 0
)

// Errors.
var (
	ErrReferenceRejected = errors.New("reference implementation rejects mnemonic")
	ErrEntropyDiffers    = errors.New("reference implementation decodes different entropy")
	ErrSeedDiffers       = errors.New("seed derivations disagree")
	ErrPublicKeyDiffers  = errors.New("root public key derivations disagree")
)

// Report is the outcome of a cross-check. Keys are for the empty passphrase.
type Report struct {
	// RootXPub is the BIP32 master public key.
	RootXPub string
	// AccountXPub is the extended public key at m/44'/0'/0'.
	AccountXPub string
}

// ValidateMnemonic checks if a mnemonic is valid per the reference BIP-39
// implementation (correct word count, valid English words, valid checksum).
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// SeedFromMnemonic derives a 512-bit seed from a mnemonic and optional passphrase
// using PBKDF2-SHA512 as specified in BIP-39.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, ErrReferenceRejected
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("derive seed: %w", err)
	}
	return seed, nil
}

// pbkdf2Seed derives the seed without going through go-bip39.
func pbkdf2Seed(mnemonic, passphrase string) []byte {
	return pbkdf2.Key([]byte(mnemonic), []byte("mnemonic"+passphrase), seedIterations, SeedSize, sha512.New)
}

func masterKey(seed []byte) (*bip32.Key, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return master, nil
}

// RootPublicKey returns the base58 BIP32 master public key for seed.
func RootPublicKey(seed []byte) (string, error) {
	master, err := masterKey(seed)
	if err != nil {
		return "", err
	}
	return master.PublicKey().B58Serialize(), nil
}

// AccountPublicKey returns the base58 extended public key at m/44'/0'/0'.
func AccountPublicKey(seed []byte) (string, error) {
	current, err := masterKey(seed)
	if err != nil {
		return "", err
	}
	for _, idx := range []uint32{PurposeBIP44, CoinTypeBitcoin, AccountFirst} {
		current, err = current.NewChildKey(idx)
		if err != nil {
			return "", fmt.Errorf("derive child %d: %w", idx, err)
		}
	}
	return current.PublicKey().B58Serialize(), nil
}

// verifyPublicKey recomputes the compressed master public key from the
// master private key and compares it with go-bip32's.
func verifyPublicKey(master *bip32.Key) error {
	priv := secp256k1.PrivKeyFromBytes(master.Key)
	defer priv.Zero()
	if !bytes.Equal(priv.PubKey().SerializeCompressed(), master.PublicKey().Key) {
		return ErrPublicKeyDiffers
	}
	return nil
}

// Check decodes mnemonic with the reference implementation, requires it to
// yield exactly entropy, and derives the root and account public keys.
func Check(mnemonic string, entropy []byte) (*Report, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, ErrReferenceRejected
	}
	decoded, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReferenceRejected, err)
	}
	if !bytes.Equal(decoded, entropy) {
		return nil, ErrEntropyDiffers
	}

	seed, err := SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return nil, err
	}
	defer clear(seed)

	direct := pbkdf2Seed(mnemonic, "")
	defer clear(direct)
	if !bytes.Equal(seed, direct) {
		return nil, ErrSeedDiffers
	}

	master, err := masterKey(seed)
	if err != nil {
		return nil, err
	}
	if err := verifyPublicKey(master); err != nil {
		return nil, err
	}

	account, err := AccountPublicKey(seed)
	if err != nil {
		return nil, err
	}
	log.Codec.Debug().Int("entropy_bytes", len(entropy)).Msg("Reference cross-check passed")
	return &Report{
		RootXPub:    master.PublicKey().B58Serialize(),
		AccountXPub: account,
	}, nil
}
