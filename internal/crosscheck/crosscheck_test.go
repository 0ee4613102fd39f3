package crosscheck

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	mnemonic12 = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	mnemonic24 = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art"
)

func TestValidateMnemonic(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
		valid    bool
	}{
		{name: "valid 24-word BIP-39", mnemonic: mnemonic24, valid: true},
		{name: "valid 12-word BIP-39", mnemonic: mnemonic12, valid: true},
		{name: "empty string", mnemonic: "", valid: false},
		{name: "random words", mnemonic: "not a valid mnemonic phrase at all", valid: false},
		{name: "wrong checksum", mnemonic: strings.TrimSpace(strings.Repeat("abandon ", 24)), valid: false},
		{name: "single word", mnemonic: "abandon", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateMnemonic(tt.mnemonic); got != tt.valid {
				t.Errorf("ValidateMnemonic() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestSeedFromMnemonic_KnownVector(t *testing.T) {
	// Standard BIP-39 test vector
	// Mnemonic: "abandon" x11 + "about", passphrase: "TREZOR"
	seed, err := SeedFromMnemonic(mnemonic12, "TREZOR")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}

	want, _ := hex.DecodeString("c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04")
	if !bytes.Equal(seed, want) {
		t.Errorf("seed = %x, want %x", seed, want)
	}
}

func TestSeedFromMnemonic_InvalidMnemonic(t *testing.T) {
	_, err := SeedFromMnemonic("not valid words here", "")
	if !errors.Is(err, ErrReferenceRejected) {
		t.Errorf("error = %v, want ErrReferenceRejected", err)
	}
}

func TestRootPublicKey(t *testing.T) {
	seed, err := SeedFromMnemonic(mnemonic12, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	xpub, err := RootPublicKey(seed)
	if err != nil {
		t.Fatalf("RootPublicKey() error: %v", err)
	}
	if !strings.HasPrefix(xpub, "xpub") {
		t.Errorf("xpub = %q, want xpub prefix", xpub)
	}

	again, err := RootPublicKey(seed)
	if err != nil {
		t.Fatalf("RootPublicKey() error: %v", err)
	}
	if xpub != again {
		t.Error("same seed should produce same root key")
	}

	other, err := SeedFromMnemonic(mnemonic12, "passphrase")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	otherXPub, err := RootPublicKey(other)
	if err != nil {
		t.Fatalf("RootPublicKey() error: %v", err)
	}
	if otherXPub == xpub {
		t.Error("different seeds should produce different root keys")
	}
}

func TestRootPublicKey_BadSeed(t *testing.T) {
	if _, err := RootPublicKey(make([]byte, 32)); err == nil {
		t.Error("should reject short seed")
	}
}

func TestCheck(t *testing.T) {
	report, err := Check(mnemonic12, make([]byte, 16))
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if !strings.HasPrefix(report.RootXPub, "xpub") {
		t.Errorf("RootXPub = %q", report.RootXPub)
	}
	if !strings.HasPrefix(report.AccountXPub, "xpub") || report.AccountXPub == report.RootXPub {
		t.Errorf("AccountXPub = %q", report.AccountXPub)
	}
}

func TestCheck_EntropyDiffers(t *testing.T) {
	entropy := make([]byte, 16)
	entropy[15] = 1
	if _, err := Check(mnemonic12, entropy); !errors.Is(err, ErrEntropyDiffers) {
		t.Errorf("error = %v, want ErrEntropyDiffers", err)
	}
}

func TestCheck_Rejected(t *testing.T) {
	if _, err := Check("abandon abandon abandon", nil); !errors.Is(err, ErrReferenceRejected) {
		t.Errorf("error = %v, want ErrReferenceRejected", err)
	}
}

func TestPBKDF2Seed_MatchesReference(t *testing.T) {
	for _, pass := range []string{"", "TREZOR"} {
		want, err := SeedFromMnemonic(mnemonic24, pass)
		if err != nil {
			t.Fatalf("SeedFromMnemonic() error: %v", err)
		}
		if got := pbkdf2Seed(mnemonic24, pass); !bytes.Equal(got, want) {
			t.Errorf("passphrase %q: pbkdf2 seed = %x, want %x", pass, got, want)
		}
	}
}

func TestVerifyPublicKey(t *testing.T) {
	seed, err := SeedFromMnemonic(mnemonic12, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	master, err := masterKey(seed)
	if err != nil {
		t.Fatalf("masterKey() error: %v", err)
	}
	if err := verifyPublicKey(master); err != nil {
		t.Fatalf("verifyPublicKey() error: %v", err)
	}

	pub := master.PublicKey().Key
	if len(pub) != secp256k1.PubKeyBytesLenCompressed {
		t.Errorf("public key length = %d, want %d", len(pub), secp256k1.PubKeyBytesLenCompressed)
	}
	if _, err := secp256k1.ParsePubKey(pub); err != nil {
		t.Errorf("public key not on curve: %v", err)
	}
}

func TestAccountPublicKey(t *testing.T) {
	seed, err := SeedFromMnemonic(mnemonic12, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	root, err := RootPublicKey(seed)
	if err != nil {
		t.Fatalf("RootPublicKey() error: %v", err)
	}
	account, err := AccountPublicKey(seed)
	if err != nil {
		t.Fatalf("AccountPublicKey() error: %v", err)
	}
	// Depth-0 mainnet keys share this prefix.
	if !strings.HasPrefix(root, "xpub661MyMwAqRbc") {
		t.Errorf("root = %q, want master key prefix", root)
	}
	if !strings.HasPrefix(account, "xpub") || account == root {
		t.Errorf("account = %q", account)
	}
	if _, err := AccountPublicKey(seed[:10]); err == nil {
		t.Error("should reject short seed")
	}
}
