package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/bip39mix/internal/crosscheck"
	"github.com/Klingon-tech/bip39mix/internal/entropy"
	"github.com/Klingon-tech/bip39mix/pkg/bip39"
	"github.com/Klingon-tech/bip39mix/pkg/bitstring"
)

const (
	flagBinary = "binary"
	flagBits   = "bits"
)

// argsOrLine joins args, or reads all of the input when there are none.
func argsOrLine(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", errInputClosed
	}
	return s, nil
}

func (a *app) encodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [hex]",
		Short: "Encode hex entropy as a mnemonic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := argsOrLine(cmd, args)
			if err != nil {
				return err
			}
			binary, _ := cmd.Flags().GetBool(flagBinary)

			var ent bitstring.BitString
			if binary {
				ent, err = bitstring.Parse(in)
			} else {
				ent, err = bitstring.FromHex(strings.TrimPrefix(in, "0x"))
			}
			if err != nil {
				return err
			}
			if err := bip39.ValidateEntropyLength(ent); err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), bip39.DetectWeakEntropy(ent))

			m, err := a.codec.EntropyToMnemonic(ent)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), m)
			return nil
		},
	}
	cmd.Flags().Bool(flagBinary, false, "Input is a binary string instead of hex")
	return cmd
}

func (a *app) decodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [words...]",
		Short: "Decode a mnemonic to hex entropy",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := argsOrLine(cmd, args)
			if err != nil {
				return err
			}
			m := bip39.ParseMnemonic(in)
			printWarnings(cmd.ErrOrStderr(), bip39.Inspect(m))

			ent, err := a.codec.MnemonicToEntropy(m)
			if err != nil {
				return describeOpenError(err)
			}
			printWarnings(cmd.ErrOrStderr(), bip39.DetectWeakEntropy(ent))

			if binary, _ := cmd.Flags().GetBool(flagBinary); binary {
				fmt.Fprintln(cmd.OutOrStdout(), ent)
				return nil
			}
			h, err := ent.Hex()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().Bool(flagBinary, false, "Print a binary string instead of hex")
	return cmd
}

func (a *app) diceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dice [rolls...]",
		Short: "Convert die rolls to unbiased bits",
		Long: `Converts rolls of a six-sided die to bits. Rolls of 4 and 5 are discarded
and 6 counts as 0, so each remaining roll gives two unbiased bits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bits, _ := cmd.Flags().GetInt(flagBits)
			in, err := argsOrLine(cmd, args)
			if err != nil {
				return err
			}
			rolls, err := entropy.ParseRolls(in)
			if err != nil {
				return err
			}

			out, err := entropy.RollsToBitstring(rolls, bits)
			var insufficient *entropy.InsufficientEntropyError
			if errors.As(err, &insufficient) {
				return fmt.Errorf("%w: roll again, %d more accepted rolls needed", err, insufficient.Remaining())
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().Int(flagBits, bip39.MaxEntropyBits, "Number of bits to produce (even)")
	return cmd
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [words...]",
		Short: "Validate a mnemonic and show its BIP32 root public key",
		Long: `Decodes a mnemonic, then decodes it again with an independent BIP39
implementation and derives the BIP32 root and m/44'/0'/0' account public keys
(empty passphrase), so the result can be compared with another wallet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := argsOrLine(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			m := bip39.ParseMnemonic(in)
			ent, err := a.codec.MnemonicToEntropy(m)
			if err != nil {
				return describeOpenError(err)
			}
			if err := bip39.ValidateEntropyLength(ent); err != nil {
				return describeOpenError(err)
			}
			h, err := ent.Hex()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "words:    %d\n", m.Len())
			fmt.Fprintf(out, "entropy:  %s (%d bits)\n", h, ent.Len())
			printWarnings(out, bip39.DetectWeakEntropy(ent))

			if !a.english() {
				fmt.Fprintln(out, "reference check skipped: custom wordlist")
				return nil
			}
			raw, err := ent.Bytes()
			if err != nil {
				return err
			}
			report, err := crosscheck.Check(m.String(), raw)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "reference: OK")
			fmt.Fprintf(out, "root xpub: %s\n", report.RootXPub)
			fmt.Fprintf(out, "m/44'/0'/0' xpub: %s\n", report.AccountXPub)
			return nil
		},
	}
}
