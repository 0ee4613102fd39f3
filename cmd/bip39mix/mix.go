package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Klingon-tech/bip39mix/config"
	"github.com/Klingon-tech/bip39mix/internal/entropy"
	"github.com/Klingon-tech/bip39mix/internal/log"
	"github.com/Klingon-tech/bip39mix/internal/session"
	"github.com/Klingon-tech/bip39mix/pkg/bip39"
)

const checklist = `Manually validate:
	1. Old hex and mnemonic match previous versions.
	2. Entering new and xor'd hex into an independent BIP39 tool derives the same mnemonics.
	3. Confirm old XOR new = xor'd hex, one hex character at a time.
`

func (a *app) mixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mix",
		Short: "Mix OS entropy and die rolls into an existing mnemonic",
		Long: `Reads a BIP39 mnemonic, verifies its checksum and re-derivation, then
XORs in rounds of operating system entropy followed by physical die rolls.
Every intermediate entropy value is shown as hex and as a mnemonic so it can
be checked with an independent tool.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), a.cfg.Mix.HideInput)
			return a.runMix(p, cmd.OutOrStdout())
		},
	}
	a.flags.RegisterMix(cmd.Flags())
	return cmd
}

func (a *app) runMix(p *prompter, out io.Writer) error {
	s, err := session.New(a.codec, a.source)
	if err != nil {
		return err
	}

	sentence, err := p.secret("Enter your BIP39 mnemonic: ")
	if err != nil {
		return err
	}
	if !p.hidden() {
		fmt.Fprintf(out, "You entered: '%s'\n", sentence)
	}

	opened, err := s.Open(sentence)
	if err != nil {
		return describeOpenError(err)
	}
	printWarnings(out, opened.Warnings)
	fmt.Fprintf(out, "Mnemonic as binary string: %s\n", opened.Entropy)
	fmt.Fprintln(out, "Note: The mnemonic passes a checksum test!")
	fmt.Fprintln(out, "Re-deriving mnemonic from binary string for sanity check... PASSED!")
	fmt.Fprintln(out, "The mnemonic appears to conform to a valid bip39 entropy format.")

	rounds := a.cfg.Mix.SystemRounds
	if rounds == config.AskRounds {
		rounds, err = askRounds(p)
		if err != nil {
			return err
		}
	}
	for i := 0; i < rounds; i++ {
		round, err := s.MixSystem()
		if err != nil {
			return err
		}
		printRound(out, round)
		fmt.Fprint(out, checklist)
	}

	if a.cfg.Mix.Dice {
		round, err := mixDice(p, out, s)
		if err != nil {
			return err
		}
		printRound(out, round)
	}

	printSummary(out, s.Rounds())
	final, err := s.Current()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Final mnemonic: %s\n", final.Mnemonic)
	log.CLI.Info().Int("rounds", len(s.Rounds())).Msg("Mixing finished")
	return nil
}

func describeOpenError(err error) error {
	var uw *bip39.UnknownWordError
	switch {
	case errors.As(err, &uw):
		return fmt.Errorf("word #%d '%s' not in canonical wordlist", uw.Position, uw.Word)
	case errors.Is(err, bip39.ErrChecksumMismatch):
		return fmt.Errorf("mnemonic failed checksum, it may be an invalid BIP39 mnemonic: %w", err)
	case errors.Is(err, session.ErrRederivationFailed):
		return fmt.Errorf("re-deriving mnemonic failed, stopping: %w", err)
	case errors.Is(err, bip39.ErrEntropyLength):
		return fmt.Errorf("mnemonic does not conform to bip39 entropy format: %w", err)
	default:
		return err
	}
}

func askRounds(p *prompter) (int, error) {
	for {
		ans, err := p.line("Enter the number of times entropy should be mixed in from the OS (0 to skip): ")
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(ans))
		if err == nil && n >= 0 {
			return n, nil
		}
		fmt.Fprintf(p.out, "Please enter a non-negative number, got %q\n", ans)
	}
}

// mixDice collects rolls until the extractor has enough accepted ones.
func mixDice(p *prompter, out io.Writer, s *session.Session) (*session.Round, error) {
	req, err := s.DiceRequest()
	if err != nil {
		return nil, err
	}

	var rolls []int
	for len(rolls) < req.Estimated {
		ans, err := p.line(fmt.Sprintf("Roll a die at least %d times to provide entropy to mix in, "+
			"with each roll represented by 1 to 6 and a space separating each roll: ", req.Estimated-len(rolls)))
		if err != nil {
			return nil, err
		}
		more, err := entropy.ParseRolls(ans)
		if err != nil {
			fmt.Fprintf(out, "Invalid rolls: %v\n", err)
			continue
		}
		rolls = append(rolls, more...)
	}

	for {
		round, err := s.MixDice(rolls)
		var insufficient *entropy.InsufficientEntropyError
		if !errors.As(err, &insufficient) {
			if err == nil {
				fmt.Fprintf(out, "Dice rolls as bitstring: %s\n", round.Input.Entropy)
			}
			return round, err
		}

		ans, err := p.line(fmt.Sprintf("More entropy needed. %d rolls saved so far, %d more accepted rolls required. "+
			"Please enter more rolls: ", len(rolls), insufficient.Remaining()))
		if err != nil {
			return nil, err
		}
		more, err := entropy.ParseRolls(ans)
		if err != nil {
			fmt.Fprintf(out, "Invalid rolls: %v\n", err)
			continue
		}
		rolls = append(rolls, more...)
	}
}

func printWarnings(out io.Writer, ws bip39.Warnings) {
	for _, w := range ws {
		fmt.Fprintf(out, "WARNING: %s\n", w)
	}
}

func printRound(out io.Writer, r *session.Round) {
	fmt.Fprintln(out, "====")
	fmt.Fprintf(out, "old: %s %s\n", r.Previous.Hex, r.Previous.Mnemonic)
	fmt.Fprintf(out, "new: %s %s\n", r.Input.Hex, r.Input.Mnemonic)
	fmt.Fprintf(out, "xor: %s %s\n", r.Result.Hex, r.Result.Mnemonic)
	printWarnings(out, r.Warnings)
}

func printSummary(out io.Writer, rounds []session.Round) {
	if len(rounds) == 0 {
		return
	}
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Round", "Source", "Input", "Result"})
	for _, r := range rounds {
		table.Append([]string{strconv.Itoa(r.Number), r.Kind.String(), r.Input.Hex, r.Result.Hex})
	}
	table.Render()
}
