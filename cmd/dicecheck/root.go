package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Klingon-tech/bip39mix/config"
	"github.com/Klingon-tech/bip39mix/internal/entropy"
	"github.com/Klingon-tech/bip39mix/internal/log"
	"github.com/Klingon-tech/bip39mix/internal/stats"
)

const (
	flagSkipFrequency  = "skip-frequency"
	flagSkipExhaustive = "skip-exhaustive"
	flagPositions      = "positions"
)

var errBiasDetected = errors.New("bias detected")

// NewCmd builds the harness command.
func NewCmd() *cobra.Command {
	var flags config.Flags

	cmd := &cobra.Command{
		Use:           "dicecheck",
		Short:         "Check the dice-to-bits conversion for bias",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags.MarkSet(cmd.Flags())
			cfg, err := config.Load(&flags)
			if err != nil {
				return err
			}
			if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			return run(cmd, cfg)
		},
	}
	flags.Register(cmd.Flags())
	flags.RegisterHarness(cmd.Flags())
	cmd.Flags().Bool(flagSkipFrequency, false, "Skip test 1")
	cmd.Flags().Bool(flagSkipExhaustive, false, "Skip test 2")
	cmd.Flags().Bool(flagPositions, false, "Print counts for every bit position in test 1")
	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	skipFrequency, _ := cmd.Flags().GetBool(flagSkipFrequency)
	skipExhaustive, _ := cmd.Flags().GetBool(flagSkipExhaustive)
	positions, _ := cmd.Flags().GetBool(flagPositions)

	failed := false
	if !skipFrequency {
		var src entropy.Source = entropy.NewSystemSource()
		if cfg.Harness.Source == config.SourceDice {
			src = stats.NewDiceSource(nil)
		}
		h := cfg.Harness
		fmt.Fprintf(out, "Test #1: Checking %s bit generation by generating %d bits %d times...\n",
			h.Source, h.Bits, h.Iterations)

		report, err := stats.FrequencyTest(cmd.Context(), src, h.Bits, h.Iterations, h.Tolerance)
		if err != nil {
			return err
		}
		printFrequency(out, report, positions)
		if ds, ok := src.(*stats.DiceSource); ok && ds.Extended > 0 {
			fmt.Fprintf(out, "Note: %d roll sequences needed extra rolls.\n", ds.Extended)
		}
		failed = failed || !report.Passed()
	}

	if !skipExhaustive {
		h := cfg.Harness
		fmt.Fprintf(out, "Test #2: Checking for uniformity of bits for bit lengths of 2 to %d and between 1 and %d rolls...\n",
			h.MaxBits, h.MaxRolls)

		report, err := stats.ExhaustiveUniformity(cmd.Context(), h.MaxBits, h.MaxRolls)
		if err != nil {
			return err
		}
		printUniformity(out, report)
		failed = failed || !report.Passed()
	}

	if failed {
		return errBiasDetected
	}
	return nil
}

func ratio(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func positionRow(p stats.Position) []string {
	return []string{
		strconv.Itoa(p.Index),
		strconv.Itoa(p.Zeros),
		ratio(p.ZeroRatio()),
		strconv.Itoa(p.Ones),
		ratio(p.OneRatio()),
	}
}

func printFrequency(out io.Writer, r *stats.FrequencyReport, all bool) {
	rows := r.Failures
	if all {
		rows = r.Positions
	}
	if len(rows) > 0 {
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Index", "Zeros", "Zero %", "Ones", "One %"})
		for _, p := range rows {
			table.Append(positionRow(p))
		}
		table.Render()
	}

	if r.Passed() {
		fmt.Fprintf(out, "Test #1: Passed. Worst index was: %d (%s)\n", r.Worst, ratio(r.WorstRatio))
		return
	}
	fmt.Fprintf(out, "Test #1: Failed. %d positions outside %s of 0.5\n", len(r.Failures), ratio(r.Tolerance))
}

func printUniformity(out io.Writer, r *stats.UniformityReport) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Bits", "Rolls", "Sequences", "Successes", "Uniform"})
	for _, c := range r.Cells {
		table.Append([]string{
			strconv.Itoa(c.Bits),
			strconv.Itoa(c.Rolls),
			strconv.Itoa(c.Sequences),
			strconv.Itoa(c.Successes),
			strconv.FormatBool(c.Uniform()),
		})
	}
	table.SetFooter([]string{"", "", "", "Failures", strconv.Itoa(len(r.Failures))})
	table.Render()

	if r.Passed() {
		fmt.Fprintln(out, "Test #2: Passed. No failures.")
		return
	}
	fmt.Fprintln(out, "Test #2: Failed:")
	for _, c := range r.Failures {
		fmt.Fprintf(out, "Failure for %d bits and %d rolls: bit results not uniform: %v != %v\n",
			c.Bits, c.Rolls, c.Zeros, c.Ones)
	}
}
