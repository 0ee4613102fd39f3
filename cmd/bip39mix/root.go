package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/bip39mix/config"
	"github.com/Klingon-tech/bip39mix/internal/entropy"
	"github.com/Klingon-tech/bip39mix/internal/log"
	"github.com/Klingon-tech/bip39mix/pkg/bip39"
)

// Version is set at build time.
var Version = "dev"

// app carries state shared by all subcommands once flags are parsed.
type app struct {
	flags  config.Flags
	cfg    *config.Config
	codec  *bip39.Codec
	source entropy.Source
}

// NewCmd builds the command tree.
func NewCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "bip39mix",
		Short:         "Mix OS and dice entropy into a BIP39 mnemonic",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	a.flags.Register(root.PersistentFlags())

	root.AddCommand(
		a.mixCmd(),
		a.encodeCmd(),
		a.decodeCmd(),
		a.diceCmd(),
		a.checkCmd(),
		a.configCmd(),
		versionCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.flags.MarkSet(cmd.Flags())

	cfg, err := config.Load(&a.flags)
	if err != nil {
		return err
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	a.cfg = cfg

	wl := bip39.EnglishWordlist()
	if cfg.Wordlist.Path != "" {
		wl, err = bip39.LoadWordlistFile(cfg.Wordlist.Path)
		if err != nil {
			return err
		}
		log.CLI.Debug().Str("path", cfg.Wordlist.Path).Msg("Loaded wordlist")
	}
	a.codec, err = bip39.NewCodec(wl)
	if err != nil {
		return err
	}
	if a.source == nil {
		a.source = entropy.NewSystemSource()
	}
	return nil
}

// english reports whether the built-in English list is in use.
func (a *app) english() bool {
	return a.codec.Wordlist() == bip39.EnglishWordlist()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "bip39mix %s\n", Version)
			return nil
		},
	}
}
