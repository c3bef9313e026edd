package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dcrodman/icecrypt/internal/core"
	"github.com/dcrodman/icecrypt/internal/ice"
	"github.com/dcrodman/icecrypt/internal/keygen"
)

func newKeygenCmd(opts *options) *cobra.Command {
	var (
		count       int
		withSymbols bool
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generates random keys sized for the configured strength",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := core.LoadConfig(opts.configDir)
			if err != nil {
				return err
			}
			strength := cfg.Cipher.Strength
			if cmd.Flags().Changed("strength") {
				strength = opts.strength
			}

			size := ice.New(strength).KeySize()
			for i := 0; i < count; i++ {
				key, err := keygen.Generate(size, withSymbols)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of keys to generate")
	cmd.Flags().BoolVar(&withSymbols, "symbols", false, "Include punctuation in the keys")
	return cmd
}
