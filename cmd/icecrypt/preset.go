package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dcrodman/icecrypt/internal/data"
	"github.com/dcrodman/icecrypt/internal/ice"
	"github.com/dcrodman/icecrypt/internal/keygen"
)

func newPresetCmd(opts *options) *cobra.Command {
	presetCmd := &cobra.Command{
		Use:   "preset",
		Short: "Manages stored preset keys",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Lists the stored presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			db, err := opts.openDB(cfg)
			if err != nil {
				return err
			}
			defer data.Close(db)

			presets, err := data.FindPresets(db)
			if err != nil {
				return fmt.Errorf("error listing presets: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTRENGTH\tKEY")
			for _, p := range presets {
				fmt.Fprintf(w, "%s\t%d\t%s\n", p.Name, p.Strength, p.Key)
			}
			return w.Flush()
		},
	}

	addCmd := &cobra.Command{
		Use:   "add [name] [key]",
		Short: "Stores a new preset key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			name, text := args[0], args[1]

			key, err := keygen.Parse(text)
			if err != nil {
				return err
			}
			strength := cfg.Cipher.Strength
			if want := ice.New(strength).KeySize(); len(key) != want {
				return fmt.Errorf("strength %d requires a %d byte key, got %d bytes", strength, want, len(key))
			}

			db, err := opts.openDB(cfg)
			if err != nil {
				return err
			}
			defer data.Close(db)

			if existing, err := data.FindPresetByName(db, name); err != nil {
				return fmt.Errorf("error finding preset: %w", err)
			} else if existing != nil {
				return fmt.Errorf("preset %q already exists", name)
			}

			if err := data.CreatePreset(db, &data.Preset{Name: name, Key: text, Strength: strength}); err != nil {
				return fmt.Errorf("error creating preset: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created preset %q\n", name)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [name]",
		Short: "Deletes a stored preset key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			db, err := opts.openDB(cfg)
			if err != nil {
				return err
			}
			defer data.Close(db)

			deleted, err := data.DeletePreset(db, args[0])
			if err != nil {
				return fmt.Errorf("error deleting preset: %w", err)
			} else if !deleted {
				return fmt.Errorf("no preset named %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted preset %q\n", args[0])
			return nil
		},
	}

	presetCmd.AddCommand(listCmd, addCmd, deleteCmd)
	return presetCmd
}
