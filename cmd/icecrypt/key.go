package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/dcrodman/icecrypt/internal/core"
	"github.com/dcrodman/icecrypt/internal/data"
	"github.com/dcrodman/icecrypt/internal/ice"
	"github.com/dcrodman/icecrypt/internal/keygen"
)

func addKeyFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVarP(&opts.key, "key", "k", "", `Key text, or "hex:" followed by the key in hex (prompted for if omitted)`)
	cmd.Flags().StringVarP(&opts.preset, "preset", "p", "", "Name of a stored preset key")
}

// readKey returns the key material and the strength to use it with. The key
// comes from --preset, --key or a prompt, in that order. A preset carries its
// own strength unless --strength was given.
func (o *options) readKey(cmd *cobra.Command, cfg *core.Config, db *gorm.DB) ([]byte, int, error) {
	strength := cfg.Cipher.Strength

	var text string
	switch {
	case o.preset != "":
		preset, err := data.FindPresetByName(db, o.preset)
		if err != nil {
			return nil, 0, fmt.Errorf("error finding preset: %w", err)
		} else if preset == nil {
			return nil, 0, fmt.Errorf("no preset named %q", o.preset)
		}
		text = preset.Key
		if !cmd.Flags().Changed("strength") {
			strength = preset.Strength
		}
	case o.key != "":
		text = o.key
	default:
		var err error
		text, err = promptKey(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return nil, 0, fmt.Errorf("error reading key: %w", err)
		}
	}

	key, err := keygen.Parse(text)
	if err != nil {
		return nil, 0, err
	}
	if want := ice.New(strength).KeySize(); len(key) != want {
		return nil, 0, fmt.Errorf("strength %d requires a %d byte key, got %d bytes: %w",
			strength, want, len(key), ice.ErrInvalidKeyLength)
	}
	return key, strength, nil
}

// promptKey reads a key from in, without echo when in is a terminal.
func promptKey(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "ICE key: ")
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		return string(b), err
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
