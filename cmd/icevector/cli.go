package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"github.com/dcrodman/icecrypt/internal/ice"
	"github.com/dcrodman/icecrypt/internal/keygen"
)

func cipherFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "strength",
			Aliases: []string{"s"},
			Usage:   "ICE level, 0 for Thin-ICE",
			EnvVars: []string{"ICEVECTOR_STRENGTH"},
		},
		&cli.StringFlag{
			Name:     "key",
			Aliases:  []string{"k"},
			Usage:    `Key in hex, or "text:" followed by the key text`,
			EnvVars:  []string{"ICEVECTOR_KEY"},
			Required: true,
		},
	}
}

// newCipher keys a cipher from the --strength and --key flags. Keys are hex
// unless prefixed with "text:".
func newCipher(cc *cli.Context) (*ice.Cipher, error) {
	text := cc.String("key")
	if rest, ok := strings.CutPrefix(text, "text:"); ok {
		text = rest
	} else if !strings.HasPrefix(strings.ToLower(text), "hex:") {
		text = "hex:" + text
	}
	key, err := keygen.Parse(text)
	if err != nil {
		return nil, err
	}
	return ice.New(cc.Int("strength")).SetKey(key)
}

func blockCommand(name, usage string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "[hex blocks...]",
		Flags:     cipherFlags(),
		Action: func(cc *cli.Context) error {
			if cc.NArg() == 0 {
				return fmt.Errorf("%s: at least one block is required", name)
			}
			c, err := newCipher(cc)
			if err != nil {
				return err
			}

			apply := c.Encrypt
			if name == "decrypt" {
				apply = c.Decrypt
			}
			for _, arg := range cc.Args().Slice() {
				out, err := applyBlocks(apply, arg)
				if err != nil {
					return err
				}
				fmt.Fprintln(cc.App.Writer, out)
			}
			return nil
		},
	}
}

// applyBlocks runs every block of the hex string arg through fn.
func applyBlocks(fn func([]byte) ([]byte, error), arg string) (string, error) {
	in, err := hex.DecodeString(arg)
	if err != nil {
		return "", fmt.Errorf("invalid block %q: %w", arg, err)
	}
	if len(in) == 0 || len(in)%ice.BlockSize != 0 {
		return "", fmt.Errorf("invalid block %q: %w", arg, ice.BlockSizeError(len(in)))
	}

	out := make([]byte, 0, len(in))
	for i := 0; i < len(in); i += ice.BlockSize {
		b, err := fn(in[i : i+ice.BlockSize])
		if err != nil {
			return "", err
		}
		out = append(out, b...)
	}
	return hex.EncodeToString(out), nil
}

func scheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Prints the subkeys of every round",
		Flags: append(cipherFlags(), &cli.BoolFlag{
			Name:  "dump",
			Usage: "Dump the schedule with go-spew instead of a table",
		}),
		Action: func(cc *cli.Context) error {
			c, err := newCipher(cc)
			if err != nil {
				return err
			}

			w := cc.App.Writer
			schedule := c.Schedule()
			if cc.Bool("dump") {
				cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
				cfg.Fdump(w, schedule)
				return nil
			}

			fmt.Fprintf(w, "strength %d, %d rounds, %d byte key\n", c.Strength(), c.Rounds(), c.KeySize())
			for i, sk := range schedule {
				fmt.Fprintf(w, "%3d: %05x %05x %05x\n", i, sk[0], sk[1], sk[2])
			}
			return nil
		},
	}
}
