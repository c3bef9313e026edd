package main

import (
	"errors"
	"fmt"

	"github.com/jroimartin/gocui"
	"github.com/spf13/cobra"

	"github.com/dcrodman/icecrypt/internal/data"
	"github.com/dcrodman/icecrypt/internal/filecrypt"
	"github.com/dcrodman/icecrypt/internal/ice"
)

func newMenuCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu [files...]",
		Short: "Picks a preset key from a menu and runs auto on the files, or prints the key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			db, err := opts.openDB(cfg)
			if err != nil {
				return err
			}
			presets, err := data.FindPresets(db)
			_ = data.Close(db)
			if err != nil {
				return fmt.Errorf("error listing presets: %w", err)
			} else if len(presets) == 0 {
				return errors.New("no presets stored")
			}

			chosen, err := pickPreset(presets)
			if err != nil || chosen == nil {
				return err
			}

			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), chosen.Key)
				return nil
			}
			opts.preset = chosen.Name
			return opts.runJobs(cmd, args, filecrypt.AutoJob)
		},
	}
	addCryptFlags(cmd, opts)
	return cmd
}

type presetMenu struct {
	presets []data.Preset
	chosen  *data.Preset
}

// pickPreset shows the presets and returns the one picked with Enter, or nil
// if the menu was closed without a choice.
func pickPreset(presets []data.Preset) (*data.Preset, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}
	defer g.Close()

	g.Cursor = true

	m := &presetMenu{presets: presets}
	g.SetManagerFunc(m.layout)

	if err := m.keybindings(g); err != nil {
		return nil, err
	}

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return nil, err
	}
	return m.chosen, nil
}

func (m *presetMenu) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if v, err := g.SetView("presets", 0, 0, 30, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}

		v.Title = "Presets"
		v.Highlight = true
		v.SelBgColor = gocui.ColorGreen
		v.SelFgColor = gocui.ColorBlack

		for _, p := range m.presets {
			fmt.Fprintln(v, p.Name)
		}

		if _, err := g.SetCurrentView("presets"); err != nil {
			return err
		}
	}
	details, err := g.SetView("details", 30, 0, maxX-1, maxY-1)
	if err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		details.Title = "Key"
		details.Wrap = true
	}

	list, err := g.View("presets")
	if err != nil {
		return err
	}
	_, y := list.Cursor()
	details.Clear()
	if p := m.at(y); p != nil {
		fmt.Fprint(details, describePreset(p))
	}
	return nil
}

// at returns the preset on line y of the list, or nil.
func (m *presetMenu) at(y int) *data.Preset {
	if y < 0 || y >= len(m.presets) {
		return nil
	}
	return &m.presets[y]
}

func describePreset(p *data.Preset) string {
	c := ice.New(p.Strength)
	return fmt.Sprintf("%s\n\nkey:      %s\nstrength: %d (%d rounds, %d byte key)\n\nEnter to choose, q to quit",
		p.Name, p.Key, p.Strength, c.Rounds(), c.KeySize())
}

func (m *presetMenu) cursorDown(_ *gocui.Gui, v *gocui.View) error {
	if v != nil {
		cx, cy := v.Cursor()

		cy += 1
		if cy >= len(m.presets) {
			cy = 0
		}

		if err := v.SetCursor(cx, cy); err != nil {
			return err
		}
	}
	return nil
}

func (m *presetMenu) cursorUp(_ *gocui.Gui, v *gocui.View) error {
	if v != nil {
		cx, cy := v.Cursor()

		cy -= 1
		if cy < 0 {
			cy = len(m.presets) - 1
		}

		if err := v.SetCursor(cx, cy); err != nil {
			return err
		}
	}
	return nil
}

func (m *presetMenu) choose(_ *gocui.Gui, v *gocui.View) error {
	_, y := v.Cursor()
	m.chosen = m.at(y)
	return gocui.ErrQuit
}

func quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func (m *presetMenu) keybindings(g *gocui.Gui) error {
	if err := g.SetKeybinding("presets", gocui.KeyArrowDown, gocui.ModNone, m.cursorDown); err != nil {
		return err
	}
	if err := g.SetKeybinding("presets", gocui.KeyArrowUp, gocui.ModNone, m.cursorUp); err != nil {
		return err
	}
	if err := g.SetKeybinding("presets", gocui.KeyEnter, gocui.ModNone, m.choose); err != nil {
		return err
	}
	if err := g.SetKeybinding("presets", 'q', gocui.ModNone, quit); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		return err
	}
	return nil
}
