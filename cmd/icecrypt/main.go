// The icecrypt command encrypts and decrypts files with the ICE block cipher.
// Its defaults follow the drag-and-drop tool it replaces: Thin-ICE, .txt
// files are encrypted to .ctx and anything else is decrypted back to .txt.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dcrodman/icecrypt/internal/core"
	"github.com/dcrodman/icecrypt/internal/data"
	"github.com/dcrodman/icecrypt/internal/filecrypt"
	"github.com/dcrodman/icecrypt/internal/keyring"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "icecrypt error:", err)
		os.Exit(1)
	}
}

// options holds the flags shared by the subcommands.
type options struct {
	configDir string
	strength  int
	debug     bool

	key       string
	preset    string
	remainder string
	workers   int
	noHistory bool

	// Shared by every job run through these options, created on first use
	// with the configured TTL.
	keys *keyring.Keyring
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithOptions(&options{})
}

func newRootCmdWithOptions(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "icecrypt",
		Short:         "Encrypts and decrypts files with the ICE block cipher",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configDir, "config", "c", "", "Path to the directory containing config.yaml")
	rootCmd.PersistentFlags().IntVarP(&opts.strength, "strength", "s", 0, "ICE level, 0 for Thin-ICE (default from cipher.strength)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging and SQL query logging")

	rootCmd.AddCommand(
		newCryptCmd(opts, filecrypt.Encrypt),
		newCryptCmd(opts, filecrypt.Decrypt),
		newAutoCmd(opts),
		newKeygenCmd(opts),
		newPresetCmd(opts),
		newHistoryCmd(opts),
		newMenuCmd(opts),
	)
	return rootCmd
}

// load reads the configuration and applies any flags that override it.
func (o *options) load(cmd *cobra.Command) (*core.Config, *zap.SugaredLogger, error) {
	cfg, err := core.LoadConfig(o.configDir)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("strength") {
		cfg.Cipher.Strength = o.strength
	}
	if flags.Changed("remainder") {
		cfg.Cipher.Remainder = o.remainder
	}
	if flags.Changed("workers") {
		cfg.Files.Workers = o.workers
	}
	if o.debug {
		cfg.Logging.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := core.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openDB connects to the configured database and makes sure the default
// presets exist.
func (o *options) openDB(cfg *core.Config) (*gorm.DB, error) {
	db, err := data.Open(cfg, o.debug)
	if err != nil {
		return nil, err
	}
	if err := data.SeedPresets(db); err != nil {
		_ = data.Close(db)
		return nil, fmt.Errorf("error seeding presets: %w", err)
	}
	return db, nil
}
