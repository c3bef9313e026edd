package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/dcrodman/icecrypt/internal/data"
	"github.com/dcrodman/icecrypt/internal/filecrypt"
	"github.com/dcrodman/icecrypt/internal/keyring"
)

func addCryptFlags(cmd *cobra.Command, opts *options) {
	addKeyFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.remainder, "remainder", "r", "", "Handling of a trailing partial block: passthrough, zero or drop")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Number of files processed concurrently")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record the jobs in the history database")
}

func newCryptCmd(opts *options, dir filecrypt.Direction) *cobra.Command {
	cmd := &cobra.Command{
		Use:   dir.String() + " [files...]",
		Short: cases.Title(language.English).String(dir.String()) + "s files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runJobs(cmd, args, func(path string, ext filecrypt.Extensions) filecrypt.Job {
				return filecrypt.NewJob(path, dir, ext)
			})
		},
	}
	addCryptFlags(cmd, opts)
	return cmd
}

func newAutoCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auto [files...]",
		Short: "Encrypts plain files and decrypts everything else, by extension",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runJobs(cmd, args, filecrypt.AutoJob)
		},
	}
	addCryptFlags(cmd, opts)
	return cmd
}

type jobPlanner func(path string, ext filecrypt.Extensions) filecrypt.Job

func (o *options) runJobs(cmd *cobra.Command, paths []string, plan jobPlanner) error {
	cfg, logger, err := o.load(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	policy, err := filecrypt.ParseRemainderPolicy(cfg.Cipher.Remainder)
	if err != nil {
		return err
	}

	var db *gorm.DB
	if o.preset != "" || !o.noHistory {
		if db, err = o.openDB(cfg); err != nil {
			if o.preset != "" {
				return err
			}
			logger.Warnw("job history disabled", "error", err)
		} else {
			defer data.Close(db)
		}
	}

	key, strength, err := o.readKey(cmd, cfg, db)
	if err != nil {
		return err
	}
	if o.keys == nil {
		o.keys = keyring.New(cfg.Keyring.TTL)
	}

	ext := filecrypt.Extensions{Encrypted: cfg.Files.EncryptExtension, Plain: cfg.Files.PlainExtension}
	jobs := make([]filecrypt.Job, len(paths))
	for i, path := range paths {
		jobs[i] = plan(path, ext)
		jobs[i].Key, jobs[i].Strength = key, strength
	}

	processor := &filecrypt.Processor{
		Keys:      o.keys,
		Remainder: policy,
		Workers:   cfg.Files.Workers,
		Logger:    logger,
		Progress: func(job filecrypt.Job, done, total int64) {
			logger.Debugw("progress", "source", job.Source, "percent", fmt.Sprintf("%.1f", filecrypt.Percent(done, total)))
		},
	}
	if !o.noHistory {
		processor.DB = db
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := processor.Run(ctx, jobs)
	hits, misses := o.keys.Stats()
	logger.Debugw("key schedules", "cache_hits", hits, "cache_misses", misses, "cached", o.keys.Len())
	printResults(cmd.OutOrStdout(), results)
	return filecrypt.Failed(results)
}

func printResults(w io.Writer, results []filecrypt.Result) {
	title := cases.Title(language.English)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s failed: %s (%v)\n", title.String(r.Direction.String()), r.Source, r.Err)
			continue
		}
		fmt.Fprintf(w, "%sed %s -> %s (%d bytes, %d blocks)\n",
			title.String(r.Direction.String()), r.Source, r.Destination, r.Bytes, r.Blocks)
	}
}
