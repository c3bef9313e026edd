package filecrypt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dcrodman/icecrypt/internal/data"
	"github.com/dcrodman/icecrypt/internal/ice"
	"github.com/dcrodman/icecrypt/internal/keyring"
)

// Job is a single file to run through the cipher.
type Job struct {
	Source      string
	Destination string
	Direction   Direction

	// Optional. When Key is set the job is run with its own cipher of the
	// given strength instead of Processor.Cipher.
	Key      []byte
	Strength int
}

// NewJob returns a Job writing next to path with the extension for dir.
func NewJob(path string, dir Direction, ext Extensions) Job {
	return Job{
		Source:      path,
		Destination: OutputPath(path, ext.For(dir)),
		Direction:   dir,
	}
}

// AutoJob is NewJob with the direction picked from the file's extension.
func AutoJob(path string, ext Extensions) Job {
	return NewJob(path, ext.DirectionFor(path), ext)
}

// Result is the outcome of one Job.
type Result struct {
	Job
	Stats
	Err error
}

// Processor runs jobs through a cipher using a bounded number of workers.
type Processor struct {
	// Used for jobs that carry no key of their own.
	Cipher BlockCipher
	// Optional. Schedules for jobs that carry a key are looked up here, so
	// jobs sharing a key and strength share one cipher.
	Keys      *keyring.Keyring
	Remainder RemainderPolicy
	// Number of files processed concurrently; values below 1 mean 1.
	Workers int
	Logger  *zap.SugaredLogger
	// Optional. When set, every job is recorded in the job history along
	// with its strength (Strength for jobs using Cipher).
	DB       *gorm.DB
	Strength int
	// Optional. Called from the worker goroutines.
	Progress func(job Job, done, total int64)
}

// Run processes every job and returns their results in the same order. Jobs
// not yet started when ctx is cancelled fail with the context's error.
func (p *Processor) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = p.process(ctx, jobs[i])
			}
		}()
	}

	for i := range jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results
}

func (p *Processor) logger() *zap.SugaredLogger {
	if p.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return p.Logger
}

func (p *Processor) process(ctx context.Context, job Job) Result {
	res := Result{Job: job}
	log := p.logger()
	start := time.Now()

	var recordID uint64
	if p.DB != nil {
		record := &data.Job{
			Source:      job.Source,
			Destination: job.Destination,
			Direction:   job.Direction.String(),
			Strength:    p.strengthOf(job),
			Remainder:   p.Remainder.String(),
		}
		if err := data.CreateJob(p.DB, record); err != nil {
			log.Warnw("error recording job", "source", job.Source, "error", err)
		} else {
			recordID = record.ID
		}
	}

	if err := ctx.Err(); err != nil {
		res.Err = err
	} else if c, err := p.cipherFor(job); err != nil {
		res.Err = err
	} else {
		res.Stats, res.Err = p.transformFile(ctx, job, c)
	}

	if recordID != 0 {
		if err := data.FinishJob(p.DB, recordID, res.Bytes, res.Blocks, res.Remainder, res.Err); err != nil {
			log.Warnw("error recording job result", "source", job.Source, "error", err)
		}
	}

	if res.Err != nil {
		log.Errorw("failed to "+job.Direction.String()+" file",
			"source", job.Source,
			"error", res.Err,
		)
		return res
	}
	log.Infow(job.Direction.String()+"ed file",
		"source", job.Source,
		"destination", job.Destination,
		"bytes", res.Bytes,
		"blocks", res.Blocks,
		"remainder", res.Remainder,
		"elapsed", time.Since(start),
	)
	return res
}

func (p *Processor) strengthOf(job Job) int {
	if job.Key != nil {
		return job.Strength
	}
	return p.Strength
}

func (p *Processor) cipherFor(job Job) (BlockCipher, error) {
	if job.Key == nil {
		if p.Cipher == nil {
			return nil, errors.New("no cipher configured for job")
		}
		return p.Cipher, nil
	}

	var (
		c   *ice.Cipher
		err error
	)
	if p.Keys != nil {
		c, err = p.Keys.Get(job.Strength, job.Key)
	} else {
		c, err = ice.New(job.Strength).SetKey(job.Key)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// transformFile writes the output to a temporary file beside the destination
// and only moves it into place once the whole input was processed.
func (p *Processor) transformFile(ctx context.Context, job Job, c BlockCipher) (Stats, error) {
	if samePath(job.Source, job.Destination) {
		return Stats{}, fmt.Errorf("refusing to overwrite %s with its own output", job.Source)
	}

	src, err := os.Open(job.Source)
	if err != nil {
		return Stats{}, fmt.Errorf("error opening input: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return Stats{}, fmt.Errorf("error reading input: %w", err)
	}
	if info.IsDir() {
		return Stats{}, fmt.Errorf("%s is a directory", job.Source)
	}

	tmp, err := os.CreateTemp(filepath.Dir(job.Destination), "."+filepath.Base(job.Destination)+".*")
	if err != nil {
		return Stats{}, fmt.Errorf("error creating output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return Stats{}, fmt.Errorf("error creating output: %w", err)
	}

	var progress ProgressFunc
	if p.Progress != nil {
		progress = func(done, total int64) { p.Progress(job, done, total) }
	}

	stats, err := Transform(ctx, tmp, src, c, job.Direction, p.Remainder, info.Size(), progress)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("error writing output: %w", cerr)
	}
	if err != nil {
		return stats, err
	}

	if err := os.Rename(tmp.Name(), job.Destination); err != nil {
		return stats, fmt.Errorf("error moving output into place: %w", err)
	}
	return stats, nil
}

func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, aerr := os.Stat(a)
	bi, berr := os.Stat(b)
	if aerr != nil || berr != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// Failed returns the results that carry an error, joined into one error.
func Failed(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Source, r.Err))
		}
	}
	return errors.Join(errs...)
}
