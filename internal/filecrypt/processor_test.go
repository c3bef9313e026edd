package filecrypt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dcrodman/icecrypt/internal/data"
	"github.com/dcrodman/icecrypt/internal/ice"
	"github.com/dcrodman/icecrypt/internal/keyring"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("error writing test file: %v", err)
	}
}

func setUpDatabase(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("error initializing test database: %s", err)
	}
	// Workers record jobs concurrently and SQLite has a single writer.
	database, err := db.DB()
	if err != nil {
		t.Fatalf("error getting test database connection: %s", err)
	}
	database.SetMaxOpenConns(1)

	if err := data.Migrate(db); err != nil {
		t.Fatalf("error auto migrating db: %s", err)
	}
	return db
}

func TestProcessor_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	contents := map[string]string{
		"weapon_ak47.txt": "WeaponData { \"printname\" \"AK-47\" }",
		"weapon_awp.txt":  "WeaponData { \"printname\" \"AWP\" } // tail",
		"empty.txt":       "",
	}
	var jobs []Job
	for name, body := range contents {
		path := filepath.Join(dir, name)
		writeFile(t, path, body)
		jobs = append(jobs, AutoJob(path, testExtensions))
	}

	db := setUpDatabase(t)
	var mu sync.Mutex
	progressed := make(map[string]bool)
	p := &Processor{
		Cipher:    newTestCipher(t),
		Remainder: Passthrough,
		Workers:   2,
		Logger:    zap.NewNop().Sugar(),
		DB:        db,
		Progress: func(job Job, done, total int64) {
			mu.Lock()
			progressed[job.Source] = true
			mu.Unlock()
		},
	}

	results := p.Run(context.Background(), jobs)
	if err := Failed(results); err != nil {
		t.Fatalf("encrypting files failed: %v", err)
	}
	for i, r := range results {
		if r.Source != jobs[i].Source {
			t.Errorf("result %d is for %s, want %s", i, r.Source, jobs[i].Source)
		}
		if _, err := os.Stat(r.Destination); err != nil {
			t.Errorf("expected %s to exist: %v", r.Destination, err)
		}
	}
	if !progressed[filepath.Join(dir, "weapon_ak47.txt")] {
		t.Errorf("expected progress to be reported")
	}

	// Remove the plain files and decrypt them back from the .ctx outputs.
	var decryptJobs []Job
	for name := range contents {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			t.Fatalf("error removing plain file: %v", err)
		}
		decryptJobs = append(decryptJobs, AutoJob(OutputPath(path, ".ctx"), testExtensions))
	}
	if err := Failed(p.Run(context.Background(), decryptJobs)); err != nil {
		t.Fatalf("decrypting files failed: %v", err)
	}
	for name, body := range contents {
		got, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("error reading decrypted file: %v", err)
		}
		if diff := cmp.Diff(body, string(got)); diff != "" {
			t.Errorf("%s did not survive the round trip; diff:\n%s", name, diff)
		}
	}

	jobsRecorded, err := data.RecentJobs(db, 100)
	if err != nil {
		t.Fatalf("RecentJobs() returned an unexpected error: %v", err)
	}
	if len(jobsRecorded) != 2*len(contents) {
		t.Fatalf("expected %d recorded jobs, got %d", 2*len(contents), len(jobsRecorded))
	}
	for _, j := range jobsRecorded {
		if j.Status != data.JobFinished || j.FinishedAt == nil {
			t.Errorf("expected job for %s to be finished, got %+v", j.Source, j)
		}
	}
}

func TestProcessor_Failures(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "exists.txt")
	writeFile(t, existing, "some data")

	db := setUpDatabase(t)
	p := &Processor{Cipher: newTestCipher(t), Workers: 4, DB: db}
	results := p.Run(context.Background(), []Job{
		NewJob(filepath.Join(dir, "missing.txt"), Encrypt, testExtensions),
		{Source: existing, Destination: existing, Direction: Encrypt},
		NewJob(dir, Encrypt, testExtensions),
	})

	for _, r := range results {
		if r.Err == nil {
			t.Errorf("expected %s to fail", r.Source)
		}
	}
	if Failed(results) == nil {
		t.Errorf("expected Failed() to report the errors")
	}

	got, err := os.ReadFile(existing)
	if err != nil || string(got) != "some data" {
		t.Errorf("expected input to be left untouched, got %q, %v", got, err)
	}

	jobs, _ := data.RecentJobs(db, 10)
	for _, j := range jobs {
		if j.Status != data.JobFailed || j.Error == "" {
			t.Errorf("expected job for %s to be recorded as failed, got %+v", j.Source, j)
		}
	}
}

func TestProcessor_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "data")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &Processor{Cipher: newTestCipher(t)}
	results := p.Run(ctx, []Job{AutoJob(path, testExtensions)})
	if results[0].Err == nil {
		t.Errorf("expected a cancelled job to fail")
	}
	if _, err := os.Stat(OutputPath(path, ".ctx")); !os.IsNotExist(err) {
		t.Errorf("expected no output for a cancelled job, stat error: %v", err)
	}
}

func TestProcessor_JobKeysShareSchedules(t *testing.T) {
	dir := t.TempDir()
	var jobs []Job
	for i, strength := range []int{0, 0, 0, 2} {
		path := filepath.Join(dir, fmt.Sprintf("file%d.txt", i))
		writeFile(t, path, "sixteen byte msg")

		job := NewJob(path, Encrypt, testExtensions)
		job.Key, job.Strength = []byte("x9Ke0BY7"), strength
		if strength == 2 {
			job.Key = []byte("0123456789abcdef")
		}
		jobs = append(jobs, job)
	}

	keys := keyring.New(time.Minute)
	db := setUpDatabase(t)
	// A single worker keeps the lookups in job order.
	p := &Processor{Keys: keys, Workers: 1, DB: db}
	if err := Failed(p.Run(context.Background(), jobs)); err != nil {
		t.Fatalf("encrypting files failed: %v", err)
	}

	if hits, misses := keys.Stats(); hits != 2 || misses != 2 {
		t.Errorf("expected 2 cache hits and 2 misses, got %d and %d", hits, misses)
	}
	if keys.Len() != 2 {
		t.Errorf("expected 2 cached ciphers, got %d", keys.Len())
	}

	want, err := newTestCipher(t).Encrypt([]byte("sixteen "))
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "file1.ctx"))
	if err != nil {
		t.Fatalf("error reading encrypted file: %v", err)
	}
	if diff := cmp.Diff(want, got[:8]); diff != "" {
		t.Errorf("encrypted block mismatch (-want +got):\n%s", diff)
	}

	recorded, err := data.RecentJobs(db, 10)
	if err != nil {
		t.Fatalf("RecentJobs() returned an unexpected error: %v", err)
	}
	var strengths []int
	for _, j := range recorded {
		strengths = append(strengths, j.Strength)
	}
	if diff := cmp.Diff([]int{2, 0, 0, 0}, strengths); diff != "" {
		t.Errorf("recorded strengths mismatch (-want +got):\n%s", diff)
	}

	bad := NewJob(filepath.Join(dir, "file0.txt"), Encrypt, testExtensions)
	bad.Key = []byte("short")
	results := p.Run(context.Background(), []Job{bad})
	if !errors.Is(results[0].Err, ice.ErrInvalidKeyLength) {
		t.Errorf("expected ErrInvalidKeyLength, got %v", results[0].Err)
	}

	results = (&Processor{}).Run(context.Background(), []Job{NewJob(filepath.Join(dir, "file0.txt"), Encrypt, testExtensions)})
	if results[0].Err == nil {
		t.Errorf("expected a job without a cipher to fail")
	}
}
