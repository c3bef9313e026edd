package data

import (
	"errors"
	"testing"

	"github.com/go-test/deep"
)

func TestJobLifecycle(t *testing.T) {
	db := setUpDatabase(t)

	ok := &Job{Source: "a.txt", Destination: "a.ctx", Direction: "encrypt", Strength: 0, Remainder: "passthrough"}
	if err := CreateJob(db, ok); err != nil {
		t.Fatalf("CreateJob() returned an unexpected error: %v", err)
	}
	if ok.ID == 0 || ok.Status != JobRunning || ok.StartedAt.IsZero() {
		t.Fatalf("CreateJob() did not initialize the job: %+v", ok)
	}

	failed := &Job{Source: "b.ctx", Destination: "b.txt", Direction: "decrypt"}
	if err := CreateJob(db, failed); err != nil {
		t.Fatalf("CreateJob() returned an unexpected error: %v", err)
	}

	if err := FinishJob(db, ok.ID, 17, 2, 1, nil); err != nil {
		t.Fatalf("FinishJob() returned an unexpected error: %v", err)
	}
	if err := FinishJob(db, failed.ID, 0, 0, 0, errors.New("permission denied")); err != nil {
		t.Fatalf("FinishJob() returned an unexpected error: %v", err)
	}

	jobs, err := RecentJobs(db, 10)
	if err != nil {
		t.Fatalf("RecentJobs() returned an unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	type summary struct {
		Source, Status, Error string
		Bytes, Blocks         int64
		RemainderBytes        int
		Finished              bool
	}
	got := make([]summary, len(jobs))
	for i, j := range jobs {
		got[i] = summary{j.Source, j.Status, j.Error, j.Bytes, j.Blocks, j.RemainderBytes, j.FinishedAt != nil}
	}
	want := []summary{
		{"b.ctx", JobFailed, "permission denied", 0, 0, 0, true},
		{"a.txt", JobFinished, "", 17, 2, 1, true},
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Errorf("jobs did not match expected: %v", diff)
	}

	limited, _ := RecentJobs(db, 1)
	if len(limited) != 1 || limited[0].ID != failed.ID {
		t.Errorf("RecentJobs(1) = %+v, want only the newest job", limited)
	}
}
