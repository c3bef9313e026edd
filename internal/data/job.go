package data

import (
	"time"

	"gorm.io/gorm"
)

// Job statuses.
const (
	JobRunning  = "running"
	JobFinished = "finished"
	JobFailed   = "failed"
)

// Job records one file run through the cipher.
type Job struct {
	ID             uint64 `gorm:"primaryKey"`
	Source         string `gorm:"not null"`
	Destination    string `gorm:"not null"`
	Direction      string `gorm:"not null"`
	Strength       int
	Remainder      string
	Bytes          int64
	Blocks         int64
	RemainderBytes int
	Status         string `gorm:"index; not null"`
	Error          string
	StartedAt      time.Time
	FinishedAt     *time.Time
}

// CreateJob inserts job as running. gorm assigns the ID back to job.
func CreateJob(db *gorm.DB, job *Job) error {
	job.Status = JobRunning
	if job.StartedAt.IsZero() {
		job.StartedAt = time.Now()
	}
	return db.Create(job).Error
}

// FinishJob stores the outcome of the job with the given ID.
func FinishJob(db *gorm.DB, id uint64, bytes, blocks int64, remainder int, jobErr error) error {
	now := time.Now()
	updates := map[string]interface{}{
		"bytes":           bytes,
		"blocks":          blocks,
		"remainder_bytes": remainder,
		"status":          JobFinished,
		"error":           "",
		"finished_at":     now,
	}
	if jobErr != nil {
		updates["status"] = JobFailed
		updates["error"] = jobErr.Error()
	}
	return db.Model(&Job{}).Where("id = ?", id).Updates(updates).Error
}

// RecentJobs returns up to limit jobs, newest first.
func RecentJobs(db *gorm.DB, limit int) ([]Job, error) {
	var jobs []Job
	if err := db.Order("id desc").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
