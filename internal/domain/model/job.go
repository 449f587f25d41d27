package model

import "time"

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is one unit of async scenario-generation work, addressed by an opaque id.
// The store owns every record; other components only see snapshot copies.
type Job struct {
	ID          string
	Status      JobStatus
	Text        string
	Error       string
	TokensUsed  int
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

func NewJob(id string) Job {
	return Job{
		ID:        id,
		Status:    JobStatusQueued,
		CreatedAt: time.Now(),
	}
}

// Terminal reports whether the job reached a final state.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// MergeText replaces the accumulated buffer only with a strictly longer
// revision. A polling client must never observe a length regression.
func (j *Job) MergeText(revision string) {
	if len(revision) > len(j.Text) {
		j.Text = revision
	}
}

// SetTokensUsed records the usage report at most once.
func (j *Job) SetTokensUsed(n int) {
	if j.TokensUsed == 0 && n > 0 {
		j.TokensUsed = n
	}
}
