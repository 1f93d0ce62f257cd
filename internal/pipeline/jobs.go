package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/lessonfmt/internal/doctree"
	"github.com/dgallion1/lessonfmt/internal/question"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusImporting JobStatus = "importing"
	StatusParsing   JobStatus = "parsing"
	StatusRendering JobStatus = "rendering"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks the conversion of one uploaded file.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	Filename string `json:"filename"`
	Title    string `json:"title"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Sessions int              `json:"sessions"`
	Context  question.Context `json:"-"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	result   *Result
	errors   []string
}

// Progress counts what the job produced so far.
type Progress struct {
	Sessions int      `json:"sessions"`
	Steps    int      `json:"steps"`
	Tables   int      `json:"tables"`
	Errors   []string `json:"errors"`
}

// NewJob returns a queued job for an uploaded file.
func NewJob(filename, title string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        generateULID(),
		Filename:  filename,
		Title:     title,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetResult stores the rendered output and counts its contents.
func (j *Job) SetResult(res Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &res
	j.ContentHash = res.ContentHash
	if j.Title == "" {
		j.Title = res.Document.Title
	}
	j.Progress.Sessions = len(res.Document.Sessions)
	j.Progress.Steps, j.Progress.Tables = 0, 0
	for _, s := range res.Document.Sessions {
		for _, n := range s.Nodes {
			switch n.(type) {
			case *doctree.Step:
				j.Progress.Steps++
			case *doctree.Table:
				j.Progress.Tables++
			}
		}
	}
	j.UpdatedAt = time.Now()
}

// Result returns the rendered output, or nil until the job completes.
func (j *Job) Result() *Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseFile drops the upload once it has been imported.
func (j *Job) releaseFile() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Progress    Progress  `json:"progress"`
	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Title:    j.Title,
		Progress: Progress{
			Sessions: j.Progress.Sessions,
			Steps:    j.Progress.Steps,
			Tables:   j.Progress.Tables,
			Errors:   errs,
		},
		ContentHash: j.ContentHash,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}
