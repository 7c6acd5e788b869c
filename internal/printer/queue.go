package printer

import (
	"fmt"
	"image"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus is the lifecycle state of a print job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusPrinting  JobStatus = "printing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

const (
	maxAttempts = 3
	retryDelay  = 500 * time.Millisecond
)

// Job is one queued print request.
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	img   image.Image
	scale int
}

// ImagePrinter is the slice of the driver the queue needs.
type ImagePrinter interface {
	PrintImage(img image.Image, scale int) error
}

// NotifyFunc receives a snapshot of a job every time its status changes.
type NotifyFunc func(Job)

// Queue serializes print jobs onto a single printer, retrying transient
// failures before marking a job failed.
type Queue struct {
	printer ImagePrinter
	notify  NotifyFunc
	log     *zap.Logger

	mu   sync.Mutex
	jobs map[string]*Job

	pending chan string
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewQueue creates a queue and starts its worker. notify may be nil.
func NewQueue(printer ImagePrinter, notify NotifyFunc, log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}

	q := &Queue{
		printer: printer,
		notify:  notify,
		log:     log,
		jobs:    make(map[string]*Job),
		pending: make(chan string, 64),
		done:    make(chan struct{}),
	}

	q.wg.Add(1)
	go q.worker()

	return q
}

// Submit enqueues a bitmap for printing and returns the job snapshot.
func (q *Queue) Submit(img image.Image, scale int) (Job, error) {
	job := &Job{
		ID:        uuid.New().String(),
		Status:    StatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		img:       img,
		scale:     scale,
	}

	q.mu.Lock()
	q.jobs[job.ID] = job
	snapshot := *job
	q.mu.Unlock()

	select {
	case q.pending <- job.ID:
	default:
		q.mu.Lock()
		delete(q.jobs, job.ID)
		q.mu.Unlock()
		return Job{}, fmt.Errorf("print queue is full")
	}

	q.emit(snapshot)
	return snapshot, nil
}

// Job returns a snapshot of one job.
func (q *Queue) Job(id string) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Jobs returns snapshots of all known jobs, oldest first.
func (q *Queue) Jobs() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Job, 0, len(q.jobs))
	for _, job := range q.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ClearCompleted evicts terminal jobs so a long-running service does not
// accumulate them. Queued and printing jobs are kept. Returns the number
// of jobs removed.
func (q *Queue) ClearCompleted() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	removed := 0
	for id, job := range q.jobs {
		if job.Status == StatusCompleted || job.Status == StatusFailed {
			delete(q.jobs, id)
			removed++
		}
	}
	return removed
}

// Stop drains nothing; it stops the worker after the job in progress
// finishes. Queued jobs that never ran stay in the queued state.
func (q *Queue) Stop() {
	close(q.done)
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for {
		select {
		case <-q.done:
			return
		case id := <-q.pending:
			q.process(id)
		}
	}
}

func (q *Queue) process(id string) {
	q.setStatus(id, StatusPrinting, "")

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		q.mu.Lock()
		job, ok := q.jobs[id]
		if !ok {
			q.mu.Unlock()
			return
		}
		job.Attempts = attempt
		img, scale := job.img, job.scale
		q.mu.Unlock()

		lastErr = q.printer.PrintImage(img, scale)
		if lastErr == nil {
			q.setStatus(id, StatusCompleted, "")
			return
		}

		q.log.Warn("print attempt failed",
			zap.String("job", id),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		select {
		case <-q.done:
			q.setStatus(id, StatusFailed, lastErr.Error())
			return
		case <-time.After(retryDelay):
		}
	}

	q.setStatus(id, StatusFailed, lastErr.Error())
}

func (q *Queue) setStatus(id string, status JobStatus, errMsg string) {
	q.mu.Lock()
	job, ok := q.jobs[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	job.Status = status
	job.Error = errMsg
	job.UpdatedAt = time.Now()
	if status == StatusCompleted || status == StatusFailed {
		// The bitmap is no longer needed once the job is terminal.
		job.img = nil
	}
	snapshot := *job
	q.mu.Unlock()

	q.emit(snapshot)
}

func (q *Queue) emit(job Job) {
	if q.notify != nil {
		q.notify(job)
	}
}
