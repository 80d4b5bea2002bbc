// Package engine coordinates fetch jobs: a bounded-concurrency queue,
// progress fan-in for the UI, and history bookkeeping.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/fget/internal/fetch"
	"github.com/NamanBalaji/fget/internal/history"
	"github.com/NamanBalaji/fget/internal/logger"
	"github.com/NamanBalaji/fget/internal/progress"
	"github.com/NamanBalaji/fget/internal/status"
)

var (
	// ErrJobNotFound is returned when a job cannot be found.
	ErrJobNotFound = errors.New("fetch job not found")

	// ErrInvalidURL is returned for URLs the client cannot fetch.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrEngineNotRunning is returned when an operation requires the engine to be running.
	ErrEngineNotRunning = errors.New("engine is not running")

	// ErrJobNotFinished is returned when a result is requested before completion.
	ErrJobNotFinished = errors.New("fetch job has not finished")
)

// Config holds engine-level settings.
type Config struct {
	MaxConcurrent int
	OutputDir     string            // bodies are written here; empty keeps them in memory only
	Headers       map[string]string // extra headers for every fetch
}

// Job tracks one fetch from queued to finished.
type Job struct {
	ID        uuid.UUID
	URL       string
	Priority  int
	StartTime time.Time

	state    int32
	received int64
	total    int64
	speed    int64

	mu      sync.Mutex
	endTime time.Time
	result  *fetch.Result
	err     error
	info    *fetch.ResourceInfo
}

// Status returns the job's current status.
func (j *Job) Status() status.Status {
	return atomic.LoadInt32(&j.state)
}

func (j *Job) setStatus(s status.Status) {
	atomic.StoreInt32(&j.state, s)
}

// Received returns the bytes accumulated so far.
func (j *Job) Received() int64 {
	return atomic.LoadInt64(&j.received)
}

// Total returns the expected length, or progress.UnknownTotal.
func (j *Job) Total() int64 {
	return atomic.LoadInt64(&j.total)
}

// JobInfo is an immutable snapshot of a job for display.
type JobInfo struct {
	ID       uuid.UUID
	URL      string
	Filename string
	Status   status.Status
	Received int64
	Total    int64
	Speed    int64
	Error    string
}

func (j *Job) snapshot() JobInfo {
	j.mu.Lock()
	info := j.info
	err := j.err
	j.mu.Unlock()

	snap := JobInfo{
		ID:       j.ID,
		URL:      j.URL,
		Status:   j.Status(),
		Received: j.Received(),
		Total:    j.Total(),
		Speed:    atomic.LoadInt64(&j.speed),
	}

	if info != nil {
		snap.Filename = info.Filename
	}
	if err != nil {
		snap.Error = err.Error()
	}

	return snap
}

// Engine owns the fetch jobs and their lifecycle.
type Engine struct {
	mu sync.RWMutex

	jobs   map[uuid.UUID]*Job
	order  []uuid.UUID
	client *fetch.Client
	repo   *history.Repository
	queue  *QueueProcessor
	config Config

	progressCh chan progress.Progress
	stopCh     chan struct{}
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	running    bool
}

// New creates an engine. repo may be nil to disable history.
func New(client *fetch.Client, repo *history.Repository, config Config) *Engine {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 3
	}

	return &Engine{
		jobs:       make(map[uuid.UUID]*Job),
		client:     client,
		repo:       repo,
		config:     config,
		progressCh: make(chan progress.Progress, 64),
		stopCh:     make(chan struct{}),
	}
}

// Start brings up the dispatch queue. Jobs added before Start stay queued.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil
	}

	if e.config.OutputDir != "" {
		if err := os.MkdirAll(e.config.OutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	e.ctx, e.cancelFunc = context.WithCancel(ctx)
	e.queue = NewQueueProcessor(e.config.MaxConcurrent, e.runJob, e.stopCh)
	e.running = true

	logger.Infof("Engine started with max concurrent fetches: %d", e.config.MaxConcurrent)

	return nil
}

// Add registers a URL and queues it for fetching.
func (e *Engine) Add(urlStr string, priority int) (uuid.UUID, error) {
	if !e.client.Supports(urlStr) {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrInvalidURL, urlStr)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return uuid.Nil, ErrEngineNotRunning
	}

	job := &Job{
		ID:       uuid.New(),
		URL:      urlStr,
		Priority: priority,
		total:    progress.UnknownTotal,
	}
	job.setStatus(status.Queued)

	e.jobs[job.ID] = job
	e.order = append(e.order, job.ID)
	e.queue.Enqueue(job.ID, priority)

	logger.Infof("Added fetch job %s for %s", job.ID, urlStr)

	return job.ID, nil
}

// Get returns a snapshot of one job.
func (e *Engine) Get(id uuid.UUID) (JobInfo, error) {
	e.mu.RLock()
	job, ok := e.jobs[id]
	e.mu.RUnlock()

	if !ok {
		return JobInfo{}, ErrJobNotFound
	}

	return job.snapshot(), nil
}

// List returns snapshots of all jobs in insertion order.
func (e *Engine) List() []JobInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	infos := make([]JobInfo, 0, len(e.order))
	for _, id := range e.order {
		infos = append(infos, e.jobs[id].snapshot())
	}

	return infos
}

// Result returns the completed result for a job.
func (e *Engine) Result(id uuid.UUID) (*fetch.Result, error) {
	e.mu.RLock()
	job, ok := e.jobs[id]
	e.mu.RUnlock()

	if !ok {
		return nil, ErrJobNotFound
	}

	job.mu.Lock()
	defer job.mu.Unlock()

	switch job.Status() {
	case status.Completed:
		return job.result, nil
	case status.Failed, status.Cancelled:
		return nil, job.err
	default:
		return nil, ErrJobNotFinished
	}
}

// ProgressChan delivers observations for all jobs. Slow consumers drop
// intermediate observations, never terminal ones.
func (e *Engine) ProgressChan() <-chan progress.Progress {
	return e.progressCh
}

// ActiveCount returns how many jobs are not yet finished.
func (e *Engine) ActiveCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := 0
	for _, job := range e.jobs {
		switch job.Status() {
		case status.Queued, status.Active:
			n++
		}
	}

	return n
}

// runJob executes one fetch. Called by the queue with a free slot.
func (e *Engine) runJob(id uuid.UUID) error {
	e.mu.RLock()
	job, ok := e.jobs[id]
	ctx := e.ctx
	e.mu.RUnlock()

	if !ok {
		return ErrJobNotFound
	}

	e.wg.Add(1)
	defer e.wg.Done()

	job.StartTime = time.Now()
	job.setStatus(status.Active)

	result, err := e.client.Fetch(ctx, job.URL, &fetch.Options{
		Headers: e.config.Headers,
		ProgressFn: func(received, expected, speed int64) {
			atomic.StoreInt64(&job.received, received)
			atomic.StoreInt64(&job.total, expected)
			atomic.StoreInt64(&job.speed, speed)

			e.emit(progress.Progress{
				JobID:          id,
				BytesCompleted: received,
				TotalBytes:     expected,
				Speed:          speed,
				Status:         status.Active,
				Timestamp:      time.Now(),
			}, false)
		},
	})

	job.mu.Lock()
	job.endTime = time.Now()

	if err != nil {
		job.err = err
		job.mu.Unlock()
		e.finishJob(job, status.Failed, err)

		return nil
	}

	job.result = result
	job.info = result.Info
	job.mu.Unlock()

	atomic.StoreInt64(&job.received, result.Received)
	atomic.StoreInt64(&job.total, result.Info.TotalSize)

	if e.config.OutputDir != "" {
		if werr := e.writeOutput(job, result); werr != nil {
			job.mu.Lock()
			job.err = werr
			job.mu.Unlock()
			e.finishJob(job, status.Failed, werr)

			return nil
		}
	}

	e.finishJob(job, status.Completed, nil)

	return nil
}

// finishJob records the terminal state, persists history, and emits the
// terminal observation.
func (e *Engine) finishJob(job *Job, st status.Status, err error) {
	job.setStatus(st)

	if err != nil {
		logger.Errorf("Fetch job %s failed: %v", job.ID, err)
	} else {
		logger.Infof("Fetch job %s completed: %d bytes", job.ID, job.Received())
	}

	e.saveHistory(job)

	e.emit(progress.Progress{
		JobID:          job.ID,
		BytesCompleted: job.Received(),
		TotalBytes:     job.Total(),
		Status:         st,
		Error:          err,
		Timestamp:      time.Now(),
	}, true)
}

// emit sends an observation. Intermediate observations are dropped when the
// consumer lags; terminal ones block until delivered or shutdown.
func (e *Engine) emit(p progress.Progress, terminal bool) {
	if terminal {
		select {
		case e.progressCh <- p:
		case <-e.stopCh:
		}

		return
	}

	select {
	case e.progressCh <- p:
	default:
	}
}

func (e *Engine) writeOutput(job *Job, result *fetch.Result) error {
	name := result.Info.Filename
	if name == "" {
		name = job.ID.String()
	}

	path := uniquePath(filepath.Join(e.config.OutputDir, name))

	if err := os.WriteFile(path, result.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	logger.Infof("Wrote %s (%d bytes)", path, result.Received)

	return nil
}

// uniquePath appends a numeric suffix until the path does not exist.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]

	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func (e *Engine) saveHistory(job *Job) {
	if e.repo == nil {
		return
	}

	job.mu.Lock()
	record := &history.Record{
		ID:        job.ID,
		URL:       job.URL,
		TotalSize: job.Total(),
		Received:  job.Received(),
		Status:    job.Status(),
		StartTime: job.StartTime,
		EndTime:   job.endTime,
	}
	if job.info != nil {
		record.Filename = job.info.Filename
		record.MimeType = job.info.MimeType
	}
	if job.err != nil {
		record.ErrorMessage = job.err.Error()
	}
	job.mu.Unlock()

	if err := e.repo.Save(record); err != nil {
		logger.Errorf("Failed to save history for %s: %v", job.ID, err)
	}
}

// Shutdown cancels in-flight fetches and waits for workers, bounded by ctx.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	e.cancelFunc()
	close(e.stopCh)
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Infof("Engine shut down cleanly")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("engine shutdown timed out: %w", ctx.Err())
	}
}

// Wait blocks until all started workers have returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}
