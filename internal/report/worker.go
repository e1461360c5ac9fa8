package report

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"medghor/internal/blob"
	"medghor/internal/core"
	"medghor/pkg/domain"
)

// Status describes the lifecycle stage of a report request.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Job tracks a report request and its resulting artifact.
type Job struct {
	ID          string     `json:"id"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	FileName    string     `json:"file_name,omitempty"`
	BlobKey     string     `json:"blob_key,omitempty"`
	SizeBytes   int64      `json:"size_bytes,omitempty"`
	RequestedBy string     `json:"requested_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (j Job) copy() Job {
	out := j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// Source supplies a consistent snapshot of all four collections.
// *core.Service satisfies it.
type Source interface {
	ListAll(ctx context.Context) (map[domain.Collection][]domain.Record, error)
}

// Scheduler queues report requests and exposes their status.
type Scheduler interface {
	Enqueue(ctx context.Context, requestedBy string) (Job, error)
	Get(id string) (Job, bool)
}

// Worker generates summary PDFs asynchronously and stores them as blobs
// under the reports/ prefix.
type Worker struct {
	source Source
	store  blob.Store
	logger core.Logger
	nowFn  func() time.Time

	queue chan string
	mu    sync.RWMutex
	jobs  map[string]*Job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ Scheduler = (*Worker)(nil)

// WorkerOption configures optional worker collaborators.
type WorkerOption func(*Worker)

// WithLogger attaches a structured logger to the worker.
func WithLogger(logger core.Logger) WorkerOption {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		if now != nil {
			w.nowFn = now
		}
	}
}

// NewWorker constructs a report worker. Start must be called before enqueued
// jobs are processed.
func NewWorker(source Source, store blob.Store, opts ...WorkerOption) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		source: source,
		store:  store,
		logger: core.NoopLogger(),
		nowFn:  time.Now,
		queue:  make(chan string, 32),
		jobs:   make(map[string]*Job),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins processing report requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for in-flight work, bounded by
// ctx.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case id := <-w.queue:
			w.process(id)
		}
	}
}

// Enqueue schedules a report job and returns the queued record.
func (w *Worker) Enqueue(_ context.Context, requestedBy string) (Job, error) {
	id := uuid.NewString()
	now := w.nowFn().UTC()
	record := Job{
		ID:          id,
		Status:      StatusQueued,
		RequestedBy: requestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	queued := record.copy()
	w.mu.Unlock()

	select {
	case w.queue <- id:
	default:
		w.mu.Lock()
		delete(w.jobs, id)
		w.mu.Unlock()
		return Job{}, fmt.Errorf("report queue full")
	}

	w.logger.Info("report queued", "id", id, "requested_by", requestedBy)
	return queued, nil
}

// Get returns a snapshot of the report record.
func (w *Worker) Get(id string) (Job, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return Job{}, false
	}
	return record.copy(), true
}

func (w *Worker) process(id string) {
	w.setStatus(id, StatusRunning, "")

	collections, err := w.source.ListAll(w.ctx)
	if err != nil {
		w.fail(id, fmt.Sprintf("load collections: %v", err))
		return
	}

	now := w.nowFn()
	var buf bytes.Buffer
	if err := Build(&buf, collections, now); err != nil {
		w.fail(id, err.Error())
		return
	}

	fileName := FileName(now)
	key := "reports/" + id + ".pdf"
	info, err := w.store.Put(w.ctx, key, bytes.NewReader(buf.Bytes()), blob.PutOptions{
		ContentType: "application/pdf",
		Metadata:    map[string]string{"filename": fileName},
	})
	if err != nil {
		w.fail(id, fmt.Sprintf("store artifact: %v", err))
		return
	}

	completed := w.nowFn().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = StatusSucceeded
		record.Error = ""
		record.FileName = fileName
		record.BlobKey = key
		record.SizeBytes = info.Size
		record.UpdatedAt = completed
		record.CompletedAt = &completed
	}
	w.mu.Unlock()
	w.logger.Info("report generated", "id", id, "file", fileName, "bytes", info.Size)
}

func (w *Worker) setStatus(id string, status Status, message string) {
	now := w.nowFn().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = status
		record.Error = message
		record.UpdatedAt = now
	}
	w.mu.Unlock()
}

func (w *Worker) fail(id, reason string) {
	now := w.nowFn().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = StatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
	w.logger.Warn("report failed", "id", id, "error", reason)
}
