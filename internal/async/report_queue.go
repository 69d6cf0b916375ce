package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("report queue is shutting down")

// Generator renders and stores a report; *compare.Service satisfies it.
type Generator interface {
	GenerateReport(ctx context.Context, id, format string) (entity.ReportInfo, error)
}

type ReportQueue struct {
	gen     Generator
	logger  *slog.Logger
	workers int
	timeout time.Duration
	formats []string

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ReportQueue)

func WithWorkers(n int) Option {
	return func(q *ReportQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ReportQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ReportQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithFormats makes Schedule queue one job per format.
func WithFormats(formats ...string) Option {
	return func(q *ReportQueue) {
		if len(formats) > 0 {
			q.formats = formats
		}
	}
}

func NewReportQueue(gen Generator, logger *slog.Logger, opts ...Option) *ReportQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ReportQueue{
		gen:     gen,
		logger:  logger,
		workers: 2,
		timeout: 2 * time.Minute,
		formats: []string{""},
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ReportQueue) start() {
	q.once.Do(func() {
		for i := range q.workers {
			q.wg.Add(1)
			go q.work(i + 1)
		}
	})
}

func (q *ReportQueue) work(workerID int) {
	defer q.wg.Done()
	q.logger.Debug("async.report.worker_started", "worker_id", workerID)

	for job := range q.ch {
		ctx, cancel := common.WithTimeout(context.Background(), q.timeout)
		start := time.Now()
		info, err := q.gen.GenerateReport(ctx, job.ComparisonID, job.Format)
		cancel()

		if err != nil {
			q.logger.Error("async.report.failed", "worker_id", workerID, "comparison_id", job.ComparisonID, "format", job.Format, "error", err)
			continue
		}
		q.logger.Info("async.report.ok",
			"worker_id", workerID,
			"comparison_id", job.ComparisonID,
			"file", info.Filename,
			"queued_ms", start.Sub(job.SubmittedAt).Milliseconds(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
	q.logger.Debug("async.report.worker_stopped", "worker_id", workerID)
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *ReportQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		return nil
	default:
	}
	q.logger.Warn("async.report.backpressure", "comparison_id", job.ComparisonID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Schedule queues the configured formats for a comparison without blocking.
// It reports false when any job was dropped.
func (q *ReportQueue) Schedule(comparisonID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("async.report.closed", "comparison_id", comparisonID)
		return false
	}
	ok := true
	for _, f := range q.formats {
		select {
		case q.ch <- Job{ComparisonID: comparisonID, Format: f, SubmittedAt: time.Now()}:
		default:
			q.logger.Warn("async.report.dropped", "comparison_id", comparisonID, "format", f)
			ok = false
		}
	}
	return ok
}

// Shutdown stops intake and waits for queued jobs to finish or ctx to end.
func (q *ReportQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("async.report.shutdown_interrupted")
	case <-done:
		q.logger.Info("async.report.drained")
	}
}
