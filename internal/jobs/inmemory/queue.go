package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/techmart-analytics/internal/jobs"
)

// DefaultMaxRetries is applied to jobs published without MaxRetries.
const DefaultMaxRetries = 3

// Queue is an in-memory implementation of job publisher and consumer.
// It uses a buffered channel for job distribution and is safe for
// concurrent use. A single worker drains it, so refreshes never overlap.
type Queue struct {
	jobChan   chan *jobs.RefreshJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	log       zerolog.Logger
	closed    bool
	started   bool

	// backoff is multiplied by the retry count before each retry.
	backoff time.Duration
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can wait before PublishRefresh blocks.
func NewQueue(bufferSize int, store jobs.JobStore, log zerolog.Logger) *Queue {
	return &Queue{
		jobChan:   make(chan *jobs.RefreshJob, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		log:       log,
		backoff:   time.Second,
	}
}

// SetBackoff changes the linear retry backoff unit.
func (q *Queue) SetBackoff(d time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.backoff = d
}

// PublishRefresh implements the Publisher interface.
func (q *Queue) PublishRefresh(ctx context.Context, job *jobs.RefreshJob) error {
	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return jobs.ErrQueueClosed
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	job.Status = jobs.JobStatusPending
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = DefaultMaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("PublishRefresh: save job: %w", err)
		}
	}

	// The queue owns the job from here on.
	queued := *job

	select {
	case q.jobChan <- &queued:
		q.log.Debug().Str("job_id", job.JobID).Str("reason", job.Reason).Msg("Refresh job queued")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return jobs.ErrQueueClosed
	}
}

// Start implements the Consumer interface.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return jobs.ErrQueueClosed
	}
	if q.started {
		return fmt.Errorf("Start: queue already started")
	}
	q.started = true

	q.wg.Add(1)
	go q.worker(ctx, handler)

	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			q.processJob(ctx, job, handler)
		}
	}
}

func (q *Queue) save(ctx context.Context, job *jobs.RefreshJob) {
	if q.store == nil {
		return
	}
	if err := q.store.SaveJob(ctx, job); err != nil {
		q.log.Error().Err(err).Str("job_id", job.JobID).Msg("Failed to save job state")
	}
}

// processJob runs job until it succeeds or exhausts its retries.
func (q *Queue) processJob(ctx context.Context, job *jobs.RefreshJob, handler jobs.JobHandler) {
	log := q.log.With().Str("job_id", job.JobID).Logger()

	for {
		now := time.Now()
		job.Status = jobs.JobStatusRunning
		job.StartedAt = &now
		job.CompletedAt = nil
		q.save(ctx, job)

		err := handler(ctx, job)

		completedAt := time.Now()
		job.CompletedAt = &completedAt

		if err == nil {
			job.Status = jobs.JobStatusCompleted
			job.Error = ""
			q.save(ctx, job)
			log.Info().Str("snapshot_id", job.SnapshotID).Int("rows", job.RowCount).Msg("Refresh job completed")
			return
		}

		job.Error = err.Error()
		if job.RetryCount >= job.MaxRetries {
			job.Status = jobs.JobStatusFailed
			q.save(ctx, job)
			log.Error().Err(err).Int("retry_count", job.RetryCount).Msg("Refresh job failed")
			return
		}

		job.RetryCount++
		job.Status = jobs.JobStatusRetrying
		q.save(ctx, job)

		q.mu.RLock()
		wait := time.Duration(job.RetryCount) * q.backoff
		q.mu.RUnlock()
		log.Warn().Err(err).Int("retry_count", job.RetryCount).Dur("backoff", wait).Msg("Refresh job failed, retrying")

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			job.Status = jobs.JobStatusFailed
			q.save(context.WithoutCancel(ctx), job)
			return
		case <-q.closeChan:
			timer.Stop()
			job.Status = jobs.JobStatusFailed
			job.Error = fmt.Sprintf("%s (queue stopped before retry)", job.Error)
			q.save(ctx, job)
			return
		}
	}
}

// Stop implements the Consumer interface.
// It stops the queue and waits for the in-flight job to finish.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

// Ensure Queue implements both Publisher and Consumer interfaces.
var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
