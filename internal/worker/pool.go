package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andres1jh8/Registro-Back/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReportes = "jobs:reportes"

	JobReporteEmail = "reporte_email"

	// MaxJobAttempts is how many times a job runs before it goes to the DLQ.
	MaxJobAttempts = 3
)

// retryBaseDelay is the first backoff step; it doubles on every attempt.
var retryBaseDelay = 2 * time.Second

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Processor handles the payload of one job type.
type Processor interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// WorkerHandlers maps job types to their processors. Wired in the composition root.
type WorkerHandlers struct {
	ReporteEmail Processor
}

func (h *WorkerHandlers) forType(jobType string) Processor {
	if h == nil {
		return nil
	}
	switch jobType {
	case JobReporteEmail:
		return h.ReporteEmail
	default:
		return nil
	}
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReporteEmail pushes a report e-mail job to Redis.
func (d *Dispatcher) EnqueueReporteEmail(ctx context.Context, job dto.ReporteEmailJob) error {
	return d.enqueue(ctx, QueueReportes, JobReporteEmail, job)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", jobType, err)
	}
	log.Info().Str("queue", queue).Str("type", jobType).Msg("job enqueued")
	return nil
}

// StartWorkerPool launches numWorkers goroutines consuming the report queue.
// Each goroutine blocks on BRPOP and exits when ctx is cancelled.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueReportes).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("brpop failed")
					sleepCtx(ctx, time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

// processJob runs the job with exponential backoff and moves it to the DLQ
// after MaxJobAttempts failures.
func processJob(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "unknown", json.RawMessage(raw), "invalid envelope: "+err.Error(), 0)
		return
	}

	proc := handlers.forType(job.Type)
	if proc == nil {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "no handler for job type", 0)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= MaxJobAttempts; attempt++ {
		lastErr = proc.Process(ctx, job.Payload)
		if lastErr == nil {
			log.Info().Str("type", job.Type).Int("attempt", attempt).Msg("job processed")
			return
		}
		if errors.Is(lastErr, ErrPermanent) || ctx.Err() != nil {
			break
		}
		log.Warn().Err(lastErr).Str("type", job.Type).Int("attempt", attempt).Msg("job failed, retrying")
		if attempt < MaxJobAttempts {
			sleepCtx(ctx, computeBackoff(attempt))
		}
	}
	SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, lastErr.Error(), MaxJobAttempts)
}

// ErrPermanent marks failures that retrying cannot fix (bad payload).
var ErrPermanent = errors.New("permanent job failure")

func computeBackoff(attempt int) time.Duration {
	return retryBaseDelay << (attempt - 1)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
