package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andres1jh8/Registro-Back/internal/dto"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProcessor struct {
	calls atomic.Int32
	err   error
	last  atomic.Value
}

func (p *countingProcessor) Process(_ context.Context, raw json.RawMessage) error {
	p.calls.Add(1)
	p.last.Store(string(raw))
	return p.err
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func fastRetries(t *testing.T) {
	t.Helper()
	prev := retryBaseDelay
	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryBaseDelay = prev })
}

func envelope(t *testing.T, jobType string, payload interface{}) string {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(Job{Type: jobType, Payload: data})
	require.NoError(t, err)
	return string(raw)
}

func TestDispatcher_EnqueueReporteEmail(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	err := NewDispatcher(rdb).EnqueueReporteEmail(ctx, dto.ReporteEmailJob{Anio: 2025, Mes: 3, Email: "a@b.com"})
	require.NoError(t, err)

	raw, err := rdb.RPop(ctx, QueueReportes).Result()
	require.NoError(t, err)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, JobReporteEmail, job.Type)
	assert.JSONEq(t, `{"anio":2025,"mes":3,"email":"a@b.com"}`, string(job.Payload))
}

func TestProcessJob_Success(t *testing.T) {
	rdb := newTestRedis(t)
	proc := &countingProcessor{}

	processJob(context.Background(), rdb, &WorkerHandlers{ReporteEmail: proc}, QueueReportes,
		envelope(t, JobReporteEmail, dto.ReporteEmailJob{Anio: 2025, Mes: 3, Email: "a@b.com"}))

	assert.Equal(t, int32(1), proc.calls.Load())
	n, err := DLQLength(context.Background(), rdb, QueueReportes)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcessJob_RetriesThenDLQ(t *testing.T) {
	fastRetries(t)
	rdb := newTestRedis(t)
	proc := &countingProcessor{err: errors.New("smtp timeout")}

	processJob(context.Background(), rdb, &WorkerHandlers{ReporteEmail: proc}, QueueReportes,
		envelope(t, JobReporteEmail, dto.ReporteEmailJob{Anio: 2025, Mes: 3, Email: "a@b.com"}))

	assert.Equal(t, int32(MaxJobAttempts), proc.calls.Load())

	raw, err := rdb.LIndex(context.Background(), DLQPrefix+QueueReportes, 0).Result()
	require.NoError(t, err)
	var entry DLQEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))
	assert.Equal(t, JobReporteEmail, entry.JobType)
	assert.Equal(t, "smtp timeout", entry.Reason)
	assert.Equal(t, MaxJobAttempts, entry.Attempts)
}

func TestProcessJob_PermanentSkipsRetries(t *testing.T) {
	fastRetries(t)
	rdb := newTestRedis(t)
	proc := &countingProcessor{err: ErrPermanent}

	processJob(context.Background(), rdb, &WorkerHandlers{ReporteEmail: proc}, QueueReportes,
		envelope(t, JobReporteEmail, map[string]string{}))

	assert.Equal(t, int32(1), proc.calls.Load())
	n, _ := DLQLength(context.Background(), rdb, QueueReportes)
	assert.Equal(t, int64(1), n)
}

func TestProcessJob_UnknownTypeAndBadEnvelope(t *testing.T) {
	rdb := newTestRedis(t)
	handlers := &WorkerHandlers{ReporteEmail: &countingProcessor{}}

	processJob(context.Background(), rdb, handlers, QueueReportes, envelope(t, "factura", map[string]int{}))
	processJob(context.Background(), rdb, handlers, QueueReportes, "{not json")

	n, err := DLQLength(context.Background(), rdb, QueueReportes)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestComputeBackoff(t *testing.T) {
	assert.Equal(t, retryBaseDelay, computeBackoff(1))
	assert.Equal(t, 2*retryBaseDelay, computeBackoff(2))
	assert.Equal(t, 4*retryBaseDelay, computeBackoff(3))
}

func TestStartWorkerPool_ConsumesQueue(t *testing.T) {
	rdb := newTestRedis(t)
	proc := &countingProcessor{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartWorkerPool(ctx, rdb, &WorkerHandlers{ReporteEmail: proc}, 2)
	require.NoError(t, NewDispatcher(rdb).EnqueueReporteEmail(ctx, dto.ReporteEmailJob{Anio: 2025, Mes: 1, Email: "x@y.com"}))

	assert.Eventually(t, func() bool { return proc.calls.Load() == 1 }, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, proc.last.Load(), `"email":"x@y.com"`)
}
