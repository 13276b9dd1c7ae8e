package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/config"
	"github.com/schoolsite/portal-backend/internal/metrics"
	"github.com/schoolsite/portal-backend/internal/model"
)

const (
	auditBatchSize  = 100
	auditRetryDelay = 5 * time.Second
)

// auditWriter persists a batch of audit entries in one round trip.
type auditWriter interface {
	InsertBatch(ctx context.Context, entries []model.AuditEntry) error
}

// AuditWorker consumes persist_audit_queue and COPYs entries into audit_logs.
type AuditWorker struct {
	rdb        *redis.Client
	repo       auditWriter
	metrics    *metrics.Metrics
	log        zerolog.Logger
	retryDelay time.Duration
}

// NewAuditWorker creates a new AuditWorker.
func NewAuditWorker(rdb *redis.Client, repo auditWriter, m *metrics.Metrics, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		rdb:        rdb,
		repo:       repo,
		metrics:    m,
		log:        log.With().Str("component", "audit_worker").Logger(),
		retryDelay: auditRetryDelay,
	}
}

// Start begins the worker loop and blocks until ctx is cancelled.
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

// processNext waits up to a second for one entry, then takes whatever else
// is queued up to the batch size.
func (w *AuditWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistAuditQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(result) < 2 {
		return
	}

	raw := []string{result[1]}
	more, err := w.rdb.LPopCount(ctx, config.WorkerKey.PersistAuditQueue, auditBatchSize-1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		w.log.Warn().Err(err).Msg("LPopCount error")
	}
	raw = append(raw, more...)

	if err := w.persist(ctx, raw); err != nil {
		w.log.Error().Err(err).Int("count", len(raw)).Msg("Persist error, retrying")
		w.requeue(context.Background(), raw)
		select {
		case <-ctx.Done():
		case <-time.After(w.retryDelay):
		}
	}
}

// persist decodes and writes a batch. Undecodable payloads are logged and dropped.
func (w *AuditWorker) persist(ctx context.Context, raw []string) error {
	entries := make([]model.AuditEntry, 0, len(raw))
	for _, r := range raw {
		var e model.AuditEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			w.log.Error().Err(err).Msg("Unmarshal error")
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil
	}
	if err := w.repo.InsertBatch(ctx, entries); err != nil {
		return err
	}
	w.metrics.AddAuditEntries(len(entries))
	return nil
}

// requeue puts a failed batch back at the head of the queue in its original order.
func (w *AuditWorker) requeue(ctx context.Context, raw []string) {
	vals := make([]interface{}, len(raw))
	for i := range raw {
		vals[len(raw)-1-i] = raw[i]
	}
	if err := w.rdb.LPush(ctx, config.WorkerKey.PersistAuditQueue, vals...).Err(); err != nil {
		w.log.Error().Err(err).Int("count", len(raw)).Msg("Requeue failed, audit entries lost")
	}
}

// drain persists everything still queued before shutdown.
func (w *AuditWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.rdb.LPopCount(ctx, config.WorkerKey.PersistAuditQueue, auditBatchSize).Result()
		if err != nil || len(raw) == 0 {
			break
		}
		if err := w.persist(ctx, raw); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.requeue(ctx, raw)
			break
		}
		drained += len(raw)
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
