package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/config"
	"github.com/schoolsite/portal-backend/internal/model"
)

// auditRecorder is what mutating services use to leave an audit trail.
type auditRecorder interface {
	Record(ctx context.Context, actor uuid.UUID, action model.AuditAction, target string, detail any)
}

// auditLister reads persisted audit entries.
type auditLister interface {
	List(ctx context.Context, limit, offset int) ([]model.AuditEntry, int, error)
}

// AuditService queues audit entries for the audit worker and lists stored ones.
type AuditService struct {
	rdb  *redis.Client
	repo auditLister
	log  zerolog.Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(rdb *redis.Client, repo auditLister, log zerolog.Logger) *AuditService {
	return &AuditService{
		rdb:  rdb,
		repo: repo,
		log:  log.With().Str("component", "audit_service").Logger(),
	}
}

// Record pushes an entry onto the audit queue. Failures are logged, never returned.
func (s *AuditService) Record(ctx context.Context, actor uuid.UUID, action model.AuditAction, target string, detail any) {
	entry := model.AuditEntry{
		ActorID:   actor,
		Action:    action,
		Target:    target,
		CreatedAt: time.Now().UTC(),
	}
	if detail != nil {
		raw, err := json.Marshal(detail)
		if err != nil {
			s.log.Warn().Err(err).Str("action", string(action)).Msg("Audit detail not serializable")
		} else {
			entry.Detail = raw
		}
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		s.log.Error().Err(err).Msg("Marshal audit entry")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAuditQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).
			Str("action", string(action)).
			Str("actor_id", actor.String()).
			Msg("Queue audit entry failed")
	}
}

// List returns a page of persisted entries.
func (s *AuditService) List(ctx context.Context, page, perPage int) ([]model.AuditEntry, int, error) {
	return s.repo.List(ctx, perPage, (page-1)*perPage)
}
