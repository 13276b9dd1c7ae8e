package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/config"
	"github.com/schoolsite/portal-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "test-secret",
		JWTExpiry:      time.Hour,
		BcryptCost:     bcrypt.MinCost,
		AuthCodeTTL:    time.Minute,
		AccessCacheTTL: time.Minute,
		DraftTTL:       time.Hour,
		MaxUploadMB:    1,
		PublicBaseURL:  "http://portal.test/",
	}
}

var nopLog = zerolog.Nop()

type recordedAudit struct {
	Actor  uuid.UUID
	Action model.AuditAction
	Target string
}

type stubAudit struct {
	mu      sync.Mutex
	entries []recordedAudit
}

func (s *stubAudit) Record(_ context.Context, actor uuid.UUID, action model.AuditAction, target string, _ any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, recordedAudit{Actor: actor, Action: action, Target: target})
}

type stubInvalidator struct {
	ids []uuid.UUID
}

func (s *stubInvalidator) Invalidate(_ context.Context, ids ...uuid.UUID) error {
	s.ids = append(s.ids, ids...)
	return nil
}
