package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DirectoryService resolves principal ids to account emails for admins.
type DirectoryService struct {
	emails emailResolver
	log    zerolog.Logger
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(emails emailResolver, log zerolog.Logger) *DirectoryService {
	return &DirectoryService{
		emails: emails,
		log:    log.With().Str("component", "directory_service").Logger(),
	}
}

// ResolveEmails maps ids to emails. Ids without an account are omitted.
func (s *DirectoryService) ResolveEmails(ctx context.Context, rawIDs []string) (map[string]string, error) {
	ids := make([]uuid.UUID, 0, len(rawIDs))
	seen := make(map[uuid.UUID]struct{}, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", raw, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	emails, err := s.emails.EmailsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for id, email := range emails {
		out[id.String()] = email
	}
	return out, nil
}
