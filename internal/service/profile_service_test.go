package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/schoolsite/portal-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProfileStore struct {
	profiles map[uuid.UUID]model.Profile
	err      error
}

func (s *stubProfileStore) GetProfile(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *stubProfileStore) UpsertProfile(_ context.Context, p *model.Profile) error {
	if s.err != nil {
		return s.err
	}
	s.profiles[p.UserID] = *p
	return nil
}

func TestProfileGet_MissingProfileIsEmpty(t *testing.T) {
	svc := NewProfileService(&stubProfileStore{profiles: map[uuid.UUID]model.Profile{}}, nopLog)
	id := uuid.New()

	p, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, p.UserID)
	assert.Empty(t, p.FullName)
}

func TestProfileUpdate_ReplacesDisplayData(t *testing.T) {
	store := &stubProfileStore{profiles: map[uuid.UUID]model.Profile{}}
	svc := NewProfileService(store, nopLog)
	id := uuid.New()
	avatar := "http://portal.test/uploads/avatars/a.png"

	_, err := svc.Update(context.Background(), id, &model.UpdateProfileRequest{FullName: "ครูสมศรี", AvatarURL: &avatar})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), id, &model.UpdateProfileRequest{FullName: "ครูสมศรี ใจดี"})
	require.NoError(t, err)

	p, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ครูสมศรี ใจดี", p.FullName)
	assert.Nil(t, p.AvatarURL)
}

func TestProfileUpdate_StoreFailure(t *testing.T) {
	svc := NewProfileService(&stubProfileStore{err: errors.New("db down")}, nopLog)

	_, err := svc.Update(context.Background(), uuid.New(), &model.UpdateProfileRequest{FullName: "ครูสมศรี"})
	assert.Error(t, err)
}
