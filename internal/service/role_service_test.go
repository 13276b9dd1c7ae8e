package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRoleStore struct {
	rows     []model.RoleAssignment
	failFor  map[uuid.UUID]error
	inserted []model.RoleAssignment
	nextID   int64
}

func (s *stubRoleStore) ListByUser(_ context.Context, id uuid.UUID) ([]model.RoleAssignment, error) {
	var out []model.RoleAssignment
	for _, r := range s.rows {
		if r.UserID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubRoleStore) ListPending(context.Context) ([]model.RoleAssignment, error) {
	var out []model.RoleAssignment
	for _, r := range s.rows {
		if !r.Approved {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubRoleStore) PendingUserIDs(context.Context) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, r := range s.rows {
		if !r.Approved && !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}
	return ids, nil
}

func (s *stubRoleStore) ApproveUser(_ context.Context, id uuid.UUID) (int64, error) {
	if err := s.failFor[id]; err != nil {
		return 0, err
	}
	var n int64
	for i := range s.rows {
		if s.rows[i].UserID == id && !s.rows[i].Approved {
			s.rows[i].Approved = true
			s.rows[i].PendingApproval = false
			n++
		}
	}
	return n, nil
}

func (s *stubRoleStore) Insert(_ context.Context, a *model.RoleAssignment) error {
	if err := s.failFor[a.UserID]; err != nil {
		return err
	}
	s.nextID++
	a.ID = s.nextID
	a.PendingApproval = !a.Approved
	s.rows = append(s.rows, *a)
	s.inserted = append(s.inserted, *a)
	return nil
}

func (s *stubRoleStore) DeleteByUser(_ context.Context, id uuid.UUID) (int64, error) {
	kept := s.rows[:0]
	var n int64
	for _, r := range s.rows {
		if r.UserID == id {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return n, nil
}

type stubEmails map[uuid.UUID]string

func (s stubEmails) EmailsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := map[uuid.UUID]string{}
	for _, id := range ids {
		if e, ok := s[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func TestApproveAllContinuesPastFailures(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	store := &stubRoleStore{
		rows: []model.RoleAssignment{
			{UserID: a, Role: model.RoleTeacher},
			{UserID: b, Role: model.RoleStudent},
			{UserID: c, Role: model.RoleGuardian},
			{UserID: c, Role: model.RoleTeacher},
		},
		failFor: map[uuid.UUID]error{b: errors.New("deadlock detected")},
	}
	inval := &stubInvalidator{}
	audit := &stubAudit{}
	svc := NewRoleService(store, stubEmails{}, inval, audit, nil, nopLog)

	res, err := svc.ApproveAll(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.ElementsMatch(t, []uuid.UUID{a, c}, res.Approved)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, b, res.Failed[0].UserID)
	assert.Equal(t, "deadlock detected", res.Failed[0].Error)

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b, pending[0].UserID)

	assert.ElementsMatch(t, []uuid.UUID{a, c}, inval.ids)
	require.Len(t, audit.entries, 1)
}

func TestApproveAllNothingPending(t *testing.T) {
	svc := NewRoleService(&stubRoleStore{}, stubEmails{}, &stubInvalidator{}, &stubAudit{}, nil, nopLog)

	res, err := svc.ApproveAll(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, res.Approved)
	assert.Empty(t, res.Failed)
}

func TestApproveSingle(t *testing.T) {
	id := uuid.New()
	store := &stubRoleStore{rows: []model.RoleAssignment{{UserID: id, Role: model.RoleStudent}}}
	svc := NewRoleService(store, stubEmails{}, &stubInvalidator{}, &stubAudit{}, nil, nopLog)
	ctx := context.Background()

	require.NoError(t, svc.Approve(ctx, uuid.New(), id))
	assert.ErrorIs(t, svc.Approve(ctx, uuid.New(), id), ErrNoPendingRole)
}

func TestAddRoleResolvesEmail(t *testing.T) {
	withAccount, imported := uuid.New(), uuid.New()
	store := &stubRoleStore{rows: []model.RoleAssignment{{UserID: imported, Role: model.RoleStudent, Email: "imported@example.com"}}}
	svc := NewRoleService(store, stubEmails{withAccount: "account@example.com"}, &stubInvalidator{}, &stubAudit{}, nil, nopLog)
	ctx := context.Background()

	a, err := svc.AddRole(ctx, uuid.New(), withAccount, model.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, "account@example.com", a.Email)
	assert.True(t, a.Approved)
	assert.Equal(t, model.ApprovalApproved, a.Status())

	a, err = svc.AddRole(ctx, uuid.New(), imported, model.RoleGuardian)
	require.NoError(t, err)
	assert.Equal(t, "imported@example.com", a.Email)

	_, err = svc.AddRole(ctx, uuid.New(), withAccount, model.Role("principal"))
	assert.ErrorIs(t, err, model.ErrUnknownRole)
}

func TestDeleteRoles(t *testing.T) {
	id := uuid.New()
	store := &stubRoleStore{rows: []model.RoleAssignment{
		{UserID: id, Role: model.RoleStudent},
		{UserID: id, Role: model.RoleTeacher, Approved: true},
		{UserID: uuid.New(), Role: model.RoleTeacher, Approved: true},
	}}
	inval := &stubInvalidator{}
	svc := NewRoleService(store, stubEmails{}, inval, &stubAudit{}, nil, nopLog)

	n, err := svc.DeleteRoles(context.Background(), uuid.New(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Len(t, store.rows, 1)
	assert.Equal(t, []uuid.UUID{id}, inval.ids)
}
