package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/schoolsite/portal-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPersonnelStore struct {
	list []model.Personnel
}

func (s *stubPersonnelStore) List(_ context.Context, department string) ([]model.Personnel, error) {
	var out []model.Personnel
	for _, p := range s.list {
		if department == "" || p.Department == department {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPersonnelStore) GetByID(_ context.Context, id int64) (*model.Personnel, error) {
	for i := range s.list {
		if s.list[i].ID == id {
			return &s.list[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubPersonnelStore) Create(_ context.Context, req *model.PersonnelRequest) (*model.Personnel, error) {
	p := model.Personnel{ID: int64(len(s.list) + 1), FullName: req.FullName, Department: req.Department, SortOrder: req.SortOrder}
	s.list = append(s.list, p)
	return &p, nil
}

func (s *stubPersonnelStore) Update(_ context.Context, id int64, req *model.PersonnelRequest) (*model.Personnel, error) {
	p, err := s.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	p.FullName = req.FullName
	return p, nil
}

func (s *stubPersonnelStore) Delete(_ context.Context, id int64) error {
	for i := range s.list {
		if s.list[i].ID == id {
			s.list = append(s.list[:i], s.list[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func TestPersonnelList_GroupedByDepartmentThenSortOrder(t *testing.T) {
	store := &stubPersonnelStore{list: []model.Personnel{
		{ID: 1, FullName: "ครูวิชัย", Department: "วิทยาศาสตร์", SortOrder: 2},
		{ID: 2, FullName: "ผอ.สมชาย", Department: "บริหาร", SortOrder: 1},
		{ID: 3, FullName: "ครูมานี", Department: "วิทยาศาสตร์", SortOrder: 1},
		{ID: 4, FullName: "รอง ผอ.สุดา", Department: "บริหาร", SortOrder: 2},
	}}
	svc := NewPersonnelService(store, &stubAudit{}, nopLog)

	list, err := svc.List(context.Background(), "")
	require.NoError(t, err)

	ids := make([]int64, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{2, 4, 3, 1}, ids)

	list, err = svc.List(context.Background(), "ภาษาไทย")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestPersonnelDelete_Audits(t *testing.T) {
	store := &stubPersonnelStore{list: []model.Personnel{{ID: 7, FullName: "ครูมานี"}}}
	audit := &stubAudit{}
	svc := NewPersonnelService(store, audit, nopLog)
	actor := uuid.New()

	require.NoError(t, svc.Delete(context.Background(), actor, 7))
	assert.ErrorIs(t, svc.Delete(context.Background(), actor, 7), repository.ErrNotFound)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, model.AuditPersonnelDeleted, audit.entries[0].Action)
	assert.Equal(t, "7", audit.entries[0].Target)
}
