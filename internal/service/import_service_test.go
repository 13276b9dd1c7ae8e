package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/schoolsite/portal-backend/internal/csvimport"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInserter struct {
	rows   []model.RoleAssignment
	failOn string
}

func (s *stubInserter) Insert(_ context.Context, a *model.RoleAssignment) error {
	if a.Email == s.failOn {
		return errors.New("insert failed")
	}
	s.rows = append(s.rows, *a)
	return nil
}

func TestImportScenario(t *testing.T) {
	store := &stubInserter{}
	audit := &stubAudit{}
	svc := NewImportService(store, audit, nil, nopLog)

	input := "ชื่อ,อีเมล,รหัสผ่าน,สถานะ\n" +
		"สมชาย,somchai@example.com,secret123,ครู\n" +
		"สมหญิง,bad-email,secret123,นักเรียน\n"

	res, err := svc.Import(context.Background(), uuid.New(), strings.NewReader(input), csvimport.FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, []model.ImportRowError{{Row: 2, Email: "bad-email", Message: csvimport.MsgInvalidEmail}}, res.Errors)

	require.Len(t, store.rows, 1)
	row := store.rows[0]
	assert.Equal(t, model.RoleTeacher, row.Role)
	assert.False(t, row.Approved)
	assert.Equal(t, "somchai@example.com", row.Email)
	assert.NotEqual(t, uuid.Nil, row.UserID)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, model.AuditRolesImported, audit.entries[0].Action)
}

func TestImportInsertFailureBecomesRowError(t *testing.T) {
	store := &stubInserter{failOn: "b@example.com"}
	svc := NewImportService(store, &stubAudit{}, nil, nopLog)

	input := "ชื่อ,อีเมล,รหัสผ่าน,สถานะ\n" +
		"ก,a@example.com,x,ครู\n" +
		"ข,b@example.com,x,ผู้ปกครอง\n" +
		"ค,c,x,นักเรียน\n" +
		"ง,d@example.com,x,นักเรียน\n"

	res, err := svc.Import(context.Background(), uuid.New(), strings.NewReader(input), csvimport.FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, 2, res.SuccessCount)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, model.ImportRowError{Row: 2, Email: "b@example.com", Message: MsgInsertFailed}, res.Errors[0])
	assert.Equal(t, 3, res.Errors[1].Row)

	ids := map[uuid.UUID]bool{}
	for _, r := range store.rows {
		ids[r.UserID] = true
	}
	assert.Len(t, ids, 2, "each row gets its own id")
}

func TestImportBadHeaderInsertsNothing(t *testing.T) {
	store := &stubInserter{}
	audit := &stubAudit{}
	svc := NewImportService(store, audit, nil, nopLog)

	_, err := svc.Import(context.Background(), uuid.New(), strings.NewReader("name,email,password,status\nx,a@example.com,x,ครู\n"), csvimport.FormatCSV)
	assert.ErrorIs(t, err, csvimport.ErrInvalidHeader)
	assert.Empty(t, store.rows)
	assert.Empty(t, audit.entries)
}
