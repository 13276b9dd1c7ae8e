package service

import (
	"context"
	"io"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/csvimport"
	"github.com/schoolsite/portal-backend/internal/metrics"
	"github.com/schoolsite/portal-backend/internal/model"
)

// MsgInsertFailed is the row error for a valid row the database rejected.
const MsgInsertFailed = "บันทึกข้อมูลไม่สำเร็จ"

type roleInserter interface {
	Insert(ctx context.Context, a *model.RoleAssignment) error
}

// ImportService creates pending role rows from an import sheet.
type ImportService struct {
	roles   roleInserter
	audit   auditRecorder
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewImportService creates a new ImportService.
func NewImportService(roles roleInserter, audit auditRecorder, m *metrics.Metrics, log zerolog.Logger) *ImportService {
	return &ImportService{
		roles:   roles,
		audit:   audit,
		metrics: m,
		log:     log.With().Str("component", "import_service").Logger(),
	}
}

// Import validates the sheet and inserts one pending role row per valid row,
// sequentially in row order. Only a bad header fails the whole import.
//
// Each row gets a freshly generated id; it is not linked to any account.
func (s *ImportService) Import(ctx context.Context, actor uuid.UUID, r io.Reader, format csvimport.Format) (*model.ImportResult, error) {
	sheet, err := csvimport.Parse(r, format)
	if err != nil {
		return nil, err
	}

	result := &model.ImportResult{Errors: append([]model.ImportRowError{}, sheet.Errors...)}
	for _, row := range sheet.Rows {
		a := &model.RoleAssignment{
			UserID:   uuid.New(),
			Role:     row.Role,
			Approved: false,
			Email:    row.Email,
		}
		if err := s.roles.Insert(ctx, a); err != nil {
			s.log.Error().Err(err).Int("row", row.Number).Str("email", row.Email).Msg("Import row insert failed")
			result.Errors = append(result.Errors, model.ImportRowError{Row: row.Number, Email: row.Email, Message: MsgInsertFailed})
			continue
		}
		result.SuccessCount++
	}

	sort.SliceStable(result.Errors, func(i, j int) bool {
		return result.Errors[i].Row < result.Errors[j].Row
	})

	s.metrics.AddImportRows(result.SuccessCount, len(result.Errors))
	if result.SuccessCount > 0 {
		s.audit.Record(ctx, actor, model.AuditRolesImported, "user_roles", map[string]int{
			"success_count": result.SuccessCount,
			"error_count":   len(result.Errors),
		})
	}
	s.log.Info().
		Int("imported", result.SuccessCount).
		Int("rejected", len(result.Errors)).
		Msg("Role import finished")
	return result, nil
}
