package csvimport

import (
	"errors"
	"strings"

	"github.com/schoolsite/portal-backend/internal/model"
)

// Row-level error messages shown to the admin.
const (
	MsgIncompleteRow = "ข้อมูลไม่ครบ"
	MsgInvalidEmail  = "อีเมลไม่ถูกต้อง"
	MsgInvalidStatus = "สถานะไม่ถูกต้อง"
)

// ErrNoRows is returned when the sheet has no header row.
var ErrNoRows = errors.New("import sheet is empty")

// Row is a validated principal from the import sheet.
// Number is the 1-based data row, not counting the header.
type Row struct {
	Number   int
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// Sheet is the parsed import: valid rows plus per-row errors.
type Sheet struct {
	Rows   []Row
	Errors []model.ImportRowError
}

// ParseRecords validates the header and every data row.
// Invalid rows are recorded and skipped; only a bad header aborts.
func ParseRecords(records [][]string) (*Sheet, error) {
	if len(records) == 0 {
		return nil, ErrNoRows
	}
	if err := ValidateHeader(records[0]); err != nil {
		return nil, err
	}

	sheet := &Sheet{}
	number := 0
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		number++
		row, msg := parseRow(number, rec)
		if msg != "" {
			sheet.Errors = append(sheet.Errors, model.ImportRowError{
				Row:     number,
				Email:   field(rec, 1),
				Message: msg,
			})
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

func parseRow(number int, rec []string) (Row, string) {
	if len(rec) < len(ExpectedHeaders) {
		return Row{}, MsgIncompleteRow
	}
	row := Row{
		Number:   number,
		Name:     field(rec, 0),
		Email:    field(rec, 1),
		Password: field(rec, 2),
	}
	status := field(rec, 3)
	if row.Name == "" || row.Email == "" || status == "" {
		return Row{}, MsgIncompleteRow
	}
	if !strings.Contains(row.Email, "@") {
		return Row{}, MsgInvalidEmail
	}
	role, ok := model.RoleFromThaiLabel(status)
	if !ok {
		return Row{}, MsgInvalidStatus
	}
	row.Role = role
	return row, ""
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
