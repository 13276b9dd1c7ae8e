package csvimport

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidHeader is returned when the header row lacks an expected column.
var ErrInvalidHeader = errors.New("invalid import header")

// ExpectedHeaders are the column labels of the import sheet, in canonical order.
var ExpectedHeaders = []string{"ชื่อ", "อีเมล", "รหัสผ่าน", "สถานะ"}

// normalizeHeader applies NFC, drops every whitespace rune, and lower-cases.
func normalizeHeader(s string) string {
	s = norm.NFC.String(strings.TrimPrefix(s, "\uFEFF"))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// headersMatch is a loose, order-insensitive comparison: either side may
// contain the other.
func headersMatch(expected, actual string) bool {
	if actual == "" {
		return false
	}
	return strings.Contains(actual, expected) || strings.Contains(expected, actual)
}

// ValidateHeader checks that every expected label matches some actual column.
func ValidateHeader(actual []string) error {
	normalized := make([]string, len(actual))
	for i, a := range actual {
		normalized[i] = normalizeHeader(a)
	}

	var missing []string
	for _, e := range ExpectedHeaders {
		want := normalizeHeader(e)
		found := false
		for _, a := range normalized {
			if headersMatch(want, a) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, e)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidHeader, strings.Join(missing, ", "))
	}
	return nil
}
