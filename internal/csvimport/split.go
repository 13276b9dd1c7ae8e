// Package csvimport parses the role import sheet: a header row naming
// ชื่อ, อีเมล, รหัสผ่าน, สถานะ followed by one principal per row.
package csvimport

import "strings"

// SplitLine splits one comma-separated line.
//
// A double quote toggles quoted mode and is dropped; commas inside quotes do
// not split. There is no escaped-quote form, so `""` simply toggles twice.
// Fields are trimmed of surrounding whitespace.
func SplitLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}
