package mailer

import "strings"

// SplitAddresses splits a comma or semicolon separated address list.
// Surrounding whitespace and empty entries are dropped. Returns nil for an
// empty list.
func SplitAddresses(list string) []string {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ';'
	})

	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
