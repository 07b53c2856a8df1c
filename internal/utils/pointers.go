package utils

import "fmt"

func StringPtr(s string) *string {
	return &s
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

const columnPrefixFmt = "%s.%s"

// PrefixColumns qualifies each column with a table alias, e.g. "d.status".
func PrefixColumns(prefix string, columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, v := range columns {
		out = append(out, fmt.Sprintf(columnPrefixFmt, prefix, v))
	}
	return out
}
