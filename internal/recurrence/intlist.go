package recurrence

import (
	"strconv"
	"strings"
)

// FormatIntList serializes integers into the textual list form used
// by the recurrence columns, e.g. "[1, 3, 5]".  An empty slice
// serializes to "", which is the unset encoding: absence, not a
// present-but-empty sentinel.
func FormatIntList(vals []int) string {
	if len(vals) == 0 {
		return ""
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ParseIntList parses the textual list form back into integers.  The
// parse is deliberately tolerant: brackets and whitespace are
// stripped, tokens are split on commas, and tokens that do not parse
// as integers are skipped so that malformed stored data never breaks
// the read path.
func ParseIntList(s string) []int {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var vals []int
	for _, tok := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			continue
		}
		vals = append(vals, n)
	}
	return vals
}
