package survey

// normalize.go converts raw export cells into typed field values.
//
// None of these functions fail: a value that cannot be interpreted becomes the
// zero value (or nil for optional fields). Exports are hand-edited
// spreadsheets and a single malformed cell must not cost the whole row.

import (
	"strconv"
	"strings"
	"time"
)

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace and the Excel text-formula wrapper (="...").
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}

// SplitTags splits a comma-separated tag cell into a trimmed ordered set.
// Empty segments and repeated tags are dropped. The result is never nil so it
// serializes as [] rather than null.
func SplitTags(s string) []string {
	tags := make([]string, 0, 2)
	if strings.TrimSpace(s) == "" {
		return tags
	}
	seen := make(map[string]struct{}, 2)
	for _, part := range strings.Split(s, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// ParseBool accepts exactly the literal "true". Any other text, including
// "True" and "yes", is false.
func ParseBool(s string) bool {
	return s == "true"
}

// ParseInt parses a base-10 integer, reporting false when the cell is empty
// or malformed.
func ParseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// timestampLayouts are the formats seen in survey exports, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
	"2006-01-02",
	"1/2/2006",
}

// ParseTimestamp parses a submission timestamp. Layouts without a zone are
// read as UTC. Returns nil for empty or unparseable cells.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}
