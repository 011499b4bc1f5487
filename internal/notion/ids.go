package notion

import (
	"regexp"
	"strings"
)

var compactIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// NormalizeID converts a 32 hex digit identifier into the dashed UUID layout the API
// expects. Other input is returned trimmed.
func NormalizeID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	compact := strings.ReplaceAll(trimmed, "-", "")
	if !compactIDPattern.MatchString(compact) {
		return trimmed
	}
	return compact[0:8] + "-" + compact[8:12] + "-" + compact[12:16] + "-" + compact[16:20] + "-" + compact[20:]
}

// CompactID strips dashes and lowercases, giving a stable map key for page ids.
func CompactID(raw string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "-", ""))
}
