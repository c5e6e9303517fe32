// Package ingestion turns raw job-board exports into the cleaned dataset the
// training and NLP commands consume.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	spaceRun     = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLineRun = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes line endings and whitespace while keeping paragraph and
// bullet structure. Output is deterministic for a given input.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := strings.Join(cleaned, "\n")
	result = blankLineRun.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	if isBulletLine(trimmed) {
		// normalize the marker, keep the item text
		return "- " + spaceRun.ReplaceAllString(strings.TrimSpace(trimmed[bulletLen(trimmed):]), " ")
	}
	return spaceRun.ReplaceAllString(trimmed, " ")
}

var bulletMarkers = []string{"- ", "* ", "• ", "· "}

func isBulletLine(line string) bool {
	return bulletLen(line) > 0
}

func bulletLen(line string) int {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(line, m) {
			return len(m)
		}
	}
	return 0
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
