package writer

import (
	"regexp"
)

var nonWordRun = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// TruncateText collapses every run of non-word characters to one space and cuts the
// result to limit runes, marking a cut with "...".
func TruncateText(text string, limit int) string {
	if limit < 1 {
		limit = DefaultMaxInputChars
	}
	collapsed := nonWordRun.ReplaceAllString(text, " ")
	runes := []rune(collapsed)
	if len(runes) <= limit {
		return collapsed
	}
	return string(runes[:limit]) + "..."
}
