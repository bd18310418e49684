package script

import (
	"sort"
	"strings"
)

// FormatScript replaces placeholder speaker names at the start of lines,
// e.g. "Host 1:" becomes "Ana:". Longer placeholders are replaced first so
// "Host 10" is not clobbered by "Host 1".
func FormatScript(text string, renames map[string]string) string {
	if len(renames) == 0 {
		return text
	}

	placeholders := make([]string, 0, len(renames))
	for placeholder := range renames {
		if strings.TrimSpace(placeholder) != "" {
			placeholders = append(placeholders, placeholder)
		}
	}
	sort.Slice(placeholders, func(i, j int) bool {
		return len(placeholders[i]) > len(placeholders[j])
	})

	var out strings.Builder
	for line := range strings.Lines(text) {
		speaker, rest, found := strings.Cut(line, speakerDelimiter)
		if found {
			trimmed := strings.TrimSpace(speaker)
			for _, placeholder := range placeholders {
				if strings.EqualFold(trimmed, strings.TrimSpace(placeholder)) {
					line = renames[placeholder] + speakerDelimiter + rest
					break
				}
			}
		}
		out.WriteString(line)
	}
	return out.String()
}

// Speakers returns the distinct speaker names of a script in order of first appearance.
func Speakers(text string) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for utterance := range Split(text) {
		if _, ok := seen[utterance.Speaker]; ok {
			continue
		}
		seen[utterance.Speaker] = struct{}{}
		names = append(names, utterance.Speaker)
	}
	return names
}
