package script

import (
	"strings"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

// Resolver looks up voice ids by speaker display name. It holds its own copy of
// the voice map so callers may keep editing theirs.
type Resolver struct {
	voices model.VoiceMap
}

func NewResolver(voices model.VoiceMap) *Resolver {
	normalized := make(model.VoiceMap, len(voices))
	for name, voice := range voices {
		normalized[strings.TrimSpace(name)] = strings.TrimSpace(voice)
	}
	return &Resolver{voices: normalized}
}

func (r *Resolver) Resolve(speaker string) (string, bool) {
	voice, ok := r.voices[strings.TrimSpace(speaker)]
	if !ok || voice == "" {
		return "", false
	}
	return voice, true
}

// Unmapped lists the distinct speakers of utterances that have no voice, in order of first appearance.
func (r *Resolver) Unmapped(utterances []model.Utterance) []string {
	seen := make(map[string]struct{})
	missing := make([]string, 0)
	for _, utterance := range utterances {
		if _, ok := r.Resolve(utterance.Speaker); ok {
			continue
		}
		if _, dup := seen[utterance.Speaker]; dup {
			continue
		}
		seen[utterance.Speaker] = struct{}{}
		missing = append(missing, utterance.Speaker)
	}
	return missing
}
