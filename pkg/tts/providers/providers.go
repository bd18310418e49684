package providers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts/elevenlabs"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts/gemini"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts/openai"
)

const DefaultProvider = "elevenlabs"

type constructor func(opts model.SpeechOptions) (tts.Synthesizer, error)

var registry = map[string]constructor{
	"elevenlabs": func(opts model.SpeechOptions) (tts.Synthesizer, error) {
		return elevenlabs.NewSynthesizer(opts)
	},
	"openai": func(opts model.SpeechOptions) (tts.Synthesizer, error) {
		return openai.NewSynthesizer(opts)
	},
	"gemini": func(opts model.SpeechOptions) (tts.Synthesizer, error) {
		return gemini.NewSynthesizer(opts)
	},
}

// New returns the synthesizer registered under name. An empty name selects DefaultProvider.
func New(name string, opts model.SpeechOptions) (tts.Synthesizer, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultProvider
	}

	build, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unknown speech provider %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return build(opts)
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
