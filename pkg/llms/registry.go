// Package llms selects a content generation backend by name.
package llms

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/anthropic"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/bedrock"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/gemini"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/huggingface"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/ollama"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/openai_response"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const DefaultProvider = "openai"

// Provider bundles the generator constructors the script writer needs from one backend.
type Provider struct {
	Name         string
	NewFactSheet model.NewStructureContentGeneratorFunc[model.FactSheet]
	NewText      model.NewStringContentGeneratorFunc
}

var registry = map[string]Provider{
	"openai": {
		Name:         "openai",
		NewFactSheet: openai_response.NewStructureContentGenerator[model.FactSheet],
		NewText:      openai_response.NewStringContentGenerator,
	},
	"gemini": {
		Name:         "gemini",
		NewFactSheet: gemini.NewStructureContentGenerator[model.FactSheet],
		NewText:      gemini.NewStringContentGenerator,
	},
	"bedrock": {
		Name:         "bedrock",
		NewFactSheet: bedrock.NewStructureContentGenerator[model.FactSheet],
		NewText:      bedrock.NewStringContentGenerator,
	},
	"ollama": {
		Name:         "ollama",
		NewFactSheet: ollama.NewStructureContentGenerator[model.FactSheet],
		NewText:      ollama.NewStringContentGenerator,
	},
	"anthropic": {
		Name:         "anthropic",
		NewFactSheet: anthropic.NewStructureContentGenerator[model.FactSheet],
		NewText:      anthropic.NewStringContentGenerator,
	},
	"huggingface": {
		Name:         "huggingface",
		NewFactSheet: huggingface.NewStructureContentGenerator[model.FactSheet],
		NewText:      huggingface.NewStringContentGenerator,
	},
}

var aliases = map[string]string{
	"openai_response": "openai",
	"hf":              "huggingface",
	"claude":          "anthropic",
}

// Lookup resolves a provider name case-insensitively. An empty name selects DefaultProvider.
func Lookup(name string) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultProvider
	}
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}

	provider, ok := registry[key]
	if !ok {
		return Provider{}, utils.WrapIfNotNil(fmt.Errorf("unknown llm provider %q (available: %s)", name, strings.Join(Names(), ", ")))
	}
	return provider, nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
