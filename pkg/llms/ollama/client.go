package ollama

import (
	"os"
	"strings"

	ollamasdk "github.com/rozoomcool/go-ollama-sdk"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/internal/generation"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

const (
	providerName               = "ollama"
	defaultGenerationModelName = "llama3.1"
	defaultBaseURL             = "http://localhost:11434"
)

type client struct {
	apiClient *ollamasdk.OllamaClient
	baseURL   string
}

func newClient(cfg model.GeneratorConfig) *client {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		baseURL = strings.TrimSpace(os.Getenv("OLLAMA_BASE_URL"))
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &client{
		apiClient: ollamasdk.NewClient(baseURL),
		baseURL:   baseURL,
	}
}

func resolveGenerationModelName(cfg model.GeneratorConfig) string {
	return generation.ResolveModelName(cfg, defaultGenerationModelName)
}
