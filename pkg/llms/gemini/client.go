package gemini

import (
	"context"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/internal/generation"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const (
	providerName               = "gemini"
	defaultGenerationModelName = "gemini-2.5-flash"
)

func newAPIClient(ctx context.Context, cfg model.GeneratorConfig) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
	}

	token := strings.TrimSpace(cfg.AuthToken)
	if token == "" {
		token = strings.TrimSpace(os.Getenv("GEMINI_KEY"))
	}
	if token != "" {
		clientCfg.APIKey = token
	}

	if baseURL := strings.TrimSpace(cfg.URL); baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return client, nil
}

func resolveGenerationModelName(cfg model.GeneratorConfig) string {
	return generation.ResolveModelName(cfg, defaultGenerationModelName)
}

func mapReasoningLevel(level model.ReasoningLevel) genai.ThinkingLevel {
	switch level {
	case model.ReasoningLevelNone:
		return genai.ThinkingLevelMinimal
	case model.ReasoningLevelLow:
		return genai.ThinkingLevelLow
	case model.ReasoningLevelHigh:
		return genai.ThinkingLevelHigh
	default:
		return genai.ThinkingLevelMedium
	}
}

func applyGenerateMetadata(meta model.GenerationMetadata, response *genai.GenerateContentResponse) {
	if response == nil {
		return
	}

	usage := generation.Usage{APICalls: 1}
	if response.UsageMetadata != nil {
		usage.InputTokens = int64(response.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int64(response.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int64(response.UsageMetadata.TotalTokenCount)
		usage.CachedTokens = int64(response.UsageMetadata.CachedContentTokenCount)
		usage.ReasoningTokens = int64(response.UsageMetadata.ThoughtsTokenCount)
	}
	generation.ApplyUsage(meta, usage)

	status := ""
	if len(response.Candidates) > 0 && response.Candidates[0] != nil {
		status = string(response.Candidates[0].FinishReason)
	}
	generation.ApplyResponse(meta, response.ResponseID, status)
}
