package openai_response

import (
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/internal/generation"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const (
	defaultModelName = "gpt-5-mini"
	providerName     = "openai_response"
)

type client struct {
	apiClient openai.Client
}

func newClient(cfg model.GeneratorConfig) *client {
	requestOpts := make([]option.RequestOption, 0, 2)
	if cfg.URL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(cfg.URL))
	}
	if cfg.AuthToken != "" {
		requestOpts = append(requestOpts, option.WithAPIKey(cfg.AuthToken))
	}
	return &client{apiClient: openai.NewClient(requestOpts...)}
}

func resolveModelName(cfg model.GeneratorConfig) string {
	return generation.ResolveModelName(cfg, defaultModelName)
}

func isReasoningModel(modelName string) bool {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if name == "" {
		return false
	}

	return strings.HasPrefix(name, "o1") ||
		strings.HasPrefix(name, "o3") ||
		strings.HasPrefix(name, "o4") ||
		strings.HasPrefix(name, "gpt-5")
}

// normalizeGeneratorOptionsForModel drops or rejects options the chosen model cannot take.
func normalizeGeneratorOptionsForModel(modelName string, cfg model.GeneratorConfig, log logging.Logger) (model.GeneratorConfig, error) {
	reasoningModel := isReasoningModel(modelName)

	if cfg.Temperature != nil && reasoningModel {
		if !cfg.IgnoreInvalidGeneratorOptions {
			return cfg, utils.WrapIfNotNil(fmt.Errorf("temperature is not supported for reasoning model %q", modelName))
		}
		if log != nil {
			log.Warnf("ignoring temperature for reasoning model %q", modelName)
		}
		cfg.Temperature = nil
	}

	if cfg.ReasoningLevel != nil && !reasoningModel {
		if !cfg.IgnoreInvalidGeneratorOptions {
			return cfg, utils.WrapIfNotNil(fmt.Errorf("reasoning effort is not supported for non-reasoning model %q", modelName))
		}
		if log != nil {
			log.Warnf("ignoring reasoning effort for non-reasoning model %q", modelName)
		}
		cfg.ReasoningLevel = nil
	}

	return cfg, nil
}

func mapReasoningLevel(level model.ReasoningLevel) shared.ReasoningEffort {
	switch level {
	case model.ReasoningLevelNone:
		return shared.ReasoningEffortNone
	case model.ReasoningLevelLow:
		return shared.ReasoningEffortLow
	case model.ReasoningLevelHigh:
		return shared.ReasoningEffortHigh
	default:
		return shared.ReasoningEffortMedium
	}
}

func mapContextMessageRole(messageType model.ContextMessageType) responses.EasyInputMessageRole {
	switch messageType {
	case model.ContextMessageTypeSystem:
		return responses.EasyInputMessageRoleSystem
	case model.ContextMessageTypeAssistant:
		return responses.EasyInputMessageRoleAssistant
	default:
		return responses.EasyInputMessageRoleUser
	}
}

func applyResponseMetadata(meta model.GenerationMetadata, response *responses.Response) {
	if response == nil {
		return
	}
	generation.ApplyUsage(meta, generation.Usage{
		APICalls:        1,
		InputTokens:     response.Usage.InputTokens,
		OutputTokens:    response.Usage.OutputTokens,
		TotalTokens:     response.Usage.TotalTokens,
		CachedTokens:    response.Usage.InputTokensDetails.CachedTokens,
		ReasoningTokens: response.Usage.OutputTokensDetails.ReasoningTokens,
	})
	generation.ApplyResponse(meta, response.ID, string(response.Status))
}
