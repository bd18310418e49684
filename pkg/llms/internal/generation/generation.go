// Package generation holds the pieces every LLM provider shares: prompt context
// bookkeeping, metadata, and JSON schema handling for structured output.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

var ErrEmptyOutput = errors.New("response output is empty")

// Contexts is the prompt context list of a single generator.
type Contexts struct {
	mu    sync.RWMutex
	items []*model.PromptContext
}

func (c *Contexts) Add(ctx context.Context, owner string, messageType model.ContextMessageType, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append(c.items, &model.PromptContext{MessageType: messageType, Content: content})
	logging.NewLogger(ctx).Debugf("%s.AddPromptContext total_contexts=%d", owner, len(c.items))
}

// Snapshot returns the non-empty contexts with trimmed content, in insertion order.
func (c *Contexts) Snapshot() []model.PromptContext {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.PromptContext, 0, len(c.items))
	for _, item := range c.items {
		if item == nil {
			continue
		}
		content := strings.TrimSpace(item.Content)
		if content == "" {
			continue
		}
		out = append(out, model.PromptContext{MessageType: item.MessageType, Content: content})
	}
	return out
}

// SystemText joins every system context into one instruction block.
func SystemText(contexts []model.PromptContext) string {
	parts := make([]string, 0)
	for _, item := range contexts {
		if item.MessageType == model.ContextMessageTypeSystem {
			parts = append(parts, item.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

type Usage struct {
	APICalls        int
	InputTokens     int64
	OutputTokens    int64
	TotalTokens     int64
	CachedTokens    int64
	ReasoningTokens int64
}

func InitMetadata(provider string, modelName string) model.GenerationMetadata {
	if strings.TrimSpace(modelName) == "" {
		modelName = "unknown"
	}

	return model.GenerationMetadata{
		model.MetadataKeyProvider: provider,
		model.MetadataKeyModel:    modelName,
	}
}

func SetLatencyMetadata(meta model.GenerationMetadata, start time.Time) {
	if meta == nil {
		return
	}
	meta[model.MetadataKeyLatencyMs] = strconv.FormatInt(time.Since(start).Milliseconds(), 10)
}

func ApplyUsage(meta model.GenerationMetadata, usage Usage) {
	if meta == nil {
		return
	}
	meta[model.MetadataKeyAPICalls] = strconv.Itoa(usage.APICalls)
	meta[model.MetadataKeyInputTokens] = strconv.FormatInt(usage.InputTokens, 10)
	meta[model.MetadataKeyOutputTokens] = strconv.FormatInt(usage.OutputTokens, 10)
	meta[model.MetadataKeyTotalTokens] = strconv.FormatInt(usage.TotalTokens, 10)
	meta[model.MetadataKeyCachedInputTokens] = strconv.FormatInt(usage.CachedTokens, 10)
	meta[model.MetadataKeyReasoningTokens] = strconv.FormatInt(usage.ReasoningTokens, 10)
}

func ApplyResponse(meta model.GenerationMetadata, responseID string, status string) {
	if meta == nil {
		return
	}
	if strings.TrimSpace(responseID) != "" {
		meta[model.MetadataKeyResponseID] = responseID
	}
	if strings.TrimSpace(status) != "" {
		meta[model.MetadataKeyResponseStatus] = status
	}
}

func ResolveModelName(cfg model.GeneratorConfig, fallback string) string {
	if cfg.Model != nil {
		if name := strings.TrimSpace(*cfg.Model); name != "" {
			return name
		}
	}
	return fallback
}

// Schema reflects T into an inline JSON schema without additional properties.
func Schema[T any]() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var value T
	schemaJSON, err := json.Marshal(reflector.Reflect(value))
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return schemaMap, nil
}

// SchemaInstruction is appended to the prompt for providers without native JSON schema support.
func SchemaInstruction(schema map[string]any) (string, error) {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	return "Return ONLY valid JSON that matches this schema. Do not include markdown fences.\n" + string(schemaJSON), nil
}

// ExtractJSONPayload strips markdown fences and surrounding prose from a model reply.
func ExtractJSONPayload(text string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(trimmed[start : end+1])
	}
	return trimmed
}

func DecodeStructured[T any](text string) (T, error) {
	var out T
	payload := ExtractJSONPayload(text)
	if payload == "" {
		return out, utils.WrapIfNotNil(ErrEmptyOutput)
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return out, utils.WrapIfNotNil(err)
	}
	return out, nil
}

// RejectUnsupported drops an option the provider cannot honor when IgnoreInvalidGeneratorOptions
// is set, and fails otherwise.
func RejectUnsupported(cfg *model.GeneratorConfig, log logging.Logger, provider string) error {
	if cfg.ReasoningLevel == nil {
		return nil
	}
	if !cfg.IgnoreInvalidGeneratorOptions {
		return utils.WrapIfNotNil(errors.New("reasoning level is not supported for " + provider + " provider"))
	}
	if log != nil {
		log.Warnf("ignoring reasoning level for %s provider", provider)
	}
	cfg.ReasoningLevel = nil
	return nil
}
