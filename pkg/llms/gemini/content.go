package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/internal/generation"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

type generator struct {
	prompt   string
	cfg      model.GeneratorConfig
	contexts generation.Contexts
}

func (g *generator) AddPromptContext(ctx context.Context, messageType model.ContextMessageType, content string) {
	g.contexts.Add(ctx, providerName, messageType, content)
}

type structuredGenerator[T any] struct {
	generator
}

type textGenerator struct {
	generator
}

func NewStructureContentGenerator[T any](prompt string, opts ...model.GeneratorOption) (model.ContentGenerator[T], error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, utils.WrapIfNotNil(errors.New("prompt is required"))
	}
	return &structuredGenerator[T]{generator{prompt: prompt, cfg: model.ResolveGeneratorOpts(opts...)}}, nil
}

func NewStringContentGenerator(prompt string, opts ...model.GeneratorOption) (model.ContentGenerator[string], error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, utils.WrapIfNotNil(errors.New("prompt is required"))
	}
	return &textGenerator{generator{prompt: prompt, cfg: model.ResolveGeneratorOpts(opts...)}}, nil
}

func (g *structuredGenerator[T]) Generate(ctx context.Context) (T, model.GenerationMetadata, error) {
	var zero T
	start := time.Now()
	meta := generation.InitMetadata(providerName, resolveGenerationModelName(g.cfg))
	defer generation.SetLatencyMetadata(meta, start)

	log := logging.NewLogger(ctx)
	schema, err := generation.Schema[T]()
	if err != nil {
		log.Errorf("error: %v", err)
		return zero, meta, utils.WrapIfNotNil(err)
	}

	text, err := g.complete(ctx, meta, schema)
	if err != nil {
		log.Errorf("error: %v", err)
		return zero, meta, utils.WrapIfNotNil(err)
	}

	out, err := generation.DecodeStructured[T](text)
	if err != nil {
		log.Errorf("error: %v", err)
		return zero, meta, utils.WrapIfNotNil(err)
	}
	return out, meta, nil
}

func (g *textGenerator) Generate(ctx context.Context) (string, model.GenerationMetadata, error) {
	start := time.Now()
	meta := generation.InitMetadata(providerName, resolveGenerationModelName(g.cfg))
	defer generation.SetLatencyMetadata(meta, start)

	text, err := g.complete(ctx, meta, nil)
	if err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	return text, meta, nil
}

func (g *generator) complete(ctx context.Context, meta model.GenerationMetadata, schema map[string]any) (string, error) {
	log := logging.NewLogger(ctx)
	modelName := resolveGenerationModelName(g.cfg)
	contexts := g.contexts.Snapshot()

	config := buildGenerateContentConfig(g.cfg, contexts)
	if schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseJsonSchema = schema
	}

	client, err := newAPIClient(ctx, g.cfg)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}

	log.Infof(
		"prompt_chars=%d context_count=%d model=%q temperature=%v max_tokens=%v reasoning=%v structured=%t",
		len(g.prompt),
		len(contexts),
		modelName,
		g.cfg.Temperature,
		g.cfg.MaxTokens,
		g.cfg.ReasoningLevel,
		schema != nil,
	)

	response, err := client.Models.GenerateContent(ctx, modelName, buildContents(g.prompt, contexts), config)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	applyGenerateMetadata(meta, response)

	text := strings.TrimSpace(response.Text())
	if text == "" {
		return "", utils.WrapIfNotNil(generation.ErrEmptyOutput)
	}
	return text, nil
}

// buildContents turns non-system contexts into turns. System contexts go to the system instruction.
func buildContents(prompt string, contexts []model.PromptContext) []*genai.Content {
	contents := make([]*genai.Content, 0, len(contexts)+1)
	for _, item := range contexts {
		switch item.MessageType {
		case model.ContextMessageTypeSystem:
			continue
		case model.ContextMessageTypeAssistant:
			contents = append(contents, genai.NewContentFromText(item.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(item.Content, genai.RoleUser))
		}
	}
	return append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
}

func buildGenerateContentConfig(cfg model.GeneratorConfig, contexts []model.PromptContext) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if system := generation.SystemText(contexts); system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if cfg.Temperature != nil {
		temp := float32(*cfg.Temperature)
		config.Temperature = &temp
	}
	if cfg.MaxTokens != nil {
		config.MaxOutputTokens = int32(*cfg.MaxTokens)
	}
	if cfg.ReasoningLevel != nil {
		config.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingLevel: mapReasoningLevel(*cfg.ReasoningLevel),
		}
	}
	return config
}
