package huggingface

import (
	"context"
	"errors"
	"strings"
	"time"

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
	meta := generation.InitMetadata(providerName, resolveModelName(g.cfg))
	defer generation.SetLatencyMetadata(meta, start)

	log := logging.NewLogger(ctx)
	schema, err := generation.Schema[T]()
	if err != nil {
		log.Errorf("error: %v", err)
		return zero, meta, utils.WrapIfNotNil(err)
	}
	instruction, err := generation.SchemaInstruction(schema)
	if err != nil {
		log.Errorf("error: %v", err)
		return zero, meta, utils.WrapIfNotNil(err)
	}

	text, err := g.complete(ctx, meta, instruction)
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
	meta := generation.InitMetadata(providerName, resolveModelName(g.cfg))
	defer generation.SetLatencyMetadata(meta, start)

	text, err := g.complete(ctx, meta, "")
	if err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	return text, meta, nil
}

func (g *generator) complete(ctx context.Context, meta model.GenerationMetadata, promptSuffix string) (string, error) {
	log := logging.NewLogger(ctx)
	cfg := g.cfg
	if err := generation.RejectUnsupported(&cfg, log, providerName); err != nil {
		return "", utils.WrapIfNotNil(err)
	}

	client, err := newAPIClient(cfg)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}

	prompt := g.prompt
	if strings.TrimSpace(promptSuffix) != "" {
		prompt += "\n\n" + promptSuffix
	}
	request := chatCompletionRequest{
		Model:       resolveModelName(cfg),
		Messages:    buildMessages(prompt, g.contexts.Snapshot()),
		MaxTokens:   resolveMaxTokens(cfg),
		Temperature: cfg.Temperature,
	}
	log.Infof("prompt_chars=%d messages=%d model=%q", len(prompt), len(request.Messages), request.Model)

	response, err := client.createChatCompletion(ctx, request)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	applyHuggingFaceMetadata(meta, response)

	text := strings.TrimSpace(extractTextFromResponse(response))
	if text == "" {
		return "", utils.WrapIfNotNil(generation.ErrEmptyOutput)
	}
	return text, nil
}

func buildMessages(prompt string, contexts []model.PromptContext) []chatMessage {
	messages := make([]chatMessage, 0, len(contexts)+1)
	for _, item := range contexts {
		messages = append(messages, chatMessage{Role: mapRole(item.MessageType), Content: item.Content})
	}
	return append(messages, chatMessage{Role: "user", Content: prompt})
}

func mapRole(messageType model.ContextMessageType) string {
	switch messageType {
	case model.ContextMessageTypeSystem:
		return "system"
	case model.ContextMessageTypeAssistant:
		return "assistant"
	default:
		return "user"
	}
}

func extractTextFromResponse(response *chatCompletionResponse) string {
	if response == nil || len(response.Choices) == 0 {
		return ""
	}
	return response.Choices[0].Message.Content
}
