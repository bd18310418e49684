package anthropic

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

	text, err := g.send(ctx, meta, g.prompt+"\n\n"+instruction)
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

	text, err := g.send(ctx, meta, g.prompt)
	if err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	return text, meta, nil
}

func (g *generator) send(ctx context.Context, meta model.GenerationMetadata, prompt string) (string, error) {
	log := logging.NewLogger(ctx)
	cfg := g.cfg
	if err := generation.RejectUnsupported(&cfg, log, providerName); err != nil {
		return "", utils.WrapIfNotNil(err)
	}

	client, err := newAPIClient(cfg)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}

	request := buildRequest(cfg, prompt, g.contexts.Snapshot())
	log.Infof("prompt_chars=%d messages=%d model=%q max_tokens=%d", len(prompt), len(request.Messages), request.Model, request.MaxTokens)

	response, err := client.createMessage(ctx, request)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	applyMessageMetadata(meta, response)

	text := strings.TrimSpace(extractText(response))
	if text == "" {
		return "", utils.WrapIfNotNil(generation.ErrEmptyOutput)
	}
	return text, nil
}

func buildRequest(cfg model.GeneratorConfig, prompt string, contexts []model.PromptContext) messageRequest {
	messages := make([]message, 0, len(contexts)+1)
	for _, item := range contexts {
		switch item.MessageType {
		case model.ContextMessageTypeSystem:
			continue
		case model.ContextMessageTypeAssistant:
			messages = append(messages, textMessage("assistant", item.Content))
		default:
			messages = append(messages, textMessage("user", item.Content))
		}
	}

	return messageRequest{
		Model:       resolveModelName(cfg),
		MaxTokens:   resolveMaxTokens(cfg),
		Temperature: cfg.Temperature,
		System:      generation.SystemText(contexts),
		Messages:    append(messages, textMessage("user", prompt)),
	}
}

func textMessage(role string, text string) message {
	return message{Role: role, Content: []contentBlock{{Type: "text", Text: text}}}
}

func extractText(response *messageResponse) string {
	if response == nil {
		return ""
	}
	parts := make([]string, 0, len(response.Content))
	for _, block := range response.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}
