package ollama

import (
	"context"
	"errors"
	"strings"
	"time"

	ollamasdk "github.com/rozoomcool/go-ollama-sdk"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/internal/generation"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

type generator struct {
	client   *client
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
	cfg := model.ResolveGeneratorOpts(opts...)
	return &structuredGenerator[T]{generator{client: newClient(cfg), prompt: prompt, cfg: cfg}}, nil
}

func NewStringContentGenerator(prompt string, opts ...model.GeneratorOption) (model.ContentGenerator[string], error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, utils.WrapIfNotNil(errors.New("prompt is required"))
	}
	cfg := model.ResolveGeneratorOpts(opts...)
	return &textGenerator{generator{client: newClient(cfg), prompt: prompt, cfg: cfg}}, nil
}

func (g *structuredGenerator[T]) Generate(ctx context.Context) (T, model.GenerationMetadata, error) {
	var zero T
	start := time.Now()
	modelName := resolveGenerationModelName(g.cfg)
	meta := generation.InitMetadata(providerName, modelName)
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

	messages := append(g.messages(), ollamasdk.ChatMessage{Role: "user", Content: instruction})
	text, err := g.chat(ctx, modelName, messages)
	if err != nil {
		log.Errorf("error: %v", err)
		return zero, meta, utils.WrapIfNotNil(err)
	}

	generation.ApplyUsage(meta, generation.Usage{APICalls: 1})
	out, err := generation.DecodeStructured[T](text)
	if err == nil {
		return out, meta, nil
	}

	// Local models often wrap JSON in prose; one reformat round usually fixes it.
	log.Warnf("structured output parse failed, attempting repair: %v", err)
	repaired, repairErr := g.chat(ctx, modelName, []ollamasdk.ChatMessage{
		{Role: "system", Content: "You are a strict JSON formatter."},
		{Role: "user", Content: "Reformat the following output into valid JSON. " + instruction + "\n\nOutput:\n" + text},
	})
	if repairErr != nil {
		log.Errorf("error: %v", repairErr)
		return zero, meta, utils.WrapIfNotNil(err)
	}
	generation.ApplyUsage(meta, generation.Usage{APICalls: 2})

	out, err = generation.DecodeStructured[T](repaired)
	if err != nil {
		log.Errorf("error: %v", err)
		return zero, meta, utils.WrapIfNotNil(err)
	}
	return out, meta, nil
}

func (g *textGenerator) Generate(ctx context.Context) (string, model.GenerationMetadata, error) {
	start := time.Now()
	modelName := resolveGenerationModelName(g.cfg)
	meta := generation.InitMetadata(providerName, modelName)
	defer generation.SetLatencyMetadata(meta, start)

	text, err := g.chat(ctx, modelName, g.messages())
	if err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	generation.ApplyUsage(meta, generation.Usage{APICalls: 1})
	return text, meta, nil
}

func (g *generator) messages() []ollamasdk.ChatMessage {
	contexts := g.contexts.Snapshot()
	messages := make([]ollamasdk.ChatMessage, 0, len(contexts)+1)
	for _, item := range contexts {
		messages = append(messages, ollamasdk.ChatMessage{Role: mapRole(item.MessageType), Content: item.Content})
	}
	return append(messages, ollamasdk.ChatMessage{Role: "user", Content: g.prompt})
}

// chat makes one SDK call. The SDK takes no context, so cancellation is only checked
// before the request.
func (g *generator) chat(ctx context.Context, modelName string, messages []ollamasdk.ChatMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cfg := g.cfg
	log := logging.NewLogger(ctx)
	if err := generation.RejectUnsupported(&cfg, log, providerName); err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	if cfg.Temperature != nil || cfg.MaxTokens != nil {
		log.Debugf("ollama chat ignores sampling options temperature=%v max_tokens=%v", cfg.Temperature, cfg.MaxTokens)
	}

	log.Infof("messages=%d model=%q base_url=%q", len(messages), modelName, g.client.baseURL)
	text, err := g.client.apiClient.Chat(modelName, messages)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", utils.WrapIfNotNil(generation.ErrEmptyOutput)
	}
	return text, nil
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
