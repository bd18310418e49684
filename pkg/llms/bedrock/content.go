package bedrock

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	bedrocktypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

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

// Converse has no native schema mode, so the schema is spelled out in the prompt.
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

	text, err := g.converse(ctx, meta, g.prompt+"\n\n"+instruction)
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

	text, err := g.converse(ctx, meta, g.prompt)
	if err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	return text, meta, nil
}

func (g *generator) converse(ctx context.Context, meta model.GenerationMetadata, prompt string) (string, error) {
	log := logging.NewLogger(ctx)
	cfg := g.cfg
	if err := generation.RejectUnsupported(&cfg, log, providerName); err != nil {
		return "", utils.WrapIfNotNil(err)
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}

	modelName := resolveModelName(cfg)
	system, messages := buildMessages(prompt, g.contexts.Snapshot())
	log.Infof(
		"prompt_chars=%d messages=%d model=%q temperature=%v max_tokens=%v",
		len(prompt),
		len(messages),
		modelName,
		cfg.Temperature,
		cfg.MaxTokens,
	)

	output, err := client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:         aws.String(modelName),
		Messages:        messages,
		System:          system,
		InferenceConfig: buildInferenceConfig(cfg),
	})
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	applyConverseMetadata(meta, output)

	message, ok := output.Output.(*bedrocktypes.ConverseOutputMemberMessage)
	if !ok || message == nil {
		return "", utils.WrapIfNotNil(errors.New("converse output is not a message"))
	}

	text := strings.TrimSpace(extractText(message.Value))
	if text == "" {
		return "", utils.WrapIfNotNil(generation.ErrEmptyOutput)
	}
	return text, nil
}

func buildMessages(prompt string, contexts []model.PromptContext) ([]bedrocktypes.SystemContentBlock, []bedrocktypes.Message) {
	system := make([]bedrocktypes.SystemContentBlock, 0)
	messages := make([]bedrocktypes.Message, 0, len(contexts)+1)

	for _, item := range contexts {
		switch item.MessageType {
		case model.ContextMessageTypeSystem:
			system = append(system, &bedrocktypes.SystemContentBlockMemberText{Value: item.Content})
		case model.ContextMessageTypeAssistant:
			messages = append(messages, textMessage(bedrocktypes.ConversationRoleAssistant, item.Content))
		default:
			messages = append(messages, textMessage(bedrocktypes.ConversationRoleUser, item.Content))
		}
	}

	return system, append(messages, textMessage(bedrocktypes.ConversationRoleUser, prompt))
}

func textMessage(role bedrocktypes.ConversationRole, text string) bedrocktypes.Message {
	return bedrocktypes.Message{
		Role:    role,
		Content: []bedrocktypes.ContentBlock{&bedrocktypes.ContentBlockMemberText{Value: text}},
	}
}

func buildInferenceConfig(cfg model.GeneratorConfig) *bedrocktypes.InferenceConfiguration {
	if cfg.MaxTokens == nil && cfg.Temperature == nil {
		return nil
	}

	inference := &bedrocktypes.InferenceConfiguration{}
	if cfg.MaxTokens != nil {
		inference.MaxTokens = aws.Int32(int32(*cfg.MaxTokens))
	}
	if cfg.Temperature != nil {
		inference.Temperature = aws.Float32(float32(*cfg.Temperature))
	}
	return inference
}

func extractText(message bedrocktypes.Message) string {
	parts := make([]string, 0, len(message.Content))
	for _, block := range message.Content {
		textBlock, ok := block.(*bedrocktypes.ContentBlockMemberText)
		if !ok || textBlock == nil {
			continue
		}
		if value := strings.TrimSpace(textBlock.Value); value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, "\n")
}

func applyConverseMetadata(meta model.GenerationMetadata, output *bedrockruntime.ConverseOutput) {
	if output == nil {
		return
	}

	usage := generation.Usage{APICalls: 1}
	if output.Usage != nil {
		usage.InputTokens = int64(aws.ToInt32(output.Usage.InputTokens))
		usage.OutputTokens = int64(aws.ToInt32(output.Usage.OutputTokens))
		usage.TotalTokens = int64(aws.ToInt32(output.Usage.TotalTokens))
		usage.CachedTokens = int64(aws.ToInt32(output.Usage.CacheReadInputTokens))
	}
	generation.ApplyUsage(meta, usage)
	generation.ApplyResponse(meta, "", string(output.StopReason))
}
