package openai_response

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

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
	meta := generation.InitMetadata(providerName, resolveModelName(g.cfg))
	defer generation.SetLatencyMetadata(meta, start)

	log := logging.NewLogger(ctx)
	schema, err := generation.Schema[T]()
	if err != nil {
		log.Errorf("error: %v", err)
		return zero, meta, utils.WrapIfNotNil(err)
	}

	textCfg := &responses.ResponseTextConfigParam{
		Format: responses.ResponseFormatTextConfigUnionParam{
			OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
				Name:   "structured_output",
				Schema: schema,
				Strict: openai.Bool(true),
			},
		},
	}

	output, err := g.complete(ctx, meta, textCfg)
	if err != nil {
		log.Errorf("error: %v", err)
		return zero, meta, utils.WrapIfNotNil(err)
	}

	out, err := generation.DecodeStructured[T](output)
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

	output, err := g.complete(ctx, meta, nil)
	if err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	return output, meta, nil
}

func (g *generator) complete(ctx context.Context, meta model.GenerationMetadata, textCfg *responses.ResponseTextConfigParam) (string, error) {
	log := logging.NewLogger(ctx)
	params, err := g.buildParams(log, textCfg)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	log.Infof(
		"prompt_chars=%d input_items=%d model=%q temperature=%v max_tokens=%v reasoning=%v structured=%t",
		len(g.prompt),
		len(params.Input.OfInputItemList),
		params.Model,
		g.cfg.Temperature,
		g.cfg.MaxTokens,
		g.cfg.ReasoningLevel,
		textCfg != nil,
	)

	response, err := g.client.apiClient.Responses.New(ctx, params)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	if response == nil {
		return "", utils.WrapIfNotNil(errors.New("responses API returned nil response"))
	}
	applyResponseMetadata(meta, response)

	output := strings.TrimSpace(response.OutputText())
	if output == "" {
		return "", utils.WrapIfNotNil(generation.ErrEmptyOutput)
	}
	return output, nil
}

func (g *generator) buildParams(log logging.Logger, textCfg *responses.ResponseTextConfigParam) (responses.ResponseNewParams, error) {
	modelName := resolveModelName(g.cfg)
	cfg, err := normalizeGeneratorOptionsForModel(modelName, g.cfg, log)
	if err != nil {
		return responses.ResponseNewParams{}, utils.WrapIfNotNil(err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(modelName),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: buildInputItems(g.prompt, g.contexts.Snapshot()),
		},
	}
	if cfg.Temperature != nil {
		params.Temperature = openai.Float(*cfg.Temperature)
	}
	if cfg.MaxTokens != nil {
		params.MaxOutputTokens = openai.Int(int64(*cfg.MaxTokens))
	}
	if cfg.ReasoningLevel != nil {
		params.Reasoning = shared.ReasoningParam{Effort: mapReasoningLevel(*cfg.ReasoningLevel)}
	}
	if textCfg != nil {
		params.Text = *textCfg
	}
	return params, nil
}

func buildInputItems(prompt string, contexts []model.PromptContext) responses.ResponseInputParam {
	items := make(responses.ResponseInputParam, 0, len(contexts)+1)
	for _, item := range contexts {
		items = append(items, responses.ResponseInputItemParamOfMessage(item.Content, mapContextMessageRole(item.MessageType)))
	}
	return append(items, responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser))
}
