package model

import (
	"context"
)

// These are factory methods each llm provider should implement to create content generators.

// NewStructureContentGeneratorFunc is for generators that produce structured output (i.e. JSON that can be unmarshaled into a struct).
type NewStructureContentGeneratorFunc[T any] func(prompt string, opts ...GeneratorOption) (ContentGenerator[T], error)

// NewStringContentGeneratorFunc is for generators that produce simple string output.
type NewStringContentGeneratorFunc func(prompt string, opts ...GeneratorOption) (ContentGenerator[string], error)

type ContentGenerator[T any] interface {
	Generate(ctx context.Context) (T, GenerationMetadata, error)
	AddPromptContext(ctx context.Context, messageType ContextMessageType, content string)
}

type GenerationMetadata map[string]string

const (
	MetadataKeyProvider          = "provider"
	MetadataKeyModel             = "model"
	MetadataKeyLatencyMs         = "latency_ms"
	MetadataKeyInputTokens       = "input_tokens"
	MetadataKeyOutputTokens      = "output_tokens"
	MetadataKeyTotalTokens       = "total_tokens"
	MetadataKeyCachedInputTokens = "cached_input_tokens"
	MetadataKeyReasoningTokens   = "reasoning_tokens"
	MetadataKeyAPICalls          = "api_calls"
	MetadataKeyResponseID        = "response_id"
	MetadataKeyResponseStatus    = "response_status"
)

type PromptContext struct {
	MessageType ContextMessageType
	Content     string
}

type ContextMessageType string

const (
	ContextMessageTypeSystem    ContextMessageType = "system"    //Used to provide instructions or context to the model that is not part of the user input or assistant output.  Such as the desired Persona
	ContextMessageTypeHuman     ContextMessageType = "human"     // Context to the LLM as from a human, but not part of the actual prompt.  For example the scraped article
	ContextMessageTypeAssistant ContextMessageType = "assistant" //Chain responses from the assistant.
)

type GeneratorOption interface {
	apply(*GeneratorConfig)
}

type generatorOptionFunc func(*GeneratorConfig)

func (f generatorOptionFunc) apply(cfg *GeneratorConfig) {
	f(cfg)
}

type GeneratorConfig struct {
	IgnoreInvalidGeneratorOptions bool
	URL                           string
	AuthToken                     string
	Temperature                   *float64
	MaxTokens                     *int
	Model                         *string
	ReasoningLevel                *ReasoningLevel
}

type ReasoningLevel string

const (
	ReasoningLevelNone ReasoningLevel = "none"
	ReasoningLevelLow  ReasoningLevel = "low"
	ReasoningLevelMed  ReasoningLevel = "med"
	ReasoningLevelHigh ReasoningLevel = "high"
)

func ResolveGeneratorOpts(opts ...GeneratorOption) GeneratorConfig {
	cfg := GeneratorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}
	return cfg
}

func WithIgnoreInvalidGeneratorOptions(value bool) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.IgnoreInvalidGeneratorOptions = value
	})
}

func WithURL(value string) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.URL = value
	})
}

func WithAuthToken(value string) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.AuthToken = value
	})
}

func WithTemperature(value float64) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.Temperature = &value
	})
}

func WithMaxTokens(value int) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.MaxTokens = &value
	})
}

func WithModel(value string) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.Model = &value
	})
}

func WithReasoningLevel(level ReasoningLevel) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.ReasoningLevel = &level
	})
}
