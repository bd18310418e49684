// Package writer turns research material into fact sheets and podcast scripts with an LLM.
package writer

import (
	"errors"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const (
	DefaultFactCount     = 20
	DefaultMaxInputChars = 30000
	RequiredHosts        = 3
)

var (
	ErrNoContent   = errors.New("no research content to extract facts from")
	ErrNoFacts     = errors.New("no facts extracted")
	ErrEmptyDraft  = errors.New("drafted script contains no speaker lines")
	ErrHostsNeeded = errors.New("show profile needs three hosts with names")
)

type Option interface {
	apply(*Config)
}

type optionFunc func(*Config)

func (f optionFunc) apply(cfg *Config) {
	f(cfg)
}

type Config struct {
	FactCount        int
	MaxInputChars    int
	GeneratorOptions []model.GeneratorOption
}

func ResolveConfig(opts ...Option) Config {
	cfg := Config{
		FactCount:     DefaultFactCount,
		MaxInputChars: DefaultMaxInputChars,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(&cfg)
	}
	if cfg.FactCount < 1 {
		cfg.FactCount = DefaultFactCount
	}
	if cfg.MaxInputChars < 1 {
		cfg.MaxInputChars = DefaultMaxInputChars
	}
	return cfg
}

func WithFactCount(count int) Option {
	return optionFunc(func(cfg *Config) {
		cfg.FactCount = count
	})
}

func WithMaxInputChars(limit int) Option {
	return optionFunc(func(cfg *Config) {
		cfg.MaxInputChars = limit
	})
}

// WithGeneratorOptions forwards model, key and sampling options to every LLM call.
func WithGeneratorOptions(opts ...model.GeneratorOption) Option {
	return optionFunc(func(cfg *Config) {
		cfg.GeneratorOptions = append(cfg.GeneratorOptions, opts...)
	})
}

type Writer struct {
	provider llms.Provider
	cfg      Config
}

// New looks the provider up in the llms registry.
func New(providerName string, opts ...Option) (*Writer, error) {
	provider, err := llms.Lookup(providerName)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return NewWithProvider(provider, opts...)
}

func NewWithProvider(provider llms.Provider, opts ...Option) (*Writer, error) {
	if provider.NewFactSheet == nil || provider.NewText == nil {
		return nil, utils.WrapIfNotNil(errors.New("provider " + provider.Name + " is missing generator constructors"))
	}
	return &Writer{provider: provider, cfg: ResolveConfig(opts...)}, nil
}

func (w *Writer) ProviderName() string {
	return w.provider.Name
}
