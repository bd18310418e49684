package pipeline

import (
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
)

const (
	DefaultTargetDBFS = -20.0
	DefaultProvider   = "speech"
)

type Option interface {
	apply(*Config)
}

type optionFunc func(*Config)

func (f optionFunc) apply(cfg *Config) {
	f(cfg)
}

// Config is the request-independent part of a run.
type Config struct {
	TargetDBFS        float64
	NormalizeBookends bool
	// Concurrency bounds in-flight synthesis calls. Values below 1 mean sequential.
	Concurrency int
	// RequestsPerSecond throttles synthesis calls when positive.
	RequestsPerSecond float64
	AbortOnFailure    bool
	OutputDir         string
	Encoder           audio.Encoder
	Observer          Observer
	// ProviderName labels failures that the synthesizer did not classify itself.
	ProviderName string
}

func ResolveConfig(opts ...Option) Config {
	cfg := Config{
		TargetDBFS:   DefaultTargetDBFS,
		Concurrency:  1,
		ProviderName: DefaultProvider,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(&cfg)
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Encoder == nil {
		cfg.Encoder = audio.NewMP3Encoder("", "")
	}
	return cfg
}

func WithTargetLoudness(dbfs float64) Option {
	return optionFunc(func(cfg *Config) {
		cfg.TargetDBFS = dbfs
	})
}

func WithNormalizeBookends(value bool) Option {
	return optionFunc(func(cfg *Config) {
		cfg.NormalizeBookends = value
	})
}

func WithConcurrency(value int) Option {
	return optionFunc(func(cfg *Config) {
		cfg.Concurrency = value
	})
}

func WithRequestsPerSecond(value float64) Option {
	return optionFunc(func(cfg *Config) {
		cfg.RequestsPerSecond = value
	})
}

func WithAbortOnFailure(value bool) Option {
	return optionFunc(func(cfg *Config) {
		cfg.AbortOnFailure = value
	})
}

func WithOutputDir(dir string) Option {
	return optionFunc(func(cfg *Config) {
		cfg.OutputDir = dir
	})
}

func WithEncoder(encoder audio.Encoder) Option {
	return optionFunc(func(cfg *Config) {
		cfg.Encoder = encoder
	})
}

func WithObserver(observer Observer) Option {
	return optionFunc(func(cfg *Config) {
		cfg.Observer = observer
	})
}

func WithProviderName(name string) Option {
	return optionFunc(func(cfg *Config) {
		cfg.ProviderName = name
	})
}
