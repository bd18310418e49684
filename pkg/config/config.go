package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/pipeline"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

type KeysConfig struct {
	ElevenLabs string `env:"ELEVEN_LABS_API_KEY"`
	OpenAI     string `env:"OPENAI_API_KEY"`
	Gemini     string `env:"GEMINI_KEY"`
	NewsAPI    string `env:"NEWS_API_KEY"`
}

type LLMConfig struct {
	Provider      string `env:"PODCAST_LLM_PROVIDER" envDefault:"openai"`
	Model         string `env:"PODCAST_LLM_MODEL"`
	URL           string `env:"PODCAST_LLM_URL"`
	FactCount     int    `env:"PODCAST_FACT_COUNT" envDefault:"20"`
	MaxInputChars int    `env:"PODCAST_MAX_INPUT_CHARS" envDefault:"30000"`
	// Temperature is left as text so that unset and 0 stay distinct.
	Temperature    string `env:"PODCAST_LLM_TEMPERATURE"`
	MaxTokens      int    `env:"PODCAST_LLM_MAX_TOKENS"`
	ReasoningLevel string `env:"PODCAST_LLM_REASONING"`
	// IgnoreInvalidOptions drops options the model cannot take instead of failing the call.
	IgnoreInvalidOptions bool `env:"PODCAST_LLM_IGNORE_INVALID_OPTIONS" envDefault:"true"`
}

func (c LLMConfig) validate() error {
	if raw := strings.TrimSpace(c.Temperature); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("PODCAST_LLM_TEMPERATURE: %w", err)
		}
		if value < 0 || value > 2 {
			return fmt.Errorf("PODCAST_LLM_TEMPERATURE must be between 0 and 2, got %v", value)
		}
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("PODCAST_LLM_MAX_TOKENS must not be negative, got %d", c.MaxTokens)
	}
	switch model.ReasoningLevel(strings.ToLower(strings.TrimSpace(c.ReasoningLevel))) {
	case "", model.ReasoningLevelNone, model.ReasoningLevelLow, model.ReasoningLevelMed, model.ReasoningLevelHigh:
		return nil
	default:
		return fmt.Errorf("PODCAST_LLM_REASONING must be one of none, low, med, high, got %q", c.ReasoningLevel)
	}
}

type ResearchConfig struct {
	NewsWindow string `env:"PODCAST_NEWS_WINDOW" envDefault:"1d"`
	Language   string `env:"PODCAST_NEWS_LANGUAGE" envDefault:"en-US"`
	Country    string `env:"PODCAST_NEWS_COUNTRY" envDefault:"US"`
}

type SpeechConfig struct {
	Provider        string  `env:"PODCAST_TTS_PROVIDER" envDefault:"elevenlabs"`
	Model           string  `env:"PODCAST_TTS_MODEL"`
	URL             string  `env:"PODCAST_TTS_URL"`
	OutputFormat    string  `env:"PODCAST_TTS_OUTPUT_FORMAT"`
	Instructions    string  `env:"PODCAST_TTS_INSTRUCTIONS"`
	Stability       float64 `env:"PODCAST_VOICE_STABILITY" envDefault:"0.75"`
	SimilarityBoost float64 `env:"PODCAST_VOICE_SIMILARITY_BOOST" envDefault:"0.75"`
}

type AudioConfig struct {
	TargetDBFS        float64 `env:"PODCAST_TARGET_DBFS" envDefault:"-20"`
	NormalizeBookends bool    `env:"PODCAST_NORMALIZE_BOOKENDS" envDefault:"false"`
	Concurrency       int     `env:"PODCAST_CONCURRENCY" envDefault:"1"`
	RequestsPerSecond float64 `env:"PODCAST_REQUESTS_PER_SECOND" envDefault:"0"`
	AbortOnFailure    bool    `env:"PODCAST_ABORT_ON_FAILURE" envDefault:"false"`
	Encoding          string  `env:"PODCAST_OUTPUT_ENCODING" envDefault:"mp3"`
	FFmpegPath        string  `env:"PODCAST_FFMPEG_PATH" envDefault:"ffmpeg"`
	Bitrate           string  `env:"PODCAST_MP3_BITRATE" envDefault:"192k"`
	OutputDir         string  `env:"PODCAST_OUTPUT_DIR"`
	IntroPath         string  `env:"PODCAST_INTRO_PATH"`
	OutroPath         string  `env:"PODCAST_OUTRO_PATH"`
}

type Config struct {
	Keys        KeysConfig
	LLM         LLMConfig
	Speech      SpeechConfig
	Audio       AudioConfig
	Research    ResearchConfig
	DatabaseURL string `env:"PODCAST_DATABASE_URL" envDefault:"sqlite://podcast.db"`
	ListenAddr  string `env:"PODCAST_LISTEN_ADDR" envDefault:":8080"`
	LogLevel    string `env:"PODCAST_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"PODCAST_LOG_FORMAT" envDefault:"text"`
	ShowsFile   string `env:"PODCAST_SHOWS_FILE"`
}

// Load reads the given .env files, skipping missing ones, and then parses the process
// environment. Variables already set in the environment win over file values.
func Load(files ...string) (*Config, error) {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if strings.TrimSpace(file) == "" {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, utils.WrapIfNotNil(err)
		}
		existing = append(existing, file)
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, utils.WrapIfNotNil(err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	if err := cfg.LLM.validate(); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return cfg, nil
}

// SpeechOptions fills in the API key of the selected provider.
func (c *Config) SpeechOptions() model.SpeechOptions {
	stability := c.Speech.Stability
	similarity := c.Speech.SimilarityBoost
	opts := model.SpeechOptions{
		URL:             c.Speech.URL,
		Model:           c.Speech.Model,
		Stability:       &stability,
		SimilarityBoost: &similarity,
		OutputFormat:    c.Speech.OutputFormat,
		Instructions:    c.Speech.Instructions,
	}
	switch strings.ToLower(strings.TrimSpace(c.Speech.Provider)) {
	case "openai":
		opts.AuthToken = c.Keys.OpenAI
	case "gemini":
		opts.AuthToken = c.Keys.Gemini
	default:
		opts.AuthToken = c.Keys.ElevenLabs
	}
	return opts
}

func (c *Config) GeneratorOptions() []model.GeneratorOption {
	opts := make([]model.GeneratorOption, 0, 7)
	opts = append(opts, model.WithIgnoreInvalidGeneratorOptions(c.LLM.IgnoreInvalidOptions))
	if temperature, err := strconv.ParseFloat(strings.TrimSpace(c.LLM.Temperature), 64); err == nil {
		opts = append(opts, model.WithTemperature(temperature))
	}
	if c.LLM.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(c.LLM.MaxTokens))
	}
	if level := strings.ToLower(strings.TrimSpace(c.LLM.ReasoningLevel)); level != "" {
		opts = append(opts, model.WithReasoningLevel(model.ReasoningLevel(level)))
	}
	if name := strings.TrimSpace(c.LLM.Model); name != "" {
		opts = append(opts, model.WithModel(name))
	}
	if baseURL := strings.TrimSpace(c.LLM.URL); baseURL != "" {
		opts = append(opts, model.WithURL(baseURL))
	}
	switch strings.ToLower(strings.TrimSpace(c.LLM.Provider)) {
	case "openai", "openai_response":
		if c.Keys.OpenAI != "" {
			opts = append(opts, model.WithAuthToken(c.Keys.OpenAI))
		}
	case "gemini":
		if c.Keys.Gemini != "" {
			opts = append(opts, model.WithAuthToken(c.Keys.Gemini))
		}
	}
	return opts
}

// PipelineOptions builds the run options shared by every render.
func (c *Config) PipelineOptions() ([]pipeline.Option, error) {
	encoder, err := audio.NewEncoder(audio.Encoding(strings.ToLower(c.Audio.Encoding)), c.Audio.FFmpegPath, c.Audio.Bitrate)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return []pipeline.Option{
		pipeline.WithTargetLoudness(c.Audio.TargetDBFS),
		pipeline.WithNormalizeBookends(c.Audio.NormalizeBookends),
		pipeline.WithConcurrency(c.Audio.Concurrency),
		pipeline.WithRequestsPerSecond(c.Audio.RequestsPerSecond),
		pipeline.WithAbortOnFailure(c.Audio.AbortOnFailure),
		pipeline.WithOutputDir(c.Audio.OutputDir),
		pipeline.WithEncoder(encoder),
		pipeline.WithProviderName(c.Speech.Provider),
	}, nil
}
