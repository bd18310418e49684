package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/config"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/research"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/store"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/studio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts/elevenlabs"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts/providers"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/writer"
)

var (
	version   = "dev"
	gitCommit string
)

const (
	SourceGoogle  = "google"
	SourceNewsAPI = "newsapi"
)

func FormatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// Globals holds the persistent root flags shared by every subcommand.
type Globals struct {
	EnvFiles    []string
	LogLevel    string
	LogFormat   string
	DatabaseURL string
}

func (g *Globals) Bind(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringSliceVar(&g.EnvFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")
	flags.StringVar(&g.LogLevel, "log-level", "", "log level (overrides PODCAST_LOG_LEVEL)")
	flags.StringVar(&g.LogFormat, "log-format", "", "log format: text or json (overrides PODCAST_LOG_FORMAT)")
	flags.StringVar(&g.DatabaseURL, "database", "", "database url (overrides PODCAST_DATABASE_URL)")
}

// LoadConfig reads the environment and configures logging. Flags win over env values.
func (g *Globals) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.EnvFiles...)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.LogFormat = g.LogFormat
	}
	if g.DatabaseURL != "" {
		cfg.DatabaseURL = g.DatabaseURL
	}
	logging.ConfigureLogrus(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func Synthesizer(cfg *config.Config) (tts.Synthesizer, error) {
	return providers.New(cfg.Speech.Provider, cfg.SpeechOptions())
}

// VoiceCatalog returns nil when no ElevenLabs key is configured.
func VoiceCatalog(cfg *config.Config) (*elevenlabs.VoiceCatalog, error) {
	if strings.TrimSpace(cfg.Keys.ElevenLabs) == "" {
		return nil, nil
	}
	return elevenlabs.NewVoiceCatalog(model.SpeechOptions{AuthToken: cfg.Keys.ElevenLabs})
}

// Searcher picks NewsAPI when a key is present and source is unset, Google News otherwise.
func Searcher(cfg *config.Config, source string) (research.Searcher, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "":
		if cfg.Keys.NewsAPI != "" {
			return research.NewNewsAPI(cfg.Keys.NewsAPI, "")
		}
		return googleNews(cfg), nil
	case SourceNewsAPI:
		return research.NewNewsAPI(cfg.Keys.NewsAPI, "")
	case SourceGoogle:
		return googleNews(cfg), nil
	default:
		return nil, fmt.Errorf("unknown search source %q (available: %s, %s)", source, SourceGoogle, SourceNewsAPI)
	}
}

func googleNews(cfg *config.Config) *research.GoogleNews {
	return research.NewGoogleNews(cfg.Research.NewsWindow, cfg.Research.Language, cfg.Research.Country)
}

func Writer(cfg *config.Config) (*writer.Writer, error) {
	return writer.New(cfg.LLM.Provider,
		writer.WithGeneratorOptions(cfg.GeneratorOptions()...),
		writer.WithFactCount(cfg.LLM.FactCount),
		writer.WithMaxInputChars(cfg.LLM.MaxInputChars),
	)
}

// BuildStudio wires every configured collaborator. Optional collaborators that fail to
// build are logged and left out, so the affected operations report ErrNotConfigured.
// The returned close func releases the store.
func BuildStudio(ctx context.Context, cfg *config.Config, source string) (*studio.Studio, func(), error) {
	log := logging.NewLogger(ctx)

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, nil, utils.WrapIfNotNil(err)
	}
	closeStore := func() {
		if err := db.Close(); err != nil {
			log.Warnf("closing store: %v", err)
		}
	}

	pipelineOptions, err := cfg.PipelineOptions()
	if err != nil {
		closeStore()
		log.Errorf("error: %v", err)
		return nil, nil, utils.WrapIfNotNil(err)
	}

	intro, err := studio.LoadClip(cfg.Audio.IntroPath)
	if err != nil {
		closeStore()
		log.Errorf("error: %v", err)
		return nil, nil, utils.WrapIfNotNil(err)
	}
	outro, err := studio.LoadClip(cfg.Audio.OutroPath)
	if err != nil {
		closeStore()
		log.Errorf("error: %v", err)
		return nil, nil, utils.WrapIfNotNil(err)
	}

	deps := studio.Deps{
		Store:           db,
		PipelineOptions: pipelineOptions,
		Intro:           intro,
		Outro:           outro,
	}

	if synth, err := Synthesizer(cfg); err != nil {
		log.Warnf("speech synthesis disabled: %v", err)
	} else {
		deps.Synthesizer = synth
	}
	if catalog, err := VoiceCatalog(cfg); err != nil {
		log.Warnf("voice catalog disabled: %v", err)
	} else if catalog != nil {
		deps.Voices = catalog
	}
	if w, err := Writer(cfg); err != nil {
		log.Warnf("script writer disabled: %v", err)
	} else {
		deps.Writer = w
	}
	if searcher, err := Searcher(cfg, source); err != nil {
		log.Warnf("article search disabled: %v", err)
	} else {
		deps.Searcher = searcher
	}

	s, err := studio.New(deps)
	if err != nil {
		closeStore()
		return nil, nil, utils.WrapIfNotNil(err)
	}
	return s, closeStore, nil
}

// ParseAssignments turns repeated "Name=value" flags into a map. Names keep inner spaces.
func ParseAssignments(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, value := range values {
		name, assigned, ok := strings.Cut(value, "=")
		name = strings.TrimSpace(name)
		assigned = strings.TrimSpace(assigned)
		if !ok || name == "" || assigned == "" {
			return nil, fmt.Errorf("expected Name=value, got %q", value)
		}
		out[name] = assigned
	}
	return out, nil
}
