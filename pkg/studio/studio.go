// Package studio ties research, writing, rendering and storage into episode workflows.
package studio

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/pipeline"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/research"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/store"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts/elevenlabs"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/writer"
)

const defaultMaxArticles = 5

var ErrNotConfigured = errors.New("studio component is not configured")

// VoiceLister is satisfied by elevenlabs.VoiceCatalog.
type VoiceLister interface {
	ListVoices(ctx context.Context) ([]elevenlabs.Voice, error)
}

// Deps lists the collaborators of a Studio. Only Store is required; operations that
// need a missing collaborator fail with ErrNotConfigured.
type Deps struct {
	Store           *store.Store
	Writer          *writer.Writer
	Searcher        research.Searcher
	Fetcher         *research.Fetcher
	Synthesizer     tts.Synthesizer
	Voices          VoiceLister
	PipelineOptions []pipeline.Option
	Intro           *audio.Clip
	Outro           *audio.Clip
	MaxArticles     int
	Now             func() time.Time
}

type Studio struct {
	deps Deps
}

func New(deps Deps) (*Studio, error) {
	if deps.Store == nil {
		return nil, utils.WrapIfNotNil(errors.New("store is required"))
	}
	if deps.Fetcher == nil {
		deps.Fetcher = research.NewFetcher()
	}
	if deps.MaxArticles < 1 {
		deps.MaxArticles = defaultMaxArticles
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Studio{deps: deps}, nil
}

func (s *Studio) Store() *store.Store {
	return s.deps.Store
}

func (s *Studio) ListVoices(ctx context.Context) ([]elevenlabs.Voice, error) {
	if s.deps.Voices == nil {
		return nil, utils.WrapIfNotNil(errors.Join(ErrNotConfigured, errors.New("voice catalog")))
	}
	voices, err := s.deps.Voices.ListVoices(ctx)
	return voices, utils.WrapIfNotNil(err)
}

// LoadClip reads an intro or outro file in any supported container. An empty path
// yields a nil clip.
func LoadClip(path string) (*audio.Clip, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	clip, err := audio.DecodeAny(data)
	if err != nil {
		return nil, utils.WrapIfNotNil(err, path)
	}
	return clip, nil
}
