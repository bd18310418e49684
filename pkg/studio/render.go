package studio

import (
	"context"
	"errors"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/pipeline"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/store"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

// RenderRequest is an ad hoc render. Nil bookends fall back to the studio's defaults.
type RenderRequest struct {
	Script string
	Voices model.VoiceMap
	Intro  *audio.Clip
	Outro  *audio.Clip
}

// RenderText runs the pipeline on ad hoc script text. The exported track stays on disk
// and belongs to the caller.
func (s *Studio) RenderText(ctx context.Context, req RenderRequest, observer pipeline.Observer) (*pipeline.Result, error) {
	p, err := s.newPipeline(observer)
	if err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	if req.Intro == nil {
		req.Intro = s.deps.Intro
	}
	if req.Outro == nil {
		req.Outro = s.deps.Outro
	}
	result, err := p.Run(ctx, pipeline.Request{
		Script: req.Script,
		Voices: req.Voices,
		Intro:  req.Intro,
		Outro:  req.Outro,
	})
	return result, utils.WrapIfNotNil(err)
}

// RenderScript renders a stored script with its show's voices, with overrides taking
// precedence, and stores the encoded audio on the script. The temporary track file is
// removed once stored. A run that yields no audio stores nothing and returns the result
// along with model.ErrNoAudioProduced.
func (s *Studio) RenderScript(ctx context.Context, scriptID uint, overrides model.VoiceMap, observer pipeline.Observer) (*pipeline.Result, error) {
	log := logging.NewLogger(ctx)

	record, err := s.deps.Store.GetScript(ctx, scriptID)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	voices := model.VoiceMap{}
	if record.ShowID != nil {
		voices, err = s.ShowVoices(ctx, *record.ShowID)
		if err != nil {
			log.Errorf("error: %v", err)
			return nil, utils.WrapIfNotNil(err)
		}
	}
	for speaker, voice := range overrides {
		voices[speaker] = voice
	}

	result, err := s.RenderText(ctx, RenderRequest{Script: record.Content, Voices: voices}, observer)
	if err != nil {
		log.Errorf("error: %v", err)
		return result, utils.WrapIfNotNil(err)
	}
	if result.Track == nil {
		log.Warnf("render produced no audio script=%d warnings=%d", scriptID, len(result.Warnings))
		return result, utils.WrapIfNotNil(model.ErrNoAudioProduced)
	}

	defer func() {
		if removeErr := result.Track.Remove(); removeErr != nil {
			log.Warnf("could not remove track path=%s err=%v", result.Track.Path, removeErr)
		}
		result.Track.Path = ""
	}()

	data, err := result.Track.ReadAll()
	if err != nil {
		log.Errorf("error: %v", err)
		return result, utils.WrapIfNotNil(err)
	}
	err = s.deps.Store.AttachAudio(ctx, scriptID, store.RenderedAudio{
		Data:     data,
		Format:   string(result.Track.Format.Encoding),
		Warnings: result.Warnings,
		RunID:    result.RunID,
	})
	if err != nil {
		log.Errorf("error: %v", err)
		return result, utils.WrapIfNotNil(err)
	}
	return result, nil
}

func (s *Studio) newPipeline(observer pipeline.Observer) (*pipeline.Pipeline, error) {
	if s.deps.Synthesizer == nil {
		return nil, errors.Join(ErrNotConfigured, errors.New("speech synthesizer"))
	}
	opts := append([]pipeline.Option{}, s.deps.PipelineOptions...)
	if observer != nil {
		opts = append(opts, pipeline.WithObserver(observer))
	}
	return pipeline.New(s.deps.Synthesizer, opts...)
}
