package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/script"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

// errLineFailed stops the fan-out in strict mode.
var errLineFailed = errors.New("line synthesis failed")

type Pipeline struct {
	synth tts.Synthesizer
	cfg   Config
}

func New(synth tts.Synthesizer, opts ...Option) (*Pipeline, error) {
	if synth == nil {
		return nil, utils.WrapIfNotNil(errors.New("synthesizer is required"))
	}
	return &Pipeline{synth: synth, cfg: ResolveConfig(opts...)}, nil
}

func (p *Pipeline) Config() Config {
	return p.cfg
}

type run struct {
	*Pipeline
	ctx      context.Context
	result   *Result
	resolver *script.Resolver
	limiter  *rate.Limiter

	mu        sync.Mutex
	completed int
	total     int
}

// Run renders one script. The returned Result is never nil; on a fatal error it is in
// the Failed state and the error wraps model.ErrEmptyScript, model.ErrExport or the
// context error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	log := logging.NewLogger(ctx)

	r := &run{
		Pipeline: p,
		ctx:      ctx,
		result:   &Result{RunID: runID, State: model.RunStateIdle, Warnings: []model.LineWarning{}},
		resolver: script.NewResolver(req.Voices),
	}
	if p.cfg.RequestsPerSecond > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(p.cfg.RequestsPerSecond), 1)
	}

	r.transition(model.RunStateSplitting)
	utterances := script.Collect(req.Script)
	r.result.Utterances = len(utterances)
	r.total = len(utterances)
	log.Infof("pipeline_split utterances=%d speakers=%d", len(utterances), len(req.Voices))

	if len(utterances) == 0 && req.Intro == nil && req.Outro == nil {
		return r.fail(model.ErrEmptyScript)
	}

	r.transition(model.RunStateSynthesizing)
	clips, err := r.synthesizeAll(utterances)
	if err != nil {
		return r.fail(err)
	}

	r.transition(model.RunStateStitching)
	intro, outro := req.Intro, req.Outro
	if p.cfg.NormalizeBookends {
		intro = normalizeOptional(intro, p.cfg.TargetDBFS)
		outro = normalizeOptional(outro, p.cfg.TargetDBFS)
	}
	stitched := audio.Stitch(clips, intro, outro)
	if stitched == nil {
		log.Warnf("pipeline_no_audio utterances=%d warnings=%d", len(utterances), len(r.result.Warnings))
		r.result.Outcome = model.OutcomeNoAudioProduced
		r.result.Reason = model.ErrNoAudioProduced.Error()
		r.transition(model.RunStateDone)
		return r.result, nil
	}

	r.transition(model.RunStateExporting)
	track, err := audio.Export(ctx, stitched, p.cfg.Encoder, p.cfg.OutputDir)
	if err != nil {
		log.Errorf("error: %v", err)
		return r.fail(fmt.Errorf("%w: %w", model.ErrExport, err))
	}

	r.result.Track = track
	r.result.Outcome = model.OutcomeTrackProduced
	log.Infof("pipeline_done path=%q duration=%s synthesized=%d warnings=%d",
		track.Path, track.Duration, r.result.Synthesized, len(r.result.Warnings))
	r.transition(model.RunStateDone)
	return r.result, nil
}

// synthesizeAll returns one slot per utterance, indexed by SequenceIndex. Skipped lines are nil.
func (r *run) synthesizeAll(utterances []model.Utterance) ([]*audio.Clip, error) {
	clips := make([]*audio.Clip, len(utterances))
	warnings := make([]*model.LineWarning, len(utterances))

	g, gctx := errgroup.WithContext(r.ctx)
	g.SetLimit(r.cfg.Concurrency)
	for _, utterance := range utterances {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			clip, warning, err := r.renderLine(gctx, utterance)
			if err != nil {
				return err
			}
			clips[utterance.SequenceIndex] = clip
			warnings[utterance.SequenceIndex] = warning
			r.progress(utterance, warning)
			if warning != nil && r.cfg.AbortOnFailure {
				return fmt.Errorf("%w: %s", errLineFailed, warning.String())
			}
			return nil
		})
	}
	err := g.Wait()

	for i, warning := range warnings {
		if warning != nil {
			r.result.Warnings = append(r.result.Warnings, *warning)
		}
		if clips[i] != nil {
			r.result.Synthesized++
		}
	}
	if err != nil {
		return nil, err
	}
	if cause := context.Cause(r.ctx); cause != nil {
		return nil, cause
	}
	return clips, nil
}

func (r *run) progress(utterance model.Utterance, warning *model.LineWarning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
	r.notify(Event{
		RunID:     r.result.RunID,
		State:     model.RunStateSynthesizing,
		Utterance: &utterance,
		Warning:   warning,
		Completed: r.completed,
		Total:     r.total,
	})
}

func (r *run) transition(state model.RunState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result.State = state
	r.notify(Event{RunID: r.result.RunID, State: state, Completed: r.completed, Total: r.total})
}

func (r *run) notify(event Event) {
	if r.cfg.Observer != nil {
		r.cfg.Observer(event)
	}
}

func (r *run) fail(err error) (*Result, error) {
	log := logging.NewLogger(r.ctx)
	log.Errorf("error: %v", err)
	r.result.Reason = err.Error()
	r.transition(model.RunStateFailed)
	return r.result, utils.WrapIfNotNil(err)
}

func normalizeOptional(clip *audio.Clip, target float64) *audio.Clip {
	if clip == nil {
		return nil
	}
	return audio.Normalize(clip, target)
}
