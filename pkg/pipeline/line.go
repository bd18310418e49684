package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts"
)

// renderLine synthesizes, decodes and normalizes one utterance. A per-line problem is
// reported as a warning; only cancellation of ctx is returned as an error.
func (r *run) renderLine(ctx context.Context, utterance model.Utterance) (*audio.Clip, *model.LineWarning, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	log := logging.NewLogger(ctx)

	voiceID, ok := r.resolver.Resolve(utterance.Speaker)
	if !ok {
		log.Warnf("pipeline_unmapped_voice line=%d speaker=%q", utterance.LineNumber, utterance.Speaker)
		return nil, newWarning(utterance, model.FailureKindUnmappedVoice, 0, "no voice mapped for speaker "+utterance.Speaker), nil
	}
	if strings.TrimSpace(utterance.Text) == "" {
		return nil, newWarning(utterance, model.FailureKindInvalidRequest, 0, "line has no text"), nil
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
	}

	speech, err := r.synth.Synthesize(ctx, utterance.Text, voiceID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		failure := tts.AsFailure(r.cfg.ProviderName, err)
		log.Warnf("pipeline_synthesis_failed line=%d speaker=%q: %v", utterance.LineNumber, utterance.Speaker, failure)
		return nil, warningFromFailure(utterance, failure), nil
	}

	clip, err := decodeSpeech(speech)
	if err != nil {
		log.Warnf("pipeline_decode_failed line=%d speaker=%q: %v", utterance.LineNumber, utterance.Speaker, err)
		return nil, newWarning(utterance, model.FailureKindDecode, 0, err.Error()), nil
	}
	if clip.Empty() {
		log.Warnf("pipeline_empty_audio line=%d speaker=%q bytes=%d", utterance.LineNumber, utterance.Speaker, len(speech.Data))
		return nil, newWarning(utterance, model.FailureKindDecode, 0, "synthesized audio contains no samples"), nil
	}

	return audio.Normalize(clip, r.cfg.TargetDBFS), nil, nil
}

func decodeSpeech(speech *tts.Audio) (*audio.Clip, error) {
	if speech == nil {
		return nil, errors.New("synthesizer returned no audio")
	}
	if speech.Format.Encoding == "" {
		return audio.DecodeAny(speech.Data)
	}
	return audio.Decode(speech.Data, speech.Format)
}

func newWarning(utterance model.Utterance, kind model.FailureKind, status int, reason string) *model.LineWarning {
	return &model.LineWarning{
		LineIndex:  utterance.LineNumber,
		Sequence:   utterance.SequenceIndex,
		Speaker:    utterance.Speaker,
		Kind:       kind,
		StatusCode: status,
		Reason:     reason,
	}
}

func warningFromFailure(utterance model.Utterance, failure *model.SynthesisFailure) *model.LineWarning {
	reason := strings.TrimSpace(failure.Body)
	if reason == "" {
		reason = failure.Error()
	}
	return newWarning(utterance, failure.Kind, failure.StatusCode, reason)
}
