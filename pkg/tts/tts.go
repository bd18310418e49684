package tts

import (
	"context"
	"errors"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

// Audio is the encoded payload returned by a synthesizer.
type Audio struct {
	Data   []byte
	Format audio.Format
}

// Synthesizer turns one line of text into speech with the given voice.
// Implementations make a single attempt and report failures as *model.SynthesisFailure.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voiceID string) (*Audio, error)
}

// SynthesizerFunc adapts a plain function to Synthesizer.
type SynthesizerFunc func(ctx context.Context, text string, voiceID string) (*Audio, error)

func (f SynthesizerFunc) Synthesize(ctx context.Context, text string, voiceID string) (*Audio, error) {
	return f(ctx, text, voiceID)
}

// AsFailure classifies any synthesizer error. Errors that are not already a
// *model.SynthesisFailure are treated as transport failures.
func AsFailure(provider string, err error) *model.SynthesisFailure {
	if err == nil {
		return nil
	}

	var failure *model.SynthesisFailure
	if errors.As(err, &failure) {
		return failure
	}
	return &model.SynthesisFailure{Kind: model.FailureKindTransport, Provider: provider, Err: err}
}

// ProviderFailure builds a failure for a non-success provider response.
func ProviderFailure(provider string, statusCode int, body string) *model.SynthesisFailure {
	return &model.SynthesisFailure{
		Kind:       model.FailureKindProvider,
		Provider:   provider,
		StatusCode: statusCode,
		Body:       body,
	}
}

func TransportFailure(provider string, err error) *model.SynthesisFailure {
	return &model.SynthesisFailure{Kind: model.FailureKindTransport, Provider: provider, Err: err}
}

func InvalidRequest(provider string, err error) *model.SynthesisFailure {
	return &model.SynthesisFailure{Kind: model.FailureKindInvalidRequest, Provider: provider, Err: err}
}
