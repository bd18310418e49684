package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/genai"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

type SpeechSuite struct {
	suite.Suite
}

func TestSpeechSuite(t *testing.T) {
	suite.Run(t, new(SpeechSuite))
}

func (s *SpeechSuite) TestResolveSpeechModelName() {
	s.T().Setenv(envGeminiSpeechModel, "")
	s.Equal(defaultSpeechModelName, resolveSpeechModelName(model.SpeechOptions{}))
	s.Equal("gemini-2.5-pro-preview-tts", resolveSpeechModelName(model.SpeechOptions{Model: "gemini-2.5-pro-preview-tts"}))
}

func (s *SpeechSuite) TestSpeechConfigSelectsPrebuiltVoice() {
	cfg := speechConfig(" Kore ")
	s.Equal([]string{"AUDIO"}, cfg.ResponseModalities)
	s.Equal("Kore", cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
}

func (s *SpeechSuite) TestBuildPrompt() {
	s.Equal("Hello", buildPrompt("  ", "Hello"))
	s.Equal("Say cheerfully: Hello", buildPrompt("Say cheerfully", "Hello"))
}

func (s *SpeechSuite) TestExtractAudioReadsInlinePCM() {
	response := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "ignored"},
				{InlineData: &genai.Blob{MIMEType: "audio/L16;codec=pcm;rate=16000", Data: []byte{1, 2, 3, 4}}},
			}},
		}},
	}

	out, err := extractAudio(response)
	s.Require().NoError(err)
	s.Equal([]byte{1, 2, 3, 4}, out.Data)
	s.Equal(audio.Format{Encoding: audio.EncodingPCM16, SampleRate: 16000, Channels: 1}, out.Format)
}

func (s *SpeechSuite) TestExtractAudioWithoutPayloadIsProviderFailure() {
	_, err := extractAudio(&genai.GenerateContentResponse{})
	var failure *model.SynthesisFailure
	s.Require().ErrorAs(err, &failure)
	s.Equal(model.FailureKindProvider, failure.Kind)
}

func (s *SpeechSuite) TestSampleRateFromMIMEFallsBack() {
	s.Equal(defaultSampleRate, sampleRateFromMIME("audio/L16"))
	s.Equal(defaultSampleRate, sampleRateFromMIME("not a mime;;"))
}

func (s *SpeechSuite) TestClassifyError() {
	wrapped := fmt.Errorf("generate: %w", genai.APIError{Code: 429, Message: "quota exceeded"})
	var failure *model.SynthesisFailure
	s.Require().ErrorAs(classifyError(wrapped), &failure)
	s.Equal(model.FailureKindProvider, failure.Kind)
	s.Equal(429, failure.StatusCode)
	s.Equal("quota exceeded", failure.Body)

	s.Require().ErrorAs(classifyError(errors.New("connection reset")), &failure)
	s.Equal(model.FailureKindTransport, failure.Kind)
}

func (s *SpeechSuite) TestSynthesizeRejectsEmptyVoice() {
	synth, err := NewSynthesizer(model.SpeechOptions{AuthToken: "k"})
	s.Require().NoError(err)

	_, err = synth.Synthesize(context.Background(), "Hello", " ")
	var failure *model.SynthesisFailure
	s.Require().ErrorAs(err, &failure)
	s.Equal(model.FailureKindInvalidRequest, failure.Kind)
}
