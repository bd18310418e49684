package tests

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/pipeline"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts/elevenlabs"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts/providers"
)

const speechLine = "Welcome back to City Desk."

func assertDecodes(t require.TestingT, speech *tts.Audio) {
	require.NotNil(t, speech)
	require.NotEmpty(t, speech.Data)
	clip, err := audio.Decode(speech.Data, speech.Format)
	require.NoError(t, err)
	assert.Greater(t, clip.Duration(), 200*time.Millisecond)
}

type ElevenLabsSpeechIntegrationSuite struct {
	ExternalDependenciesSuite
	apiKey string
}

func (s *ElevenLabsSpeechIntegrationSuite) SetupSuite() {
	s.ExternalDependenciesSuite.SetupSuite()

	s.apiKey = strings.TrimSpace(os.Getenv("ELEVEN_LABS_API_KEY"))
	if s.apiKey == "" {
		s.T().Skip("ELEVEN_LABS_API_KEY is not set; skipping external dependency integration test")
	}
}

func (s *ElevenLabsSpeechIntegrationSuite) voices(ctx context.Context) []elevenlabs.Voice {
	catalog, err := elevenlabs.NewVoiceCatalog(model.SpeechOptions{AuthToken: s.apiKey})
	require.NoError(s.T(), err)

	voices, err := catalog.ListVoices(ctx)
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), voices)
	return voices
}

func (s *ElevenLabsSpeechIntegrationSuite) TestListVoices() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	voices := s.voices(ctx)
	ids := elevenlabs.VoiceIDsByName(voices)
	assert.Equal(s.T(), voices[0].VoiceID, ids[voices[0].Name])
}

func (s *ElevenLabsSpeechIntegrationSuite) TestSynthesize() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	voices := s.voices(ctx)
	synth, err := elevenlabs.NewSynthesizer(model.SpeechOptions{AuthToken: s.apiKey})
	require.NoError(s.T(), err)

	speech, err := synth.Synthesize(ctx, speechLine, voices[0].VoiceID)
	require.NoError(s.T(), err)
	assertDecodes(s.T(), speech)
}

func (s *ElevenLabsSpeechIntegrationSuite) TestUnknownVoiceIsProviderFailure() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	synth, err := elevenlabs.NewSynthesizer(model.SpeechOptions{AuthToken: s.apiKey})
	require.NoError(s.T(), err)

	_, err = synth.Synthesize(ctx, speechLine, "not-a-real-voice")
	require.Error(s.T(), err)
	failure := tts.AsFailure("elevenlabs", err)
	assert.Equal(s.T(), model.FailureKindProvider, failure.Kind)
	assert.NotZero(s.T(), failure.StatusCode)
}

func (s *ElevenLabsSpeechIntegrationSuite) TestPipelineRendersTwoSpeakers() {
	ctx, cancel := context.WithTimeout(context.Background(), 240*time.Second)
	defer cancel()

	voices := s.voices(ctx)
	second := voices[0]
	if len(voices) > 1 {
		second = voices[1]
	}

	synth, err := elevenlabs.NewSynthesizer(model.SpeechOptions{AuthToken: s.apiKey})
	require.NoError(s.T(), err)
	p, err := pipeline.New(synth,
		pipeline.WithEncoder(audio.WAVEncoder{}),
		pipeline.WithOutputDir(s.T().TempDir()),
		pipeline.WithConcurrency(2),
	)
	require.NoError(s.T(), err)

	result, err := p.Run(ctx, pipeline.Request{
		Script: "Ana: Welcome back to City Desk.\nBen: Today, bike lanes.\nNobody: This line has no voice.",
		Voices: model.VoiceMap{"Ana": voices[0].VoiceID, "Ben": second.VoiceID},
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), model.OutcomeTrackProduced, result.Outcome)
	assert.Equal(s.T(), 2, result.Synthesized)
	require.Len(s.T(), result.Warnings, 1)
	assert.Equal(s.T(), model.FailureKindUnmappedVoice, result.Warnings[0].Kind)
	require.NotNil(s.T(), result.Track)
	assert.FileExists(s.T(), result.Track.Path)
	assert.InDelta(s.T(), -20, result.Track.LoudnessDBFS, 1.5)
}

type OpenAISpeechIntegrationSuite struct {
	ExternalDependenciesSuite
	apiKey string
}

func (s *OpenAISpeechIntegrationSuite) SetupSuite() {
	s.ExternalDependenciesSuite.SetupSuite()

	s.apiKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if s.apiKey == "" {
		s.T().Skip("OPENAI_API_KEY is not set; skipping external dependency integration test")
	}
}

func (s *OpenAISpeechIntegrationSuite) TestSynthesize() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	synth, err := providers.New("openai", model.SpeechOptions{AuthToken: s.apiKey})
	require.NoError(s.T(), err)

	speech, err := synth.Synthesize(ctx, speechLine, "alloy")
	require.NoError(s.T(), err)
	assertDecodes(s.T(), speech)
}

type GeminiSpeechIntegrationSuite struct {
	ExternalDependenciesSuite
	apiKey string
}

func (s *GeminiSpeechIntegrationSuite) SetupSuite() {
	s.ExternalDependenciesSuite.SetupSuite()

	s.apiKey = strings.TrimSpace(os.Getenv("GEMINI_KEY"))
	run, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("RUN_GEMINI_SPEECH_TESTS")))
	if s.apiKey == "" || !run {
		s.T().Skip("GEMINI_KEY and RUN_GEMINI_SPEECH_TESTS=true are required; skipping Gemini speech test")
	}
}

func (s *GeminiSpeechIntegrationSuite) TestSynthesize() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	synth, err := providers.New("gemini", model.SpeechOptions{AuthToken: s.apiKey})
	require.NoError(s.T(), err)

	speech, err := synth.Synthesize(ctx, speechLine, "Kore")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), audio.EncodingPCM16, speech.Format.Encoding)
	assertDecodes(s.T(), speech)
}

func TestElevenLabsSpeechIntegrationSuite(t *testing.T) {
	suite.Run(t, new(ElevenLabsSpeechIntegrationSuite))
}

func TestOpenAISpeechIntegrationSuite(t *testing.T) {
	suite.Run(t, new(OpenAISpeechIntegrationSuite))
}

func TestGeminiSpeechIntegrationSuite(t *testing.T) {
	suite.Run(t, new(GeminiSpeechIntegrationSuite))
}
