package gemini

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts"
)

// Synthesizer uses Gemini's speech generation models. Voice ids are prebuilt
// voice names such as "Kore" or "Puck". Audio comes back as raw 16-bit PCM.
type Synthesizer struct {
	opts model.SpeechOptions
}

func NewSynthesizer(opts model.SpeechOptions) (*Synthesizer, error) {
	return &Synthesizer{opts: model.CloneSpeechOptions(opts)}, nil
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string, voiceID string) (*tts.Audio, error) {
	log := logging.NewLogger(ctx)
	if strings.TrimSpace(text) == "" {
		return nil, tts.InvalidRequest(providerName, errors.New("text is required"))
	}
	if strings.TrimSpace(voiceID) == "" {
		return nil, tts.InvalidRequest(providerName, errors.New("voice id is required"))
	}

	client, err := newAPIClient(ctx, s.opts)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, tts.InvalidRequest(providerName, err)
	}

	modelName := resolveSpeechModelName(s.opts)
	log.Debugf("gemini_speech_request model=%q voice=%q chars=%d", modelName, voiceID, len(text))
	response, err := client.Models.GenerateContent(ctx, modelName, genai.Text(buildPrompt(s.opts.Instructions, text)), speechConfig(voiceID))
	if err != nil {
		log.Warnf("gemini speech failed voice=%q: %v", voiceID, err)
		return nil, classifyError(err)
	}

	return extractAudio(response)
}

func buildPrompt(instructions string, text string) string {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		return text
	}
	return instructions + ": " + text
}

func speechConfig(voiceID string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: strings.TrimSpace(voiceID),
				},
			},
		},
	}
}

func extractAudio(response *genai.GenerateContentResponse) (*tts.Audio, error) {
	if response != nil {
		for _, candidate := range response.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
					continue
				}
				return &tts.Audio{
					Data: part.InlineData.Data,
					Format: audio.Format{
						Encoding:   audio.EncodingPCM16,
						SampleRate: sampleRateFromMIME(part.InlineData.MIMEType),
						Channels:   1,
					},
				}, nil
			}
		}
	}
	return nil, tts.ProviderFailure(providerName, http.StatusOK, "response contained no audio")
}

// sampleRateFromMIME reads the rate parameter of types like "audio/L16;codec=pcm;rate=24000".
func sampleRateFromMIME(mimeType string) int {
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return defaultSampleRate
	}
	rate, err := strconv.Atoi(params["rate"])
	if err != nil || rate <= 0 {
		return defaultSampleRate
	}
	return rate
}

func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return tts.ProviderFailure(providerName, apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return tts.ProviderFailure(providerName, apiErrPtr.Code, apiErrPtr.Message)
	}
	return tts.TransportFailure(providerName, err)
}
