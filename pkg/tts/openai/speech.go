package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
	Instructions   string `json:"instructions,omitempty"`
}

func (r speechRequest) MarshalJSON() ([]byte, error) {
	type plain speechRequest
	return json.Marshal(plain(r))
}

// Synthesizer calls the OpenAI speech endpoint. Voice ids are OpenAI voice names such as "alloy".
type Synthesizer struct {
	client *client
	opts   model.SpeechOptions
	format audio.Format
}

func NewSynthesizer(opts model.SpeechOptions) (*Synthesizer, error) {
	format, err := formatFor(resolveResponseFormat(opts))
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	return &Synthesizer{
		client: newClient(opts),
		opts:   model.CloneSpeechOptions(opts),
		format: format,
	}, nil
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string, voiceID string) (*tts.Audio, error) {
	log := logging.NewLogger(ctx)
	if strings.TrimSpace(text) == "" {
		return nil, tts.InvalidRequest(providerName, errors.New("text is required"))
	}
	if strings.TrimSpace(voiceID) == "" {
		return nil, tts.InvalidRequest(providerName, errors.New("voice id is required"))
	}

	request := speechRequest{
		Model:          resolveSpeechModelName(s.opts),
		Input:          text,
		Voice:          strings.TrimSpace(voiceID),
		ResponseFormat: resolveResponseFormat(s.opts),
		Instructions:   strings.TrimSpace(s.opts.Instructions),
	}
	log.Debugf("openai_speech_request model=%q voice=%q chars=%d", request.Model, request.Voice, len(text))

	var body []byte
	err := s.client.apiClient.Post(ctx, "audio/speech", request, &body, option.WithHeader("Accept", s.format.MIMEType()))
	if err != nil {
		log.Warnf("openai speech failed voice=%q: %v", voiceID, err)
		return nil, classifyError(err)
	}
	if len(body) == 0 {
		return nil, tts.ProviderFailure(providerName, http.StatusOK, "empty audio payload")
	}

	return &tts.Audio{Data: body, Format: s.format}, nil
}

func classifyError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		message := strings.TrimSpace(apiErr.Message)
		if message == "" {
			message = apiErr.Error()
		}
		return tts.ProviderFailure(providerName, apiErr.StatusCode, message)
	}
	return tts.TransportFailure(providerName, err)
}

func formatFor(responseFormat string) (audio.Format, error) {
	switch responseFormat {
	case "mp3":
		return audio.Format{Encoding: audio.EncodingMP3}, nil
	case "wav":
		return audio.Format{Encoding: audio.EncodingWAV}, nil
	case "pcm":
		return audio.Format{Encoding: audio.EncodingPCM16, SampleRate: pcmSampleRate, Channels: 1}, nil
	default:
		return audio.Format{}, fmt.Errorf("unsupported openai speech format %q (use mp3, wav or pcm)", responseFormat)
	}
}
