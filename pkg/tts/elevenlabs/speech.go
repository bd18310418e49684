package elevenlabs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

type Synthesizer struct {
	client   *apiClient
	opts     model.SpeechOptions
	settings voiceSettings
	format   audio.Format
}

func NewSynthesizer(opts model.SpeechOptions) (*Synthesizer, error) {
	c, err := newAPIClient(opts)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	settings := resolveVoiceSettings(opts)
	if err := validateVoiceSettings(settings); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	format, err := parseOutputFormat(opts.OutputFormat)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	return &Synthesizer{
		client:   c,
		opts:     model.CloneSpeechOptions(opts),
		settings: settings,
		format:   format,
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

	path := "/text-to-speech/" + url.PathEscape(strings.TrimSpace(voiceID))
	if strings.TrimSpace(s.opts.OutputFormat) != "" {
		path += "?output_format=" + url.QueryEscape(strings.TrimSpace(s.opts.OutputFormat))
	}

	request, err := s.client.newRequest(ctx, http.MethodPost, path, speechRequest{
		Text:          text,
		ModelID:       resolveModelName(s.opts),
		VoiceSettings: s.settings,
	})
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, tts.InvalidRequest(providerName, err)
	}
	request.Header.Set("accept", s.format.MIMEType())

	log.Debugf("elevenlabs_speech_request voice=%q chars=%d", voiceID, len(text))
	body, err := s.client.do(request)
	if err != nil {
		log.Warnf("elevenlabs speech failed voice=%q: %v", voiceID, err)
		return nil, err
	}
	if len(body) == 0 {
		return nil, tts.ProviderFailure(providerName, http.StatusOK, "empty audio payload")
	}

	return &tts.Audio{Data: body, Format: s.format}, nil
}

// parseOutputFormat maps ElevenLabs output_format names such as "mp3_44100_128"
// or "pcm_24000" to an audio format. Empty means the API default, MP3.
func parseOutputFormat(name string) (audio.Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.HasPrefix(name, "mp3_") {
		return audio.Format{Encoding: audio.EncodingMP3}, nil
	}

	if rate, ok := strings.CutPrefix(name, "pcm_"); ok {
		sampleRate, err := strconv.Atoi(rate)
		if err != nil || sampleRate <= 0 {
			return audio.Format{}, fmt.Errorf("invalid pcm output format %q", name)
		}
		return audio.Format{Encoding: audio.EncodingPCM16, SampleRate: sampleRate, Channels: 1}, nil
	}

	return audio.Format{}, fmt.Errorf("unsupported output format %q", name)
}
