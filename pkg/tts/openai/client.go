package openai

import (
	"os"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

const (
	providerName           = "openai"
	defaultSpeechModelName = "gpt-4o-mini-tts"
	defaultResponseFormat  = "mp3"
	pcmSampleRate          = 24000
	envOpenAIAPIKey        = "OPENAI_API_KEY"
	envOpenAISpeechModel   = "OPENAI_SPEECH_MODEL"
)

type client struct {
	apiClient openai.Client
}

// newClient disables SDK retries: a line gets exactly one synthesis attempt.
func newClient(opts model.SpeechOptions) *client {
	requestOpts := make([]option.RequestOption, 0, 3)
	requestOpts = append(requestOpts, option.WithMaxRetries(0))
	if strings.TrimSpace(opts.URL) != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(strings.TrimSpace(opts.URL)))
	}

	token := strings.TrimSpace(opts.AuthToken)
	if token == "" {
		token = strings.TrimSpace(os.Getenv(envOpenAIAPIKey))
	}
	if token != "" {
		requestOpts = append(requestOpts, option.WithAPIKey(token))
	}

	return &client{apiClient: openai.NewClient(requestOpts...)}
}

func resolveSpeechModelName(opts model.SpeechOptions) string {
	name := strings.TrimSpace(opts.Model)
	if name != "" {
		return name
	}
	fromEnv := strings.TrimSpace(os.Getenv(envOpenAISpeechModel))
	if fromEnv != "" {
		return fromEnv
	}
	return defaultSpeechModelName
}

func resolveResponseFormat(opts model.SpeechOptions) string {
	format := strings.ToLower(strings.TrimSpace(opts.OutputFormat))
	if format == "" {
		return defaultResponseFormat
	}
	return format
}
