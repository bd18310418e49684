package gemini

import (
	"context"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const (
	providerName           = "gemini"
	defaultSpeechModelName = "gemini-2.5-flash-preview-tts"
	defaultSampleRate      = 24000
	envGeminiKey           = "GEMINI_KEY"
	envGeminiSpeechModel   = "GEMINI_SPEECH_MODEL"
)

func newAPIClient(ctx context.Context, opts model.SpeechOptions) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
	}

	token := strings.TrimSpace(opts.AuthToken)
	if token == "" {
		token = strings.TrimSpace(os.Getenv(envGeminiKey))
	}
	if token != "" {
		clientCfg.APIKey = token
	}

	baseURL := strings.TrimSpace(opts.URL)
	if baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{
			BaseURL: baseURL,
		}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return client, nil
}

func resolveSpeechModelName(opts model.SpeechOptions) string {
	if name := strings.TrimSpace(opts.Model); name != "" {
		return name
	}
	if fromEnv := strings.TrimSpace(os.Getenv(envGeminiSpeechModel)); fromEnv != "" {
		return fromEnv
	}
	return defaultSpeechModelName
}
