package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const (
	providerName           = "elevenlabs"
	defaultBaseURL         = "https://api.elevenlabs.io/v1"
	defaultStability       = 0.75
	defaultSimilarityBoost = 0.75
	defaultHTTPTimeout     = 90 * time.Second
	envElevenLabsAPIKey    = "ELEVEN_LABS_API_KEY"
	envElevenLabsBaseURL   = "ELEVEN_LABS_BASE_URL"
	envElevenLabsModel     = "ELEVEN_LABS_MODEL"
)

type apiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id,omitempty"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type errorResponse struct {
	Detail struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"detail"`
}

func newAPIClient(opts model.SpeechOptions) (*apiClient, error) {
	apiKey := strings.TrimSpace(opts.AuthToken)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(envElevenLabsAPIKey))
	}
	if apiKey == "" {
		return nil, utils.WrapIfNotNil(errors.New("auth token is required (set AuthToken or ELEVEN_LABS_API_KEY)"))
	}

	baseURL := strings.TrimSpace(opts.URL)
	if baseURL == "" {
		baseURL = strings.TrimSpace(os.Getenv(envElevenLabsBaseURL))
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &apiClient{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}, nil
}

func (c *apiClient) newRequest(ctx context.Context, method string, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		bits, err := json.Marshal(body)
		if err != nil {
			return nil, utils.WrapIfNotNil(err)
		}
		reader = bytes.NewReader(bits)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	request.Header.Set("xi-api-key", c.apiKey)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	return request, nil
}

// do performs the request and returns the body of a 200 response. Non-200
// responses come back as a provider failure carrying the status and body.
func (c *apiClient) do(request *http.Request) ([]byte, error) {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, &model.SynthesisFailure{Kind: model.FailureKindTransport, Provider: providerName, Err: err}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &model.SynthesisFailure{Kind: model.FailureKindTransport, Provider: providerName, Err: err}
	}

	if response.StatusCode != http.StatusOK {
		return nil, &model.SynthesisFailure{
			Kind:       model.FailureKindProvider,
			Provider:   providerName,
			StatusCode: response.StatusCode,
			Body:       errorMessage(body),
		}
	}
	return body, nil
}

func errorMessage(body []byte) string {
	message := strings.TrimSpace(string(body))
	apiErr := errorResponse{}
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if candidate := strings.TrimSpace(apiErr.Detail.Message); candidate != "" {
			return candidate
		}
	}
	if message == "" {
		return "unknown elevenlabs error"
	}
	return message
}

func resolveModelName(opts model.SpeechOptions) string {
	name := strings.TrimSpace(opts.Model)
	if name != "" {
		return name
	}
	return strings.TrimSpace(os.Getenv(envElevenLabsModel))
}

func resolveVoiceSettings(opts model.SpeechOptions) voiceSettings {
	settings := voiceSettings{
		Stability:       defaultStability,
		SimilarityBoost: defaultSimilarityBoost,
	}
	if opts.Stability != nil {
		settings.Stability = *opts.Stability
	}
	if opts.SimilarityBoost != nil {
		settings.SimilarityBoost = *opts.SimilarityBoost
	}
	return settings
}

func validateVoiceSettings(settings voiceSettings) error {
	if settings.Stability < 0 || settings.Stability > 1 {
		return fmt.Errorf("stability must be within [0,1], got %v", settings.Stability)
	}
	if settings.SimilarityBoost < 0 || settings.SimilarityBoost > 1 {
		return fmt.Errorf("similarity_boost must be within [0,1], got %v", settings.SimilarityBoost)
	}
	return nil
}
