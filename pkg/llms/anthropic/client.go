package anthropic

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

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/internal/generation"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const (
	providerName        = "anthropic"
	defaultModelName    = "claude-3-5-sonnet-latest"
	defaultBaseURL      = "https://api.anthropic.com"
	anthropicVersion    = "2023-06-01"
	defaultMaxTokens    = 4096
	defaultHTTPTimeout  = 90 * time.Second
	envAnthropicAPIKey  = "ANTHROPIC_API_KEY"
	envAnthropicBaseURL = "ANTHROPIC_BASE_URL"
	envAnthropicModel   = "ANTHROPIC_MODEL"
)

type apiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
}

type usage struct {
	InputTokens        int64 `json:"input_tokens"`
	OutputTokens       int64 `json:"output_tokens"`
	CacheReadInput     int64 `json:"cache_read_input_tokens"`
	CacheCreationInput int64 `json:"cache_creation_input_tokens"`
}

type messageResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      *usage         `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func newAPIClient(cfg model.GeneratorConfig) (*apiClient, error) {
	apiKey := strings.TrimSpace(cfg.AuthToken)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(envAnthropicAPIKey))
	}
	if apiKey == "" {
		return nil, utils.WrapIfNotNil(errors.New("auth token is required (set WithAuthToken or ANTHROPIC_API_KEY)"))
	}

	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		baseURL = strings.TrimSpace(os.Getenv(envAnthropicBaseURL))
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &apiClient{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}, nil
}

func (c *apiClient) createMessage(ctx context.Context, request messageRequest) (*messageResponse, error) {
	requestBits, err := json.Marshal(request)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(requestBits))
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	httpRequest.Header.Set("content-type", "application/json")
	httpRequest.Header.Set("x-api-key", c.apiKey)
	httpRequest.Header.Set("anthropic-version", anthropicVersion)

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	defer httpResponse.Body.Close()

	responseBits, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
		message := strings.TrimSpace(string(responseBits))
		apiErr := errorResponse{}
		if json.Unmarshal(responseBits, &apiErr) == nil && strings.TrimSpace(apiErr.Error.Message) != "" {
			message = strings.TrimSpace(apiErr.Error.Message)
		}
		if message == "" {
			message = "unknown anthropic error"
		}
		return nil, utils.WrapIfNotNil(fmt.Errorf("anthropic API error (%d): %s", httpResponse.StatusCode, message))
	}

	response := messageResponse{}
	if err := json.Unmarshal(responseBits, &response); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return &response, nil
}

func resolveModelName(cfg model.GeneratorConfig) string {
	if fromEnv := strings.TrimSpace(os.Getenv(envAnthropicModel)); fromEnv != "" {
		return generation.ResolveModelName(cfg, fromEnv)
	}
	return generation.ResolveModelName(cfg, defaultModelName)
}

func resolveMaxTokens(cfg model.GeneratorConfig) int {
	if cfg.MaxTokens != nil && *cfg.MaxTokens > 0 {
		return *cfg.MaxTokens
	}
	return defaultMaxTokens
}

func applyMessageMetadata(meta model.GenerationMetadata, response *messageResponse) {
	if response == nil {
		return
	}

	totals := generation.Usage{APICalls: 1}
	if response.Usage != nil {
		totals.InputTokens = response.Usage.InputTokens
		totals.OutputTokens = response.Usage.OutputTokens
		totals.TotalTokens = response.Usage.InputTokens + response.Usage.OutputTokens
		totals.CachedTokens = response.Usage.CacheReadInput + response.Usage.CacheCreationInput
	}
	generation.ApplyUsage(meta, totals)
	generation.ApplyResponse(meta, response.ID, response.StopReason)
	if strings.TrimSpace(response.Model) != "" {
		meta[model.MetadataKeyModel] = response.Model
	}
}
