package huggingface

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
	providerName       = "huggingface"
	defaultModelName   = "Qwen/Qwen2.5-72B-Instruct"
	defaultBaseURL     = "https://router.huggingface.co"
	defaultMaxTokens   = 2048
	defaultHTTPTimeout = 90 * time.Second
	envHFToken         = "HF_TOKEN"
	envHFBaseURL       = "HF_BASE_URL"
	envHFModel         = "HF_MODEL"
)

type apiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	ID      string                 `json:"id"`
	Model   string                 `json:"model"`
	Choices []chatCompletionChoice `json:"choices"`
	Usage   *chatCompletionUsage   `json:"usage"`
}

type chatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatCompletionUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

type chatCompletionErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func newAPIClient(cfg model.GeneratorConfig) (*apiClient, error) {
	apiKey := strings.TrimSpace(cfg.AuthToken)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(envHFToken))
	}
	if apiKey == "" {
		return nil, utils.WrapIfNotNil(errors.New("auth token is required (set WithAuthToken or HF_TOKEN)"))
	}

	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		baseURL = strings.TrimSpace(os.Getenv(envHFBaseURL))
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

func (c *apiClient) createChatCompletion(ctx context.Context, request chatCompletionRequest) (*chatCompletionResponse, error) {
	requestBits, err := json.Marshal(request)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	httpRequest, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/chat/completions",
		bytes.NewReader(requestBits),
	)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		apiErr := chatCompletionErrorResponse{}
		message := strings.TrimSpace(string(responseBits))
		if unmarshalErr := json.Unmarshal(responseBits, &apiErr); unmarshalErr == nil {
			if candidate := strings.TrimSpace(apiErr.Error.Message); candidate != "" {
				message = candidate
			}
		}
		if message == "" {
			message = "unknown huggingface error"
		}
		return nil, utils.WrapIfNotNil(fmt.Errorf("huggingface API error (%d): %s", httpResponse.StatusCode, message))
	}

	response := chatCompletionResponse{}
	if err := json.Unmarshal(responseBits, &response); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return &response, nil
}

func resolveModelName(cfg model.GeneratorConfig) string {
	fallback := defaultModelName
	if fromEnv := strings.TrimSpace(os.Getenv(envHFModel)); fromEnv != "" {
		fallback = fromEnv
	}
	return generation.ResolveModelName(cfg, fallback)
}

func resolveMaxTokens(cfg model.GeneratorConfig) int {
	if cfg.MaxTokens != nil && *cfg.MaxTokens > 0 {
		return *cfg.MaxTokens
	}
	return defaultMaxTokens
}

func applyHuggingFaceMetadata(meta model.GenerationMetadata, response *chatCompletionResponse) {
	if response == nil {
		return
	}

	totals := generation.Usage{APICalls: 1}
	if response.Usage != nil {
		totals.InputTokens = response.Usage.PromptTokens
		totals.OutputTokens = response.Usage.CompletionTokens
		totals.TotalTokens = response.Usage.TotalTokens
	}
	generation.ApplyUsage(meta, totals)

	finishReason := ""
	if len(response.Choices) > 0 {
		finishReason = response.Choices[0].FinishReason
	}
	generation.ApplyResponse(meta, response.ID, finishReason)
	if strings.TrimSpace(response.Model) != "" {
		meta[model.MetadataKeyModel] = response.Model
	}
}
