package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const (
	defaultNewsAPIBaseURL = "https://newsapi.org"
	envNewsAPIKey         = "NEWS_API_KEY"
)

type NewsAPI struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Content     string `json:"content"`
	} `json:"articles"`
}

// NewNewsAPI falls back to NEWS_API_KEY and the public endpoint when apiKey or baseURL are empty.
func NewNewsAPI(apiKey string, baseURL string) (*NewsAPI, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(envNewsAPIKey))
	}
	if apiKey == "" {
		return nil, utils.WrapIfNotNil(errors.New("news api key is required (set NEWS_API_KEY)"))
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultNewsAPIBaseURL
	}
	return &NewsAPI{
		httpClient: newHTTPClient(),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}, nil
}

func (n *NewsAPI) Search(ctx context.Context, query string) ([]model.Article, error) {
	log := logging.NewLogger(ctx)
	query = strings.TrimSpace(query)
	if query == "" {
		err := errors.New("query is required")
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("apiKey", n.apiKey)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/v2/everything?"+params.Encode(), nil)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	request.Header.Set("User-Agent", userAgent)

	response, err := n.httpClient.Do(request)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	decoded := newsAPIResponse{}
	decodeErr := json.Unmarshal(body, &decoded)
	if response.StatusCode != http.StatusOK || decoded.Status == "error" {
		message := strings.TrimSpace(string(body))
		if decodeErr == nil && strings.TrimSpace(decoded.Message) != "" {
			message = strings.TrimSpace(decoded.Message)
		}
		err = fmt.Errorf("newsapi API error (%d): %s", response.StatusCode, message)
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	if decodeErr != nil {
		log.Errorf("error: %v", decodeErr)
		return nil, utils.WrapIfNotNil(decodeErr)
	}

	articles := make([]model.Article, 0, len(decoded.Articles))
	for _, item := range decoded.Articles {
		if strings.TrimSpace(item.URL) == "" {
			continue
		}
		articles = append(articles, model.Article{
			Title:       strings.TrimSpace(item.Title),
			URL:         item.URL,
			Source:      item.Source.Name,
			Description: strings.TrimSpace(item.Description),
			PublishedAt: item.PublishedAt,
			Content:     item.Content,
		})
	}
	log.Infof("newsapi search query=%q articles=%d", query, len(articles))
	return articles, nil
}
