package research

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const (
	defaultGoogleNewsURL = "https://news.google.com/rss/search"
	DefaultNewsWindow    = "1d"
)

// GoogleNews searches the Google News RSS feed. Window is a relative period such as "1d" or "7d".
type GoogleNews struct {
	FeedURL  string
	Window   string
	Language string
	Country  string
	parser   *gofeed.Parser
}

func NewGoogleNews(window string, language string, country string) *GoogleNews {
	parser := gofeed.NewParser()
	parser.Client = newHTTPClient()
	parser.UserAgent = userAgent
	return &GoogleNews{
		FeedURL:  defaultGoogleNewsURL,
		Window:   window,
		Language: language,
		Country:  country,
		parser:   parser,
	}
}

func (g *GoogleNews) searchURL(query string) string {
	window := strings.TrimSpace(g.Window)
	if window == "" {
		window = DefaultNewsWindow
	}
	language := strings.TrimSpace(g.Language)
	if language == "" {
		language = "en-US"
	}
	country := strings.TrimSpace(g.Country)
	if country == "" {
		country = "US"
	}
	shortLanguage, _, _ := strings.Cut(language, "-")

	params := url.Values{}
	params.Set("q", query+" when:"+window)
	params.Set("hl", language)
	params.Set("gl", country)
	params.Set("ceid", country+":"+shortLanguage)
	return g.FeedURL + "?" + params.Encode()
}

func (g *GoogleNews) Search(ctx context.Context, query string) ([]model.Article, error) {
	log := logging.NewLogger(ctx)
	query = strings.TrimSpace(query)
	if query == "" {
		err := errors.New("query is required")
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	feed, err := g.parser.ParseURLWithContext(g.searchURL(query), ctx)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	articles := make([]model.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || strings.TrimSpace(item.Link) == "" {
			continue
		}
		title, source := splitHeadline(item.Title)
		articles = append(articles, model.Article{
			Title:       title,
			URL:         item.Link,
			Source:      source,
			Description: item.Description,
			PublishedAt: item.Published,
		})
	}
	log.Infof("google news search query=%q window=%s articles=%d", query, g.Window, len(articles))
	return articles, nil
}

// splitHeadline separates the "Headline - Publisher" form Google News uses for item titles.
func splitHeadline(title string) (string, string) {
	title = strings.TrimSpace(title)
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}
