// Package research finds news stories and pulls article text for the script writer.
package research

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxRedirects       = 5
	userAgent          = "Mozilla/5.0 (compatible; polyglot-podcast/1.0; +https://github.com/Nephrolytics-ai/polyglot-podcast)"
)

var ErrNoResults = errors.New("search returned no articles")

// Searcher finds candidate articles for a topic.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.Article, error)
}

type SearcherFunc func(ctx context.Context, query string) ([]model.Article, error)

func (f SearcherFunc) Search(ctx context.Context, query string) ([]model.Article, error) {
	return f(ctx, query)
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: defaultHTTPTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}
