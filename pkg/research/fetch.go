package research

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const (
	maxPageBytes       = 5 << 20
	defaultGatherLimit = 4
)

var ErrNoParagraphs = errors.New("page has no paragraph text")

type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{httpClient: newHTTPClient()}
}

// FetchArticle downloads a page and keeps the text of every <p> element, one per line.
func (f *Fetcher) FetchArticle(ctx context.Context, pageURL string) (model.Article, error) {
	log := logging.NewLogger(ctx)

	parsed, err := url.Parse(strings.TrimSpace(pageURL))
	if err == nil && parsed.Scheme != "http" && parsed.Scheme != "https" {
		err = fmt.Errorf("only http/https URLs are allowed: %q", pageURL)
	}
	if err == nil && parsed.Host == "" {
		err = fmt.Errorf("missing domain in URL: %q", pageURL)
	}
	if err != nil {
		log.Errorf("error: %v", err)
		return model.Article{}, utils.WrapIfNotNil(err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		log.Errorf("error: %v", err)
		return model.Article{}, utils.WrapIfNotNil(err)
	}
	request.Header.Set("User-Agent", userAgent)

	response, err := f.httpClient.Do(request)
	if err != nil {
		log.Errorf("error: %v", err)
		return model.Article{}, utils.WrapIfNotNil(err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		err = fmt.Errorf("fetch %s failed (%d): %s", parsed.Host, response.StatusCode, strings.TrimSpace(string(body)))
		log.Errorf("error: %v", err)
		return model.Article{}, utils.WrapIfNotNil(err)
	}

	article, err := ParseArticle(io.LimitReader(response.Body, maxPageBytes))
	if err != nil {
		log.Errorf("error: %v", err)
		return model.Article{}, utils.WrapIfNotNil(err)
	}
	article.URL = parsed.String()
	article.Source = parsed.Host
	if strings.TrimSpace(article.Content) == "" {
		log.Warnf("no paragraph text url=%s", article.URL)
		return article, utils.WrapIfNotNil(ErrNoParagraphs)
	}
	return article, nil
}

// ParseArticle extracts the <title> and the joined <p> text of an HTML document.
func ParseArticle(r io.Reader) (model.Article, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return model.Article{}, utils.WrapIfNotNil(err)
	}

	article := model.Article{}
	paragraphs := make([]string, 0)
	for node := range doc.Descendants() {
		if node.Type != html.ElementNode {
			continue
		}
		switch node.DataAtom {
		case atom.Title:
			if article.Title == "" {
				article.Title = strings.TrimSpace(nodeText(node))
			}
		case atom.P:
			if text := strings.TrimSpace(nodeText(node)); text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
	}
	article.Content = strings.Join(paragraphs, "\n")
	return article, nil
}

func nodeText(node *html.Node) string {
	var b strings.Builder
	for child := range node.Descendants() {
		if child.Type == html.TextNode {
			b.WriteString(child.Data)
		}
	}
	return b.String()
}

// Gather fetches every URL in parallel. Pages that fail are logged and left out; an
// error is returned only when nothing could be fetched.
func (f *Fetcher) Gather(ctx context.Context, urls []string) ([]model.Article, error) {
	log := logging.NewLogger(ctx)
	if len(urls) == 0 {
		return nil, nil
	}

	results := make([]model.Article, len(urls))
	errs := make([]error, len(urls))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(defaultGatherLimit)
	for i, pageURL := range urls {
		group.Go(func() error {
			article, err := f.FetchArticle(groupCtx, pageURL)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = article
			return nil
		})
	}
	_ = group.Wait()
	if err := ctx.Err(); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	articles := make([]model.Article, 0, len(urls))
	for i := range urls {
		if errs[i] != nil {
			log.Warnf("skipping article url=%s err=%v", urls[i], errs[i])
			continue
		}
		articles = append(articles, results[i])
	}
	if len(articles) == 0 {
		err := errors.Join(errs...)
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	return articles, nil
}

// Combine joins article bodies into one research document for fact extraction.
func Combine(articles []model.Article) string {
	parts := make([]string, 0, len(articles))
	for _, article := range articles {
		body := strings.TrimSpace(article.Content)
		if body == "" {
			continue
		}
		if title := strings.TrimSpace(article.Title); title != "" {
			body = title + "\n" + body
		}
		parts = append(parts, body)
	}
	return strings.Join(parts, "\n\n")
}
