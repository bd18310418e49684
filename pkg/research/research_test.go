package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

const samplePage = `<!DOCTYPE html>
<html><head><title> Chips Get Faster </title><script>var p = "<p>nope</p>";</script></head>
<body>
<nav><a href="/">Home</a></nav>
<p>First <b>bold</b> paragraph.</p>
<div><p>  Second paragraph.  </p></div>
<p>   </p>
</body></html>`

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Search</title>
<item><title>Chips get faster - Tech Daily</title><link>https://example.com/a</link>
<pubDate>Tue, 05 Mar 2024 09:00:00 GMT</pubDate><description>desc a</description></item>
<item><title>No publisher here</title><link>https://example.com/b</link></item>
<item><title>Missing link</title></item>
</channel></rss>`

type ResearchSuite struct {
	suite.Suite
}

func TestResearchSuite(t *testing.T) {
	suite.Run(t, new(ResearchSuite))
}

func (s *ResearchSuite) TestParseArticleJoinsParagraphs() {
	article, err := ParseArticle(strings.NewReader(samplePage))
	s.Require().NoError(err)
	s.Equal("Chips Get Faster", article.Title)
	s.Equal("First bold paragraph.\nSecond paragraph.", article.Content)
}

func (s *ResearchSuite) TestFetchArticle() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.NotEmpty(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	article, err := NewFetcher().FetchArticle(context.Background(), server.URL+"/story")
	s.Require().NoError(err)
	s.Equal(server.URL+"/story", article.URL)
	s.Contains(article.Content, "Second paragraph.")
}

func (s *ResearchSuite) TestFetchArticleRejectsBadScheme() {
	_, err := NewFetcher().FetchArticle(context.Background(), "file:///etc/passwd")
	s.Require().Error(err)
	s.Contains(err.Error(), "only http/https")
}

func (s *ResearchSuite) TestFetchArticleStatusError() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	_, err := NewFetcher().FetchArticle(context.Background(), server.URL)
	s.Require().Error(err)
	s.Contains(err.Error(), "(410)")
}

func (s *ResearchSuite) TestGatherKeepsOrderAndSkipsFailures() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/one":
			_, _ = w.Write([]byte("<html><head><title>One</title></head><body><p>alpha</p></body></html>"))
		case "/two":
			_, _ = w.Write([]byte("<html><head><title>Two</title></head><body><p>beta</p></body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	articles, err := NewFetcher().Gather(context.Background(), []string{server.URL + "/one", server.URL + "/missing", server.URL + "/two"})
	s.Require().NoError(err)
	s.Require().Len(articles, 2)
	s.Equal("One", articles[0].Title)
	s.Equal("Two", articles[1].Title)
	s.Equal("One\nalpha\n\nTwo\nbeta", Combine(articles))
}

func (s *ResearchSuite) TestGatherAllFail() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := NewFetcher().Gather(context.Background(), []string{server.URL + "/a"})
	s.Require().Error(err)
}

func (s *ResearchSuite) TestNewsAPISearch() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/v2/everything", r.URL.Path)
		s.Equal("kidney health", r.URL.Query().Get("q"))
		s.Equal("news-key", r.URL.Query().Get("apiKey"))
		_, _ = w.Write([]byte(`{"status":"ok","articles":[
			{"source":{"name":"Wire"},"title":" Story ","url":"https://example.com/s","publishedAt":"2024-03-05T09:00:00Z"},
			{"source":{"name":"Wire"},"title":"No url","url":""}]}`))
	}))
	defer server.Close()

	client, err := NewNewsAPI("news-key", server.URL)
	s.Require().NoError(err)
	articles, err := client.Search(context.Background(), "kidney health")
	s.Require().NoError(err)
	s.Require().Len(articles, 1)
	s.Equal("Story", articles[0].Title)
	s.Equal("Wire", articles[0].Source)
}

func (s *ResearchSuite) TestNewsAPIError() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`))
	}))
	defer server.Close()

	client, err := NewNewsAPI("bad", server.URL)
	s.Require().NoError(err)
	_, err = client.Search(context.Background(), "x")
	s.Require().Error(err)
	s.Contains(err.Error(), "newsapi API error (401): Your API key is invalid.")
}

func (s *ResearchSuite) TestNewsAPIRequiresKey() {
	s.T().Setenv(envNewsAPIKey, "")
	_, err := NewNewsAPI("", "")
	s.Require().Error(err)
}

func (s *ResearchSuite) TestGoogleNewsSearch() {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	news := NewGoogleNews("7d", "en-GB", "GB")
	news.FeedURL = server.URL
	articles, err := news.Search(context.Background(), "chips")
	s.Require().NoError(err)
	s.Require().Len(articles, 2)
	s.Equal("Chips get faster", articles[0].Title)
	s.Equal("Tech Daily", articles[0].Source)
	s.Equal("No publisher here", articles[1].Title)
	s.Empty(articles[1].Source)

	s.Contains(gotQuery, "q=chips+when%3A7d")
	s.Contains(gotQuery, "hl=en-GB")
	s.Contains(gotQuery, "gl=GB")
	s.Contains(gotQuery, "ceid=GB%3Aen")
}
