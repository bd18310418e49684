package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/research"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/store"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

// DraftRequest names the research for a new episode: explicit URLs, a search query, or
// raw text pasted by the user. The first non-empty source wins in that order.
type DraftRequest struct {
	ShowID uint     `json:"show_id"`
	URLs   []string `json:"urls,omitempty"`
	Query  string   `json:"query,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// DraftEpisode researches, extracts facts, writes the script and stores it against the show.
func (s *Studio) DraftEpisode(ctx context.Context, req DraftRequest) (*store.Script, error) {
	log := logging.NewLogger(ctx)
	if s.deps.Writer == nil {
		err := errors.Join(ErrNotConfigured, errors.New("script writer"))
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	show, err := s.deps.Store.GetShow(ctx, req.ShowID)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	content, sources, err := s.research(ctx, req)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	facts, _, err := s.deps.Writer.ExtractFacts(ctx, content)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	text, _, err := s.deps.Writer.DraftScript(ctx, show.Profile(), facts, s.deps.Now())
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	saved, err := s.deps.Store.SaveDraft(ctx, show, store.Draft{
		Content:     text,
		Facts:       facts.Facts,
		ResearchURL: strings.Join(sources, "\n"),
	})
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	log.Infof("drafted episode show=%q script=%d facts=%d sources=%d", show.Name, saved.ID, len(facts.Facts), len(sources))
	return saved, nil
}

func (s *Studio) research(ctx context.Context, req DraftRequest) (string, []string, error) {
	urls := compact(req.URLs)
	if len(urls) == 0 && strings.TrimSpace(req.Query) != "" {
		if s.deps.Searcher == nil {
			return "", nil, errors.Join(ErrNotConfigured, errors.New("news search"))
		}
		articles, err := s.deps.Searcher.Search(ctx, req.Query)
		if err != nil {
			return "", nil, err
		}
		if len(articles) == 0 {
			return "", nil, fmt.Errorf("%w: %q", research.ErrNoResults, req.Query)
		}
		for _, article := range articles {
			urls = append(urls, article.URL)
			if len(urls) == s.deps.MaxArticles {
				break
			}
		}
	}

	if len(urls) == 0 {
		if strings.TrimSpace(req.Text) == "" {
			return "", nil, errors.New("draft needs urls, a query or text")
		}
		return req.Text, nil, nil
	}

	articles, err := s.deps.Fetcher.Gather(ctx, urls)
	if err != nil {
		return "", nil, err
	}
	sources := make([]string, 0, len(articles))
	for _, article := range articles {
		sources = append(sources, article.URL)
	}
	content := research.Combine(articles)
	if strings.TrimSpace(req.Text) != "" {
		content = req.Text + "\n\n" + content
	}
	return content, sources, nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}

// ShowVoices returns the voice map of a stored show, for renders that name a show.
func (s *Studio) ShowVoices(ctx context.Context, showID uint) (model.VoiceMap, error) {
	show, err := s.deps.Store.GetShow(ctx, showID)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return show.Profile().VoiceMap(), nil
}
