package ollama

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

type ContentSuite struct {
	suite.Suite
}

func TestContentSuite(t *testing.T) {
	suite.Run(t, new(ContentSuite))
}

func (s *ContentSuite) TestMessagesKeepContextOrderAndRoles() {
	gen, err := NewStringContentGenerator("Write it")
	s.Require().NoError(err)
	text := gen.(*textGenerator)
	text.AddPromptContext(context.Background(), model.ContextMessageTypeSystem, "persona")
	text.AddPromptContext(context.Background(), model.ContextMessageTypeAssistant, "draft")

	messages := text.messages()
	s.Require().Len(messages, 3)
	s.Equal("system", messages[0].Role)
	s.Equal("assistant", messages[1].Role)
	s.Equal("user", messages[2].Role)
	s.Equal("Write it", messages[2].Content)
}

func (s *ContentSuite) TestBaseURLFallsBackToDefault() {
	s.T().Setenv("OLLAMA_BASE_URL", "")
	s.Equal(defaultBaseURL, newClient(model.GeneratorConfig{}).baseURL)
	s.Equal("http://gpu:11434", newClient(model.GeneratorConfig{URL: " http://gpu:11434 "}).baseURL)
}

func (s *ContentSuite) TestCanceledContextSkipsCall() {
	gen, err := NewStringContentGenerator("Write it")
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = gen.Generate(ctx)
	s.ErrorIs(err, context.Canceled)
}
