package tests

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/ollama"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

type OllamaIntegrationSuite struct {
	ExternalDependenciesSuite
	baseURL   string
	chatModel string
}

func (s *OllamaIntegrationSuite) SetupSuite() {
	s.ExternalDependenciesSuite.SetupSuite()

	run, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("RUN_OLLAMA_TESTS")))
	if err != nil || !run {
		s.T().Skip("RUN_OLLAMA_TESTS is not true; skipping Ollama integration tests")
	}

	s.baseURL = strings.TrimSpace(os.Getenv("OLLAMA_BASE_URL"))
	s.chatModel = strings.TrimSpace(os.Getenv("OLLAMA_CHAT_MODEL"))
	if s.chatModel == "" {
		s.chatModel = "gpt-oss:20b"
	}
}

func (s *OllamaIntegrationSuite) generationOpts() []model.GeneratorOption {
	opts := []model.GeneratorOption{
		model.WithModel(s.chatModel),
	}
	if s.baseURL != "" {
		opts = append(opts, model.WithURL(s.baseURL))
	}
	return opts
}

func (s *OllamaIntegrationSuite) TestStringGeneration() {
	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	defer cancel()

	generator, err := ollama.NewStringContentGenerator(
		"Write one sentence a podcast host could use to open an episode about bike lanes.",
		s.generationOpts()...,
	)
	require.NoError(s.T(), err)

	output, metadata, err := generator.Generate(ctx)
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), strings.TrimSpace(output))
	assert.Equal(s.T(), "ollama", metadata[model.MetadataKeyProvider])
	assert.Equal(s.T(), s.chatModel, metadata[model.MetadataKeyModel])
}

func (s *OllamaIntegrationSuite) TestStructuredGeneration() {
	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	defer cancel()

	generator, err := ollama.NewStructureContentGenerator[model.FactSheet](factSheetPrompt, s.generationOpts()...)
	require.NoError(s.T(), err)

	output, _, err := generator.Generate(ctx)
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), output.Facts)
}

func (s *OllamaIntegrationSuite) TestWriterDraftsScript() {
	assertWriterDraftsScript(s.T(), "ollama", s.generationOpts()...)
}

func TestOllamaIntegrationSuite(t *testing.T) {
	suite.Run(t, new(OllamaIntegrationSuite))
}
