package tests

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/bedrock"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

const bedrockTestModel = "us.anthropic.claude-3-5-sonnet-20241022-v2:0"

type BedrockIntegrationSuite struct {
	ExternalDependenciesSuite
}

func (s *BedrockIntegrationSuite) SetupSuite() {
	s.ExternalDependenciesSuite.SetupSuite()

	accessKeyID := strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID"))
	secretAccessKey := strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY"))
	profile := strings.TrimSpace(os.Getenv("AWS_PROFILE"))

	hasStaticKeys := accessKeyID != "" && secretAccessKey != ""
	hasProfile := profile != ""
	if !hasStaticKeys && !hasProfile {
		s.T().Skip("AWS credentials not configured; set AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY or AWS_PROFILE")
	}
}

func (s *BedrockIntegrationSuite) generationOpts() []model.GeneratorOption {
	return []model.GeneratorOption{
		model.WithModel(bedrockTestModel),
		model.WithMaxTokens(1024),
		model.WithTemperature(0.2),
	}
}

func (s *BedrockIntegrationSuite) TestStringGeneration() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	generator, err := bedrock.NewStringContentGenerator(
		"Write one sentence a podcast host could use to open an episode about bike lanes.",
		s.generationOpts()...,
	)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), generator)

	output, metadata, err := generator.Generate(ctx)
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), strings.TrimSpace(output))
	assert.Equal(s.T(), "bedrock", metadata[model.MetadataKeyProvider])
	assert.Equal(s.T(), bedrockTestModel, metadata[model.MetadataKeyModel])
	assert.NotEmpty(s.T(), metadata[model.MetadataKeyLatencyMs])
}

func (s *BedrockIntegrationSuite) TestFactSheetGeneration() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	generator, err := bedrock.NewStructureContentGenerator[model.FactSheet](factSheetPrompt, s.generationOpts()...)
	require.NoError(s.T(), err)

	output, metadata, err := generator.Generate(ctx)
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), output.Facts)
	assert.Equal(s.T(), "bedrock", metadata[model.MetadataKeyProvider])
}

func (s *BedrockIntegrationSuite) TestWriterDraftsScript() {
	assertWriterDraftsScript(s.T(), "bedrock", s.generationOpts()...)
}

func TestBedrockIntegrationSuite(t *testing.T) {
	suite.Run(t, new(BedrockIntegrationSuite))
}
