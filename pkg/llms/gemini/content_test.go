package gemini

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/genai"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

type ContentSuite struct {
	suite.Suite
}

func TestContentSuite(t *testing.T) {
	suite.Run(t, new(ContentSuite))
}

func (s *ContentSuite) TestBuildContentsRoutesSystemToInstruction() {
	contexts := []model.PromptContext{
		{MessageType: model.ContextMessageTypeSystem, Content: "You are a podcast writer."},
		{MessageType: model.ContextMessageTypeHuman, Content: "Article text"},
		{MessageType: model.ContextMessageTypeAssistant, Content: "Earlier draft"},
	}

	contents := buildContents("Write the script", contexts)
	s.Require().Len(contents, 3)
	s.Equal(string(genai.RoleUser), contents[0].Role)
	s.Equal(string(genai.RoleModel), contents[1].Role)
	s.Equal("Write the script", contents[2].Parts[0].Text)

	config := buildGenerateContentConfig(model.GeneratorConfig{}, contexts)
	s.Require().NotNil(config.SystemInstruction)
	s.Equal("You are a podcast writer.", config.SystemInstruction.Parts[0].Text)
}

func (s *ContentSuite) TestConfigCarriesSamplingOptions() {
	cfg := model.ResolveGeneratorOpts(model.WithTemperature(0.4), model.WithMaxTokens(2048))
	config := buildGenerateContentConfig(cfg, nil)

	s.Nil(config.SystemInstruction)
	s.Require().NotNil(config.Temperature)
	s.InDelta(0.4, *config.Temperature, 1e-6)
	s.EqualValues(2048, config.MaxOutputTokens)
}

func (s *ContentSuite) TestResolveModelDefault() {
	s.Equal(defaultGenerationModelName, resolveGenerationModelName(model.GeneratorConfig{}))
}
