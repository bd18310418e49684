package llms

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type RegistrySuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) TestLookupDefaultsAndAliases() {
	provider, err := Lookup("")
	s.Require().NoError(err)
	s.Equal(DefaultProvider, provider.Name)

	provider, err = Lookup(" Claude ")
	s.Require().NoError(err)
	s.Equal("anthropic", provider.Name)
	s.NotNil(provider.NewFactSheet)
	s.NotNil(provider.NewText)
}

func (s *RegistrySuite) TestLookupUnknown() {
	_, err := Lookup("mystery")
	s.Require().Error(err)
	s.Contains(err.Error(), "available: anthropic, bedrock, gemini, huggingface, ollama, openai")
}

func (s *RegistrySuite) TestEveryProviderComplete() {
	for _, name := range Names() {
		provider, err := Lookup(name)
		s.Require().NoError(err)
		s.NotNil(provider.NewFactSheet, name)
		s.NotNil(provider.NewText, name)
	}
}
