package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestDefaults() {
	s.T().Setenv("PODCAST_TARGET_DBFS", "")
	os.Unsetenv("PODCAST_TARGET_DBFS")

	cfg, err := Load()
	s.Require().NoError(err)

	s.Equal(-20.0, cfg.Audio.TargetDBFS)
	s.Equal(1, cfg.Audio.Concurrency)
	s.False(cfg.Audio.NormalizeBookends)
	s.Equal("elevenlabs", cfg.Speech.Provider)
	s.Equal(0.75, cfg.Speech.Stability)
	s.Equal(0.75, cfg.Speech.SimilarityBoost)
	s.Equal("sqlite://podcast.db", cfg.DatabaseURL)
	s.Equal(20, cfg.LLM.FactCount)
	s.Equal(30000, cfg.LLM.MaxInputChars)
	s.Equal("1d", cfg.Research.NewsWindow)
}

func (s *ConfigSuite) TestEnvironmentOverridesDotEnv() {
	dir := s.T().TempDir()
	dotenv := filepath.Join(dir, ".env")
	s.Require().NoError(os.WriteFile(dotenv, []byte("PODCAST_CONCURRENCY=4\nPODCAST_LOG_LEVEL=debug\n"), 0o600))
	s.T().Setenv("PODCAST_LOG_LEVEL", "warn")
	s.T().Setenv("PODCAST_CONCURRENCY", "")
	os.Unsetenv("PODCAST_CONCURRENCY")

	cfg, err := Load(filepath.Join(dir, "missing.env"), dotenv)
	s.Require().NoError(err)

	s.Equal(4, cfg.Audio.Concurrency)
	s.Equal("warn", cfg.LogLevel)
}

func (s *ConfigSuite) TestInvalidNumberFails() {
	s.T().Setenv("PODCAST_CONCURRENCY", "many")
	_, err := Load()
	s.Error(err)
}

func (s *ConfigSuite) TestSpeechOptionsPicksProviderKey() {
	cfg := &Config{
		Keys:   KeysConfig{ElevenLabs: "el", OpenAI: "oa"},
		Speech: SpeechConfig{Provider: "OpenAI", Stability: 0.5, SimilarityBoost: 0.6},
	}

	opts := cfg.SpeechOptions()
	s.Equal("oa", opts.AuthToken)
	s.Require().NotNil(opts.Stability)
	s.Equal(0.5, *opts.Stability)
}

func (s *ConfigSuite) TestGeneratorOptionsCarrySamplingSettings() {
	s.T().Setenv("PODCAST_LLM_TEMPERATURE", "0")
	s.T().Setenv("PODCAST_LLM_MAX_TOKENS", "2048")
	s.T().Setenv("PODCAST_LLM_REASONING", "High")
	s.T().Setenv("PODCAST_LLM_IGNORE_INVALID_OPTIONS", "false")
	s.T().Setenv("PODCAST_LLM_MODEL", "gpt-5-mini")

	cfg, err := Load()
	s.Require().NoError(err)

	resolved := model.ResolveGeneratorOpts(cfg.GeneratorOptions()...)
	s.Require().NotNil(resolved.Temperature)
	s.Equal(0.0, *resolved.Temperature)
	s.Require().NotNil(resolved.MaxTokens)
	s.Equal(2048, *resolved.MaxTokens)
	s.Require().NotNil(resolved.ReasoningLevel)
	s.Equal(model.ReasoningLevelHigh, *resolved.ReasoningLevel)
	s.False(resolved.IgnoreInvalidGeneratorOptions)
	s.Require().NotNil(resolved.Model)
	s.Equal("gpt-5-mini", *resolved.Model)
}

func (s *ConfigSuite) TestGeneratorOptionsLeaveSamplingUnsetByDefault() {
	cfg := &Config{LLM: LLMConfig{IgnoreInvalidOptions: true}}

	resolved := model.ResolveGeneratorOpts(cfg.GeneratorOptions()...)
	s.Nil(resolved.Temperature)
	s.Nil(resolved.MaxTokens)
	s.Nil(resolved.ReasoningLevel)
	s.True(resolved.IgnoreInvalidGeneratorOptions)
}

func (s *ConfigSuite) TestInvalidLLMSettingsFail() {
	cases := map[string]string{
		"PODCAST_LLM_TEMPERATURE": "hot",
		"PODCAST_LLM_MAX_TOKENS":  "-5",
		"PODCAST_LLM_REASONING":   "extreme",
	}
	for key, value := range cases {
		s.Run(key, func() {
			s.T().Setenv(key, value)
			_, err := Load()
			s.Error(err)
		})
	}
}

func (s *ConfigSuite) TestPipelineOptionsRejectsUnknownEncoding() {
	cfg := &Config{Audio: AudioConfig{Encoding: "ogg"}}
	_, err := cfg.PipelineOptions()
	s.Error(err)
}

func (s *ConfigSuite) TestShowsRoundTrip() {
	path := filepath.Join(s.T().TempDir(), "shows.yaml")
	shows := []model.ShowProfile{{
		Name:        "Tech Talk",
		Description: "Weekly tech news",
		Hosts: []model.Host{
			{Name: "Ana", Voice: "v1", Personality: "curious"},
			{Name: "Ben", Voice: "v2", Personality: "skeptical"},
		},
	}}
	s.Require().NoError(SaveShows(path, shows))

	loaded, err := LoadShows(path)
	s.Require().NoError(err)
	s.Equal(shows, loaded)

	found, err := FindShow(loaded, "tech talk")
	s.Require().NoError(err)
	s.Equal(model.VoiceMap{"Ana": "v1", "Ben": "v2"}, found.VoiceMap())

	_, err = FindShow(loaded, "other")
	s.ErrorIs(err, ErrShowNotFound)
}

func (s *ConfigSuite) TestShowsVersionChecked() {
	path := filepath.Join(s.T().TempDir(), "shows.yaml")
	s.Require().NoError(os.WriteFile(path, []byte("version: 2\nshows: []\n"), 0o600))

	_, err := LoadShows(path)
	s.Error(err)
}
