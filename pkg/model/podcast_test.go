package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type PodcastSuite struct {
	suite.Suite
}

func TestPodcastSuite(t *testing.T) {
	suite.Run(t, new(PodcastSuite))
}

func (s *PodcastSuite) TestSynthesisFailureMessageCarriesStatus() {
	err := &SynthesisFailure{Kind: FailureKindProvider, Provider: "elevenlabs", StatusCode: 500, Body: " boom "}
	s.Equal("elevenlabs API error (500): boom", err.Error())
}

func (s *PodcastSuite) TestSynthesisFailureUnwrap() {
	cause := errors.New("dial tcp: timeout")
	var wrapped error = &SynthesisFailure{Kind: FailureKindTransport, Provider: "elevenlabs", Err: cause}

	s.ErrorIs(wrapped, cause)
	var failure *SynthesisFailure
	s.Require().ErrorAs(wrapped, &failure)
	s.Equal(FailureKindTransport, failure.Kind)
}

func (s *PodcastSuite) TestShowProfileVoiceMapSkipsIncompleteHosts() {
	profile := ShowProfile{
		Hosts: []Host{
			{Name: " Ana ", Voice: "v1"},
			{Name: "Ben", Voice: ""},
			{Name: "", Voice: "v3"},
		},
	}

	s.Equal(VoiceMap{"Ana": "v1"}, profile.VoiceMap())
}

func (s *PodcastSuite) TestVoiceMapCloneIsIndependent() {
	original := VoiceMap{"Ana": "v1"}
	cloned := original.Clone()
	cloned["Ben"] = "v2"

	s.Len(original, 1)
	s.Equal([]string{"Ana", "Ben"}, cloned.Speakers())
}

func (s *PodcastSuite) TestLineWarningString() {
	w := LineWarning{LineIndex: 2, Speaker: "Ben", StatusCode: 500, Reason: "server error"}
	s.Equal("Failed to create audio for line 2: 500 - server error", w.String())
}
