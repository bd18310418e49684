package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrEmptyScript     = errors.New("script contains no speaker lines")
	ErrExport          = errors.New("export failed")
	ErrNoAudioProduced = errors.New("no audio produced")
)

// Utterance is one attributed spoken line of a script.
type Utterance struct {
	Speaker       string `json:"speaker"`
	Text          string `json:"text"`
	SequenceIndex int    `json:"sequence_index"`
	// LineNumber is the 1-based line of the source script.
	LineNumber int `json:"line_number"`
}

// VoiceMap maps a speaker display name to a provider voice id.
type VoiceMap map[string]string

func (m VoiceMap) Clone() VoiceMap {
	if m == nil {
		return nil
	}
	cloned := make(VoiceMap, len(m))
	for k, v := range m {
		cloned[k] = v
	}
	return cloned
}

func (m VoiceMap) Speakers() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type FailureKind string

const (
	FailureKindUnmappedVoice  FailureKind = "unmapped_voice"
	FailureKindTransport      FailureKind = "synthesis_transport"
	FailureKindProvider       FailureKind = "synthesis_provider"
	FailureKindInvalidRequest FailureKind = "invalid_request"
	FailureKindDecode         FailureKind = "decode_failure"
)

// SynthesisFailure is returned by speech synthesizers for a single failed call.
type SynthesisFailure struct {
	Kind       FailureKind
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *SynthesisFailure) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, strings.TrimSpace(e.Body))
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s %s", e.Provider, e.Kind)
	}
}

func (e *SynthesisFailure) Unwrap() error {
	return e.Err
}

// LineWarning records a script line that did not make it into the track.
type LineWarning struct {
	LineIndex  int         `json:"line_index"`
	Sequence   int         `json:"sequence_index"`
	Speaker    string      `json:"speaker"`
	Kind       FailureKind `json:"kind"`
	StatusCode int         `json:"status_code,omitempty"`
	Reason     string      `json:"failure_reason"`
}

func (w LineWarning) String() string {
	if w.StatusCode != 0 {
		return fmt.Sprintf("Failed to create audio for line %d: %d - %s", w.LineIndex, w.StatusCode, w.Reason)
	}
	return fmt.Sprintf("Skipped line %d (%s): %s", w.LineIndex, w.Speaker, w.Reason)
}

type Outcome string

const (
	OutcomeTrackProduced   Outcome = "track_produced"
	OutcomeNoAudioProduced Outcome = "no_audio_produced"
)

type RunState string

const (
	RunStateIdle         RunState = "idle"
	RunStateSplitting    RunState = "splitting"
	RunStateSynthesizing RunState = "synthesizing"
	RunStateStitching    RunState = "stitching"
	RunStateExporting    RunState = "exporting"
	RunStateDone         RunState = "done"
	RunStateFailed       RunState = "failed"
)

// Host is one of the show's recurring voices.
type Host struct {
	Name        string `json:"name" yaml:"name"`
	Voice       string `json:"voice" yaml:"voice"`
	Personality string `json:"personality" yaml:"personality"`
}

// ShowProfile is the request-scoped description of a show used when drafting and rendering.
type ShowProfile struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Hosts       []Host `json:"hosts" yaml:"hosts"`
}

func (p ShowProfile) VoiceMap() VoiceMap {
	voices := make(VoiceMap, len(p.Hosts))
	for _, host := range p.Hosts {
		name := strings.TrimSpace(host.Name)
		voice := strings.TrimSpace(host.Voice)
		if name == "" || voice == "" {
			continue
		}
		voices[name] = voice
	}
	return voices
}

type FactSheet struct {
	Facts []string `json:"facts" jsonschema:"description=Interesting standalone facts taken from the source material"`
}

type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source,omitempty"`
	Description string `json:"description,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	Content     string `json:"content,omitempty"`
}
