package pipeline

import (
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/audio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

// Request is everything one run needs. Intro and Outro are optional.
type Request struct {
	Script string
	Voices model.VoiceMap
	Intro  *audio.Clip
	Outro  *audio.Clip
}

type Result struct {
	RunID       string                `json:"run_id"`
	State       model.RunState        `json:"state"`
	Outcome     model.Outcome         `json:"outcome,omitempty"`
	Reason      string                `json:"reason,omitempty"`
	Track       *audio.GeneratedTrack `json:"track,omitempty"`
	Warnings    []model.LineWarning   `json:"warnings"`
	Utterances  int                   `json:"utterances"`
	Synthesized int                   `json:"synthesized"`
}

// Event is delivered to an Observer on every state transition and after each utterance.
type Event struct {
	RunID     string
	State     model.RunState
	Utterance *model.Utterance
	Warning   *model.LineWarning
	Completed int
	Total     int
}

// Observer must not block; it is called from worker goroutines under a lock.
type Observer func(Event)
