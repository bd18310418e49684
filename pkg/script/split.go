package script

import (
	"iter"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

const speakerDelimiter = ":"

// Split yields one utterance per line that contains a speaker delimiter.
// The sequence is lazy and can be ranged over any number of times.
func Split(text string) iter.Seq[model.Utterance] {
	return func(yield func(model.Utterance) bool) {
		sequence := 0
		lineNumber := 0
		for line := range strings.Lines(text) {
			lineNumber++
			utterance, ok := parseLine(line)
			if !ok {
				continue
			}
			utterance.SequenceIndex = sequence
			utterance.LineNumber = lineNumber
			sequence++
			if !yield(utterance) {
				return
			}
		}
	}
}

func Collect(text string) []model.Utterance {
	utterances := make([]model.Utterance, 0)
	for utterance := range Split(text) {
		utterances = append(utterances, utterance)
	}
	return utterances
}

func parseLine(line string) (model.Utterance, bool) {
	line = strings.TrimRight(line, "\r\n")
	speaker, text, found := strings.Cut(line, speakerDelimiter)
	if !found {
		return model.Utterance{}, false
	}
	return model.Utterance{
		Speaker: strings.TrimSpace(speaker),
		Text:    strings.TrimSpace(text),
	}, true
}
