package script

import (
	"strings"
	"testing"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/stretchr/testify/suite"
)

type SplitSuite struct {
	suite.Suite
}

func TestSplitSuite(t *testing.T) {
	suite.Run(t, new(SplitSuite))
}

func (s *SplitSuite) TestDropsLinesWithoutDelimiter() {
	text := "Ana: Hello there\nBen: Hi Ana\n(no colon line)\nCara: What's up"

	utterances := Collect(text)

	s.Require().Len(utterances, 3)
	s.Equal(model.Utterance{Speaker: "Ana", Text: "Hello there", SequenceIndex: 0, LineNumber: 1}, utterances[0])
	s.Equal(model.Utterance{Speaker: "Ben", Text: "Hi Ana", SequenceIndex: 1, LineNumber: 2}, utterances[1])
	s.Equal(model.Utterance{Speaker: "Cara", Text: "What's up", SequenceIndex: 2, LineNumber: 4}, utterances[2])
}

func (s *SplitSuite) TestSplitsOnFirstDelimiterOnly() {
	utterances := Collect("  Ana  :  Time check: 10:30 sharp  ")

	s.Require().Len(utterances, 1)
	s.Equal("Ana", utterances[0].Speaker)
	s.Equal("Time check: 10:30 sharp", utterances[0].Text)
}

func (s *SplitSuite) TestEmptyTextYieldsNothing() {
	s.Empty(Collect(""))
	s.Empty(Collect("\n\n   \n"))
}

func (s *SplitSuite) TestCountMatchesDelimitedLines() {
	texts := []string{
		"a: 1\nb: 2\nc 3\n",
		"no delimiters here\nat all",
		"x:\n:y\n:\n",
		"Ana: hi\r\nBen: hello\r\n",
	}

	for _, text := range texts {
		expected := 0
		for _, line := range strings.Split(text, "\n") {
			if strings.Contains(line, ":") {
				expected++
			}
		}
		s.Len(Collect(text), expected, text)
	}
}

func (s *SplitSuite) TestTrimsCarriageReturns() {
	utterances := Collect("Ana: hi\r\nBen: hello\r\n")

	s.Require().Len(utterances, 2)
	s.Equal("hi", utterances[0].Text)
	s.Equal("hello", utterances[1].Text)
}

func (s *SplitSuite) TestSequenceIsRestartable() {
	seq := Split("Ana: one\nBen: two")

	first := make([]string, 0)
	for utterance := range seq {
		first = append(first, utterance.Text)
	}
	second := make([]string, 0)
	for utterance := range seq {
		second = append(second, utterance.Text)
	}

	s.Equal([]string{"one", "two"}, first)
	s.Equal(first, second)
}

func (s *SplitSuite) TestEarlyBreakStopsIteration() {
	count := 0
	for range Split("a: 1\nb: 2\nc: 3") {
		count++
		if count == 2 {
			break
		}
	}
	s.Equal(2, count)
}
