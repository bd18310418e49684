package tests

import (
	"context"
	"strings"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/script"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/writer"
)

const researchArticle = `City council approves new bike lanes
The city council voted 7-2 on Tuesday to add 40 kilometers of protected bike lanes over the next three years.
The plan costs 12 million dollars and is funded by a state transportation grant.
Construction on the first 8 kilometers along Main Street starts in April.
Local businesses were split: the downtown association supported the plan while some shop owners worried about parking.
The mayor said cycling commuters doubled since 2019.`

var sampleShow = model.ShowProfile{
	Name:        "City Desk",
	Description: "A short daily show about local news.",
	Hosts: []model.Host{
		{Name: "Ana", Personality: "curious and upbeat"},
		{Name: "Ben", Personality: "skeptical and dry"},
		{Name: "Cy", Personality: "warm and practical"},
	},
}

const factSheetPrompt = "Give me the 5 most important facts from this article:\n\n" + researchArticle

// assertWriterDraftsScript runs fact extraction and drafting against a live provider.
func assertWriterDraftsScript(t require.TestingT, providerName string, opts ...model.GeneratorOption) {
	ctx, cancel := context.WithTimeout(context.Background(), 240*time.Second)
	defer cancel()

	w, err := writer.New(providerName, writer.WithFactCount(5), writer.WithGeneratorOptions(opts...))
	require.NoError(t, err)

	facts, metadata, err := w.ExtractFacts(ctx, researchArticle)
	require.NoError(t, err)
	require.NotEmpty(t, facts.Facts)
	assert.LessOrEqual(t, len(facts.Facts), 5)
	assert.NotEmpty(t, metadata[model.MetadataKeyLatencyMs])

	text, _, err := w.DraftScript(ctx, sampleShow, facts, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.NotEmpty(t, script.Collect(text))

	speakers := strings.Join(script.Speakers(text), ",")
	assert.Contains(t, speakers, "Ana")
}
