package writer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/script"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const (
	EpisodeDateLayout = "January 02, 2006"
	draftSystemPrompt = "You are a helpful assistant that writes podcast scripts. Every line starts with the speaker's name and a colon."
)

// DraftScript writes the first segment of an episode for the show's three hosts.
func (w *Writer) DraftScript(ctx context.Context, show model.ShowProfile, facts model.FactSheet, date time.Time) (string, model.GenerationMetadata, error) {
	log := logging.NewLogger(ctx)

	hosts, err := draftHosts(show)
	if err != nil {
		log.Errorf("error: %v", err)
		return "", nil, utils.WrapIfNotNil(err)
	}
	if len(facts.Facts) == 0 {
		log.Errorf("error: %v", ErrNoFacts)
		return "", nil, utils.WrapIfNotNil(ErrNoFacts)
	}

	gen, err := w.provider.NewText(BuildScriptPrompt(show.Name, show.Description, hosts, facts, date), w.cfg.GeneratorOptions...)
	if err != nil {
		log.Errorf("error: %v", err)
		return "", nil, utils.WrapIfNotNil(err)
	}
	gen.AddPromptContext(ctx, model.ContextMessageTypeSystem, draftSystemPrompt)

	text, meta, err := gen.Generate(ctx)
	if err != nil {
		log.Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}

	renames := make(map[string]string, len(hosts))
	for i, host := range hosts {
		renames[fmt.Sprintf("Host %d", i+1)] = host.Name
	}
	text = strings.TrimSpace(script.FormatScript(text, renames))
	if len(script.Collect(text)) == 0 {
		log.Errorf("error: %v", ErrEmptyDraft)
		return "", meta, utils.WrapIfNotNil(ErrEmptyDraft)
	}
	log.Infof("drafted script show=%q lines=%d", show.Name, len(script.Collect(text)))
	return text, meta, nil
}

func draftHosts(show model.ShowProfile) ([]model.Host, error) {
	hosts := make([]model.Host, 0, len(show.Hosts))
	for _, host := range show.Hosts {
		host.Name = strings.TrimSpace(host.Name)
		if host.Name != "" {
			hosts = append(hosts, host)
		}
	}
	if len(hosts) < RequiredHosts {
		return nil, fmt.Errorf("%w: got %d", ErrHostsNeeded, len(hosts))
	}
	return hosts[:RequiredHosts], nil
}

// BuildScriptPrompt lays out the show, the hosts' roles and the facts to discuss.
func BuildScriptPrompt(name string, description string, hosts []model.Host, facts model.FactSheet, date time.Time) string {
	lead, cohost, forecaster := hosts[0], hosts[1], hosts[2]

	var b strings.Builder
	fmt.Fprintf(&b, "Create a podcast script for the show called %q. The show is about %s. ", name, strings.TrimSpace(description))
	b.WriteString("Do not put emotions of speakers in brackets. ")
	fmt.Fprintf(&b, "Mention %q once in a casual way. ", date.Format(EpisodeDateLayout))
	b.WriteString("Always put the speaker's name followed by a colon before each line.\n\n")

	fmt.Fprintf(&b, "%s opens the show, introduces co-host %s and the main topic.", lead.Name, cohost.Name)
	writePersonality(&b, lead)
	fmt.Fprintf(&b, "%s is logical, but can be negative.", cohost.Name)
	writePersonality(&b, cohost)
	fmt.Fprintf(&b, "At the very start %s and %s chat in a friendly way and relate the day's stories to their own lives. ", lead.Name, cohost.Name)
	b.WriteString("They never ask each other directly how they are feeling, and they do not talk about the weather. ")
	b.WriteString("Each episode they bring a different mood and a personal anecdote explaining it.\n\n")

	fmt.Fprintf(&b, "They are joined by %s, who introduces themselves and predicts what will happen next in each story over the following week.", forecaster.Name)
	writePersonality(&b, forecaster)
	fmt.Fprintf(&b, "%s, %s and %s speak like they have known each other for years.\n\n", lead.Name, cohost.Name, forecaster.Name)

	b.WriteString("This is the first segment. End it by promising more in the next segment.\n\nFacts:\n")
	b.WriteString(FormatFacts(facts))
	return b.String()
}

func writePersonality(b *strings.Builder, host model.Host) {
	if personality := strings.TrimSpace(host.Personality); personality != "" {
		fmt.Fprintf(b, " %s: %s.", host.Name, strings.TrimSuffix(personality, "."))
	}
	b.WriteString(" ")
}
