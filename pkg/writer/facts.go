package writer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const factsSystemPrompt = "You are a helpful research assistant. Every fact is one self-contained sentence."

var listMarker = regexp.MustCompile(`^(?:[-*\x{2022}]|\d+[.)])\s*`)

// ExtractFacts asks the provider for a structured fact sheet. When the structured call
// fails, it retries once as plain text and parses one fact per line.
func (w *Writer) ExtractFacts(ctx context.Context, content string) (model.FactSheet, model.GenerationMetadata, error) {
	log := logging.NewLogger(ctx)
	if strings.TrimSpace(content) == "" {
		return model.FactSheet{}, nil, utils.WrapIfNotNil(ErrNoContent)
	}

	prompt := fmt.Sprintf(
		"Use all the information found in the article and give me the %d most important facts:\n\n%s",
		w.cfg.FactCount,
		TruncateText(content, w.cfg.MaxInputChars),
	)

	sheet, meta, err := w.structuredFacts(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			log.Errorf("error: %v", err)
			return model.FactSheet{}, meta, utils.WrapIfNotNil(err)
		}
		log.Warnf("structured fact extraction failed provider=%s err=%v, retrying as text", w.provider.Name, err)

		var textErr error
		sheet, meta, textErr = w.textFacts(ctx, prompt)
		if textErr != nil {
			err = errors.Join(err, textErr)
			log.Errorf("error: %v", err)
			return model.FactSheet{}, meta, utils.WrapIfNotNil(err)
		}
	}

	sheet.Facts = cleanFacts(sheet.Facts, w.cfg.FactCount)
	if len(sheet.Facts) == 0 {
		log.Errorf("error: %v", ErrNoFacts)
		return model.FactSheet{}, meta, utils.WrapIfNotNil(ErrNoFacts)
	}
	if len(sheet.Facts) < w.cfg.FactCount {
		log.Warnf("fewer facts than requested wanted=%d got=%d", w.cfg.FactCount, len(sheet.Facts))
	}
	return sheet, meta, nil
}

func (w *Writer) structuredFacts(ctx context.Context, prompt string) (model.FactSheet, model.GenerationMetadata, error) {
	gen, err := w.provider.NewFactSheet(prompt, w.cfg.GeneratorOptions...)
	if err != nil {
		return model.FactSheet{}, nil, utils.WrapIfNotNil(err)
	}
	gen.AddPromptContext(ctx, model.ContextMessageTypeSystem, factsSystemPrompt)
	return gen.Generate(ctx)
}

func (w *Writer) textFacts(ctx context.Context, prompt string) (model.FactSheet, model.GenerationMetadata, error) {
	gen, err := w.provider.NewText(prompt+"\n\nList one fact per line.", w.cfg.GeneratorOptions...)
	if err != nil {
		return model.FactSheet{}, nil, utils.WrapIfNotNil(err)
	}
	gen.AddPromptContext(ctx, model.ContextMessageTypeSystem, factsSystemPrompt)
	text, meta, err := gen.Generate(ctx)
	if err != nil {
		return model.FactSheet{}, meta, utils.WrapIfNotNil(err)
	}
	return model.FactSheet{Facts: ParseFactLines(text)}, meta, nil
}

// ParseFactLines reads one fact per non-empty line, dropping bullet and number markers.
func ParseFactLines(text string) []string {
	facts := make([]string, 0)
	for line := range strings.Lines(text) {
		fact := strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if fact != "" {
			facts = append(facts, fact)
		}
	}
	return facts
}

func cleanFacts(facts []string, limit int) []string {
	cleaned := make([]string, 0, len(facts))
	for _, fact := range facts {
		fact = strings.TrimSpace(fact)
		if fact == "" {
			continue
		}
		cleaned = append(cleaned, fact)
		if len(cleaned) == limit {
			break
		}
	}
	return cleaned
}

// FormatFacts renders a fact sheet as a bulleted list for prompts and storage.
func FormatFacts(sheet model.FactSheet) string {
	var out strings.Builder
	for i, fact := range sheet.Facts {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString("- ")
		out.WriteString(fact)
	}
	return out.String()
}
