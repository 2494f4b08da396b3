package slidefy

import (
	"context"
	"log/slog"
	"strings"
)

// maxQueryTerms is the number of override terms joined into a search query.
const maxQueryTerms = 3

// ResolvedKeywords is the keyword resolver's output: a short search query and
// a flag marking content unsuitable for imagery.
type ResolvedKeywords struct {
	Skip       bool
	Query      string
	Extraction Extraction
}

// ResolveKeywords turns slide text (or explicit keyword overrides) into a
// short 2-3 term search query.
//
// Explicit overrides bypass extraction entirely: the query is the first three
// override terms joined by ", " and Skip is always false. Otherwise the
// concatenated title and bullets go through extraction and refinement via the
// injected TextIntel. Extraction failure is never fatal: the resolver falls
// back to the (possibly empty) override list and continues.
func (p *Pipeline) ResolveKeywords(ctx context.Context, slide SlideInput) ResolvedKeywords {
	if overrides := nonEmpty(slide.Keywords); len(overrides) > 0 {
		return ResolvedKeywords{
			Query:      joinQuery(overrides),
			Extraction: Extraction{Keywords: overrides},
		}
	}

	slide = p.translateIfNeeded(ctx, slide)
	text := slideText(slide)

	extraction := p.extract(ctx, text, slide.Keywords)
	if extraction.Skip {
		return ResolvedKeywords{Skip: true, Extraction: extraction}
	}

	query := p.refine(ctx, extraction.Keywords)
	return ResolvedKeywords{Query: query, Extraction: extraction}
}

// translateIfNeeded replaces the slide's text wholesale with an English
// translation when the language heuristic flags non-English content.
// Translation failure keeps the original slide.
func (p *Pipeline) translateIfNeeded(ctx context.Context, slide SlideInput) SlideInput {
	text := slideText(slide)
	if text == "" || looksEnglish(text) || p.cfg.Intel == nil {
		return slide
	}

	translated, err := p.cfg.Intel.Translate(ctx, text)
	if err != nil || strings.TrimSpace(translated) == "" {
		slog.Warn("slidefy: translation failed, keeping original text", "error", errString(err))
		return slide
	}

	out := slide
	out.Title = translated
	out.Bullets = nil
	return out
}

// extract obtains a structured keyword set from the text-understanding
// capability. On any failure it substitutes the override list so the
// pipeline keeps going.
func (p *Pipeline) extract(ctx context.Context, text string, overrides []string) Extraction {
	if p.cfg.Intel == nil {
		return Extraction{Keywords: nonEmpty(overrides)}
	}
	extraction, err := p.cfg.Intel.ExtractKeywords(ctx, text)
	if err != nil {
		slog.Warn("slidefy: keyword extraction failed, using overrides", "error", err.Error())
		return Extraction{Keywords: nonEmpty(overrides)}
	}
	return extraction
}

// refine compresses the keyword set to a 2-3 term query. Refinement failure
// degrades to joining the first terms locally.
func (p *Pipeline) refine(ctx context.Context, keywords []string) string {
	if len(keywords) == 0 {
		return ""
	}
	if p.cfg.Intel != nil {
		refined, err := p.cfg.Intel.RefineKeywords(ctx, keywords)
		if err == nil && strings.TrimSpace(refined) != "" {
			return strings.TrimSpace(refined)
		}
		slog.Warn("slidefy: keyword refinement failed, joining locally", "error", errString(err))
	}
	return joinQuery(keywords)
}

// slideText concatenates title and bullets into the extraction input.
func slideText(slide SlideInput) string {
	parts := make([]string, 0, len(slide.Bullets)+1)
	if slide.Title != "" {
		parts = append(parts, slide.Title)
	}
	for _, b := range slide.Bullets {
		if b != "" {
			parts = append(parts, b)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func joinQuery(terms []string) string {
	if len(terms) > maxQueryTerms {
		terms = terms[:maxQueryTerms]
	}
	return strings.Join(terms, ", ")
}

func nonEmpty(terms []string) []string {
	var out []string
	for _, t := range terms {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
