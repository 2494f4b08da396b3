package slidefy

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
)

// negativeSuffix is appended to every generation prompt. Slide imagery must
// never contain rendered text or watermarks.
const negativeSuffix = "No text, no watermark, no logo, no caption, no signature in the image."

// Scenario is a named, pre-composed prompt bundle selectable instead of
// free-text style: content instructions for the LLM, plus fixed style,
// layout and negative blocks appended to its output.
type Scenario struct {
	Key      string
	Content  string // instructions for deriving the content sentence
	Style    string // fixed visual style block
	Layout   string // fixed composition/layout block
	Negative string // scenario-specific negative prompt
}

// Scenarios maps scenario keys to their prompt bundles. Branching on these
// keys happens exactly once, at lookup.
var Scenarios = map[string]Scenario{
	"flat_illustration": {
		Key: "flat_illustration",
		Content: "Describe, in one to three English sentences, a simple didactic scene " +
			"that supports the main idea of the slide: one to three people or key objects, " +
			"a small process, or a symbolic metaphor. Semantic content only — no style, " +
			"color or composition words.",
		Style:    "Flat vector illustration, soft rounded shapes, limited harmonious palette, clean uncluttered composition.",
		Layout:   "16:9 slide illustration, single focal point, generous whitespace around the subject.",
		Negative: "no text, no watermark, no logo, no photorealism, no 3D rendering, no clutter",
	},
	"fine_line": {
		Key: "fine_line",
		Content: "Describe, in one to three English sentences, a simple didactic scene " +
			"that supports the main idea of the slide: one to three people or key objects, " +
			"a small process, or a symbolic metaphor. Semantic content only — no style, " +
			"color or composition words.",
		Style:    "Fine line art, thin consistent strokes, minimal monochrome accents, elegant and restrained.",
		Layout:   "16:9 slide illustration, centered subject, airy negative space.",
		Negative: "no text, no watermark, no logo, no heavy shading, no photorealism, no clutter",
	},
	"photorealistic": {
		Key: "photorealistic",
		Content: "Describe, in one to three English sentences, a simple didactic scene " +
			"that supports the main idea of the slide: one to three people or key objects, " +
			"a small process, or a symbolic metaphor. Semantic content only — no style, " +
			"color or composition words.",
		Style:    "Photorealistic photograph, natural lighting, shallow depth of field, professional editorial look.",
		Layout:   "16:9 framing, rule-of-thirds composition, uncluttered background.",
		Negative: "no text, no watermark, no logo, no illustration, no cartoon, no collage",
	},
}

// BuildPrompt resolves the generation prompt for a slide. A style matching a
// known scenario key uses the scenario's content/style/layout/negative
// composition fed the full slide payload; anything else composes a simpler
// prompt from free-text style and color hints plus the generic negative
// suffix.
func (p *Pipeline) BuildPrompt(ctx context.Context, slide SlideInput, keywords string) string {
	if scenario, ok := Scenarios[slide.Style]; ok {
		return p.scenarioPrompt(ctx, scenario, slide)
	}
	return p.freeformPrompt(ctx, slide, keywords)
}

// scenarioPrompt derives the content sentence from the full slide payload and
// appends the scenario's fixed blocks.
func (p *Pipeline) scenarioPrompt(ctx context.Context, scenario Scenario, slide SlideInput) string {
	payload, _ := json.Marshal(slide)
	content := ""
	if p.cfg.Intel != nil {
		sentence, err := p.cfg.Intel.ComposePrompt(ctx, scenario.Content+"\n\nSlide JSON: "+string(payload), nil, nil)
		if err != nil {
			slog.Warn("slidefy: scenario content prompt failed, using slide text", "scenario", scenario.Key, "error", err.Error())
		} else {
			content = strings.TrimSpace(sentence)
		}
	}
	if content == "" {
		content = "An illustration supporting a presentation slide about " + slideText(slide) + "."
	}
	return strings.Join([]string{content, scenario.Style, scenario.Layout, scenario.Negative + ". " + negativeSuffix}, " ")
}

// freeformPrompt composes a single-sentence prompt from keywords, free-text
// style and color hints. The LLM writes the sentence; on failure a
// deterministic local composition keeps generation going.
func (p *Pipeline) freeformPrompt(ctx context.Context, slide SlideInput, keywords string) string {
	var styles []string
	if s := strings.TrimSpace(slide.Style); s != "" {
		styles = append(styles, s)
	}

	if p.cfg.Intel != nil {
		sentence, err := p.cfg.Intel.ComposePrompt(ctx, keywords, styles, slide.Colors)
		if err == nil && strings.TrimSpace(sentence) != "" {
			return strings.TrimSpace(sentence) + " " + negativeSuffix
		}
		slog.Warn("slidefy: prompt composition failed, composing locally", "error", errString(err))
	}

	return localPrompt(keywords, styles, slide.Colors) + " " + negativeSuffix
}

// localPrompt is the deterministic fallback prompt composition.
func localPrompt(keywords string, styles []string, colors *ColorHints) string {
	var b strings.Builder
	b.WriteString("A professional presentation slide image of ")
	b.WriteString(keywords)
	if len(styles) > 0 {
		b.WriteString(", in a ")
		b.WriteString(strings.Join(styles, ", "))
		b.WriteString(" style")
	}
	if colors != nil {
		if colors.Primary != "" {
			b.WriteString(", dominant color ")
			b.WriteString(colors.Primary)
		}
		if colors.Secondary != "" {
			b.WriteString(", accent color ")
			b.WriteString(colors.Secondary)
		}
	}
	b.WriteString(".")
	return b.String()
}
