package slidefy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Generated image dimensions.
const (
	genWidth  = 1024
	genHeight = 1024
)

var errNoGenerator = errors.New("slidefy: no generator registered")

// GenerateImage runs the generation state machine for one pipeline run:
// build prompt → generate → materialize → safety-check → at most one
// safety-gated retry with the fixed alternate generator → finalize. Every
// external failure is caught and converted into the documented fallback;
// nothing escapes as an error.
func (p *Pipeline) GenerateImage(ctx context.Context, slide SlideInput, keywords string) PipelineResult {
	prompt := p.BuildPrompt(ctx, slide, keywords)

	name := p.resolveGeneratorName(slide.Generator)
	gen := p.cfg.generator(name)
	if gen == nil {
		return p.failResult(keywords, fmt.Errorf("%w: %q", errNoGenerator, name))
	}

	attempt := p.attempt(ctx, gen, prompt)
	if attempt.Err != nil {
		// Primary generation failure is terminal, no retry.
		return p.failResult(keywords, attempt.Err)
	}

	servedURL := p.materialize(ctx, attempt.Output)
	finalGenerator := attempt.Generator

	// Safety gate on the produced image. Assessor failure inside
	// assessSafety already counts as a pass.
	score := p.cfg.assessSafety(ctx, gateURL(attempt.Output, servedURL))
	if score < p.cfg.SafetyFloor {
		slog.Warn("slidefy: generated image below safety floor, retrying with alternate",
			"score", score, "floor", p.cfg.SafetyFloor, "alternate", p.cfg.RetryGenerator)
		if url, genName, ok := p.safetyRetry(ctx, prompt); ok {
			servedURL = url
			finalGenerator = genName
		}
	}

	return PipelineResult{
		URL:      servedURL,
		Source:   generatedSource(finalGenerator),
		Keywords: keywords,
	}
}

// safetyRetry regenerates exactly once with the fixed alternate generator,
// regardless of what was originally requested. The retry's own output is
// materialized by the usual rules and not safety-checked again. A failed
// retry keeps the first image.
func (p *Pipeline) safetyRetry(ctx context.Context, prompt string) (servedURL, generator string, ok bool) {
	alt := p.cfg.generator(p.cfg.RetryGenerator)
	if alt == nil {
		slog.Warn("slidefy: no alternate generator registered, keeping first image", "alternate", p.cfg.RetryGenerator)
		return "", "", false
	}

	attempt := p.attempt(ctx, alt, prompt)
	if attempt.Err != nil {
		slog.Warn("slidefy: safety retry failed, keeping first image", "generator", alt.Name(), "error", attempt.Err.Error())
		return "", "", false
	}
	return p.materialize(ctx, attempt.Output), attempt.Generator, true
}

// attempt calls one generator and records the outcome. Panics and empty
// outputs are captured as attempt errors.
func (p *Pipeline) attempt(ctx context.Context, gen Generator, prompt string) (a GenerationAttempt) {
	a = GenerationAttempt{Generator: gen.Name(), Prompt: prompt}
	defer func() {
		if r := recover(); r != nil {
			if p.cfg.OnPanic != nil {
				p.cfg.OnPanic("generation", r)
			}
			a.Err = fmt.Errorf("generator %s panicked: %v", gen.Name(), r)
		}
	}()

	out, err := gen.Generate(ctx, prompt, genWidth, genHeight)
	if err != nil {
		a.Err = fmt.Errorf("generator %s: %w", gen.Name(), err)
		return a
	}
	if out.URL == "" && len(out.Inline) == 0 {
		a.Err = fmt.Errorf("generator %s: empty result", gen.Name())
		return a
	}
	a.Output = out
	return a
}

// materialize converts a generator's raw output into a stable servable URL:
// inline payloads are stored in the artifact cache; remote URLs from
// non-durable generators are downloaded and cached too; durable URLs pass
// through as-is. A failed download of a non-durable URL falls back to the
// raw URL rather than failing the attempt.
func (p *Pipeline) materialize(ctx context.Context, out GenerationOutput) string {
	cfg := &p.cfg

	if len(out.Inline) > 0 {
		if cfg.Artifacts == nil {
			slog.Warn("slidefy: inline payload but no artifact cache, serving data URL")
			return EncodeDataURL(out.Inline, out.MediaType)
		}
		id := cfg.Artifacts.StoreBytes(out.Inline, out.MediaType)
		return cfg.ArtifactBaseURL + "/" + id
	}

	if out.Durable || cfg.Artifacts == nil {
		return out.URL
	}

	result, err := cfg.Download(ctx, out.URL, DownloadOpts{})
	if err != nil || result == nil {
		slog.Warn("slidefy: could not re-host non-durable image, serving source URL", "url", out.URL)
		return out.URL
	}
	id := cfg.Artifacts.StoreBytes(result.Data, result.MIMEType)
	return cfg.ArtifactBaseURL + "/" + id
}

// gateURL picks the URL handed to the safety assessor: the generator's
// remote URL when one exists (assessors cannot reach cache-relative paths),
// else the served URL.
func gateURL(out GenerationOutput, servedURL string) string {
	if out.URL != "" {
		return out.URL
	}
	return servedURL
}

// resolveGeneratorName maps the request's generator id to a concrete
// registered generator, resolving the generic "auto" selector (and absence)
// to the configured default.
func (p *Pipeline) resolveGeneratorName(requested string) string {
	if requested == "" || requested == "auto" {
		return p.cfg.DefaultGenerator
	}
	return requested
}

// failResult is the terminal failure state: a static placeholder URL so the
// caller still gets a usable image, with the proximate cause carried as data.
func (p *Pipeline) failResult(keywords string, err error) PipelineResult {
	slog.Error("slidefy: generation failed", "error", err.Error())
	return PipelineResult{
		URL:      p.cfg.PlaceholderURL,
		Source:   SourceFailed,
		Keywords: keywords,
		Detail:   err.Error(),
	}
}
