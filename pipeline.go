package slidefy

import (
	"context"
	"log/slog"
)

// ProcessSlide runs the full decision pipeline for one slide: resolve
// keywords, search stock providers, score and rank candidates, and fall back
// to generation when no candidate qualifies (or when the requested mode
// forces it). It always returns a PipelineResult; failures are carried as
// data, never as an error.
func (p *Pipeline) ProcessSlide(ctx context.Context, slide SlideInput) PipelineResult {
	resolved := p.ResolveKeywords(ctx, slide)
	slog.Info("slidefy: processing slide", "title", slide.Title, "keywords", resolved.Query, "mode", slide.Mode)

	if resolved.Skip {
		slog.Info("slidefy: content unsuitable for imagery")
		return PipelineResult{Source: SourceNone, Keywords: resolved.Query}
	}

	if slide.Mode == ModeAIOnly {
		return p.GenerateImage(ctx, slide, resolved.Query)
	}

	if best, ok := p.bestStockCandidate(ctx, resolved.Query); ok {
		slog.Info("slidefy: selected stock image",
			"provider", best.Candidate.Provider,
			"quality", best.Scores.Quality,
			"fit", fitOrZero(best.Scores.Fit))
		p.cfg.enrichAttribution(ctx, &best.Candidate)
		return PipelineResult{
			URL:      best.Candidate.FullURL,
			Source:   stockSource(best.Candidate.Provider),
			Keywords: resolved.Query,
		}
	}

	if slide.Mode == ModeStockOnly {
		slog.Info("slidefy: no acceptable stock candidate and generation disabled")
		return PipelineResult{
			URL:      p.cfg.PlaceholderURL,
			Source:   SourceFailed,
			Keywords: resolved.Query,
			Detail:   "no acceptable stock candidate",
		}
	}

	slog.Info("slidefy: no acceptable stock candidate, generating")
	return p.GenerateImage(ctx, slide, resolved.Query)
}

// bestStockCandidate runs search → score → filter/rank and returns the top
// survivor, if any.
func (p *Pipeline) bestStockCandidate(ctx context.Context, query string) (RankedCandidate, bool) {
	candidates := p.SearchCandidates(ctx, query, 0)
	if len(candidates) == 0 {
		slog.Info("slidefy: stock search returned nothing", "query", query)
		return RankedCandidate{}, false
	}
	slog.Info("slidefy: scoring candidates", "count", len(candidates))

	records := p.ScoreCandidates(ctx, candidates, query)
	ranked := p.FilterAndRank(pairCandidates(candidates, records))
	if len(ranked) == 0 {
		return RankedCandidate{}, false
	}
	return ranked[0], true
}
