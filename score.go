package slidefy

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// defaultQuality substitutes a failed quality assessment: mid-scale, so a
// quality outage neither promotes nor sinks a candidate.
const defaultQuality = 0.5

// ScoreCandidates produces one ScoreRecord per candidate, order-preserving
// and one-to-one. Scoring is fully concurrent across candidates, and the
// three assessments within one candidate run concurrently as well. Every
// assessment failure is caught independently and substituted with its
// documented default, so a single flaky assessor never sinks the run.
func (p *Pipeline) ScoreCandidates(ctx context.Context, candidates []Candidate, topic string) []ScoreRecord {
	cfg := &p.cfg
	records := make([]ScoreRecord, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil && cfg.OnPanic != nil {
					cfg.OnPanic("candidateScoring", r)
				}
			}()
			records[i] = cfg.scoreOne(gctx, c, topic)
			return nil
		})
	}
	_ = g.Wait() // branches swallow their own failures

	return records
}

// scoreOne fans out the three assessments for a single candidate.
func (cfg *Config) scoreOne(ctx context.Context, c Candidate, topic string) ScoreRecord {
	var (
		quality = defaultQuality
		fit     *float64
		safety  = fullySafe
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if cfg.Quality == nil {
			return nil
		}
		score, err := cfg.Quality.AssessQuality(gctx, c.RegularURL)
		if err != nil {
			slog.Warn("slidefy: quality scoring failed", "url", c.RegularURL, "error", err.Error(), "default", defaultQuality)
			return nil
		}
		quality = score
		return nil
	})

	g.Go(func() error {
		// Absence of a fit assessor is not a failure: fit stays unavailable.
		if cfg.Fit == nil {
			return nil
		}
		score, err := cfg.Fit.AssessFit(gctx, c.RegularURL, topic)
		if err != nil {
			slog.Warn("slidefy: fit scoring failed, recording unavailable", "url", c.RegularURL, "error", err.Error())
			return nil
		}
		fit = &score
		return nil
	})

	g.Go(func() error {
		safety = cfg.assessSafety(gctx, c.RegularURL)
		return nil
	})

	_ = g.Wait()

	return ScoreRecord{
		Quality: quality,
		Fit:     fit,
		Safety:  safety,
		IsSafe:  safety >= cfg.SafetyFloor,
	}
}
