package slidefy

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// SearchCandidates fans the query out to every configured provider
// concurrently and returns a deduplicated, contiguously indexed candidate
// list. A failing provider contributes zero candidates and is logged, never
// aborting the aggregate. An empty list (not an error) is returned when every
// provider fails or returns nothing.
func (p *Pipeline) SearchCandidates(ctx context.Context, query string, perProvider int) []Candidate {
	cfg := &p.cfg
	if query == "" || len(cfg.Providers) == 0 {
		return nil
	}
	if perProvider <= 0 {
		perProvider = cfg.PerProvider
	}

	// Per-provider result slots keep the merge in configured provider order
	// regardless of completion order.
	slots := make([][]Candidate, len(cfg.Providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, provider := range cfg.Providers {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil && cfg.OnPanic != nil {
					cfg.OnPanic("providerSearch", r)
				}
			}()
			results, err := provider.Search(gctx, query, perProvider)
			if err != nil {
				slog.Warn("slidefy: provider search failed", "provider", provider.Name(), "error", err.Error())
				return nil
			}
			slots[i] = results
			return nil
		})
	}
	_ = g.Wait() // branches never return errors; failures degrade per-provider

	merged := dedupCandidates(slots)
	if len(merged) == 0 {
		return nil
	}

	if cfg.PerceptualDedup {
		merged = cfg.perceptualDedup(ctx, merged)
	}
	return merged
}

// dedupCandidates merges provider slots in configured order, drops entries
// whose identity key (provider+id, else full URL) was already seen, and
// reassigns ordinals 0..N-1.
func dedupCandidates(slots [][]Candidate) []Candidate {
	seen := make(map[string]bool)
	var merged []Candidate
	for _, slot := range slots {
		for _, c := range slot {
			if c.FullURL == "" {
				continue
			}
			k := c.key()
			if seen[k] {
				continue
			}
			seen[k] = true
			merged = append(merged, c)
		}
	}
	return reindex(merged)
}

// reindex reassigns contiguous ordinal positions.
func reindex(candidates []Candidate) []Candidate {
	for i := range candidates {
		candidates[i].Index = i
	}
	return candidates
}
