package slidefy

import "sort"

// FilterAndRank applies the hard thresholds and deterministic ordering that
// pick the best stock candidate.
//
// Rejected outright: unsafe entries, entries below the quality floor, and
// entries whose fit score is present but below the fit floor. A missing fit
// score is never grounds for rejection. Survivors sort descending by fit
// (absence counted as 0) with quality as the tiebreaker; the sort is stable,
// so ties keep their relative input order. An empty result means "no
// acceptable stock candidate", not an error.
func (p *Pipeline) FilterAndRank(entries []RankedCandidate) []RankedCandidate {
	cfg := &p.cfg

	var kept []RankedCandidate
	for _, e := range entries {
		if !e.Scores.IsSafe {
			continue
		}
		if e.Scores.Quality < cfg.QualityFloor {
			continue
		}
		if e.Scores.Fit != nil && *e.Scores.Fit < cfg.FitFloor {
			continue
		}
		kept = append(kept, e)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		fi, fj := fitOrZero(kept[i].Scores.Fit), fitOrZero(kept[j].Scores.Fit)
		if fi != fj {
			return fi > fj
		}
		return kept[i].Scores.Quality > kept[j].Scores.Quality
	})

	return kept
}

func fitOrZero(fit *float64) float64 {
	if fit == nil {
		return 0
	}
	return *fit
}

// pairCandidates zips candidates with their score records.
func pairCandidates(candidates []Candidate, records []ScoreRecord) []RankedCandidate {
	paired := make([]RankedCandidate, len(candidates))
	for i := range candidates {
		paired[i] = RankedCandidate{Candidate: candidates[i], Scores: records[i]}
	}
	return paired
}
