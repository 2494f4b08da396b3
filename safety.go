package slidefy

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
)

// fullySafe is the fail-open default: when no safety provider answers, or no
// response shape is recognized, the image is treated as certainly safe.
// A safety quota outage must not blank every slide.
const fullySafe = 1.0

// safetyEnvelope is the union of every response shape the safety providers
// are known to emit. Each field is a pointer so "absent" and "zero" stay
// distinguishable.
type safetyEnvelope struct {
	Result      *safetyEnvelope  `json:"result"`
	Predictions []safetyEnvelope `json:"predictions"`

	SafeScore       *float64 `json:"safe_score"`
	SafeProb        *float64 `json:"safe_prob"`
	ProbabilitySafe *float64 `json:"probability_safe"`

	Safe *bool `json:"safe"`

	NSFWScore       *float64 `json:"nsfw_score"`
	NSFWProbability *float64 `json:"nsfw_probability"`
	UnsafeScore     *float64 `json:"unsafe_score"`

	NSFW   *bool `json:"nsfw"`
	Unsafe *bool `json:"unsafe"`

	Label *string  `json:"label"`
	Score *float64 `json:"score"`

	Nudity     *legacyNudity     `json:"nudity"`
	Suggestive *legacySuggestive `json:"suggestive_classes"`
}

type legacyNudity struct {
	Suggestive *legacySuggestive `json:"suggestive_classes"`
}

type legacySuggestive struct {
	Cleavage struct {
		None *float64 `json:"none"`
	} `json:"cleavage_categories"`
}

// safetyRule is one row of the normalization decision table: a shape name and
// an extractor that reports whether the shape applies.
type safetyRule struct {
	name    string
	extract func(e *safetyEnvelope) (float64, bool)
}

// safetyRules is the normalization decision table in precedence order.
// Wrapper shapes (result, predictions) recurse before flat shapes apply.
var safetyRules = []safetyRule{
	{"explicit_safe_probability", func(e *safetyEnvelope) (float64, bool) {
		for _, v := range []*float64{e.SafeScore, e.SafeProb, e.ProbabilitySafe} {
			if v != nil {
				return *v, true
			}
		}
		return 0, false
	}},
	{"boolean_safe", func(e *safetyEnvelope) (float64, bool) {
		if e.Safe == nil {
			return 0, false
		}
		if *e.Safe {
			return 1.0, true
		}
		return 0.0, true
	}},
	{"nsfw_score_inversion", func(e *safetyEnvelope) (float64, bool) {
		for _, v := range []*float64{e.NSFWScore, e.NSFWProbability, e.UnsafeScore} {
			if v != nil {
				return 1.0 - *v, true
			}
		}
		return 0, false
	}},
	{"boolean_nsfw", func(e *safetyEnvelope) (float64, bool) {
		for _, v := range []*bool{e.NSFW, e.Unsafe} {
			if v == nil {
				continue
			}
			if *v {
				return 0.0, true
			}
			return 1.0, true
		}
		return 0, false
	}},
	{"label_score_pair", func(e *safetyEnvelope) (float64, bool) {
		if e.Label == nil || e.Score == nil {
			return 0, false
		}
		switch strings.ToLower(*e.Label) {
		case "safe", "sfw", "neutral":
			return *e.Score, true
		case "nsfw", "unsafe", "explicit", "porn":
			return 1.0 - *e.Score, true
		}
		return 0, false
	}},
	{"legacy_category_probability", func(e *safetyEnvelope) (float64, bool) {
		sugg := e.Suggestive
		if sugg == nil && e.Nudity != nil {
			sugg = e.Nudity.Suggestive
		}
		if sugg != nil && sugg.Cleavage.None != nil {
			return *sugg.Cleavage.None, true
		}
		return 0, false
	}},
}

// ExtractSafetyScore normalizes a provider-native safety response to a score
// in [0,1], 1.0 meaning certainly safe. Nested "result" wrappers take
// precedence over the first entry of a "predictions" list, which takes
// precedence over flat shapes. Unrecognized responses default to fully safe.
func ExtractSafetyScore(raw json.RawMessage) float64 {
	var env safetyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fullySafe
	}
	return clamp01(extractFromEnvelope(&env))
}

func extractFromEnvelope(env *safetyEnvelope) float64 {
	if env.Result != nil {
		return extractFromEnvelope(env.Result)
	}
	if len(env.Predictions) > 0 {
		return extractFromEnvelope(&env.Predictions[0])
	}
	for _, rule := range safetyRules {
		if score, ok := rule.extract(env); ok {
			return score
		}
	}
	return fullySafe
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// assessSafety runs the configured safety provider chain: the preferred
// assessor first, then on any failure the secondary, before giving up and
// treating the image as maximally safe.
func (cfg *Config) assessSafety(ctx context.Context, imageURL string) float64 {
	for _, assessor := range cfg.Safety {
		raw, err := assessor.AssessSafety(ctx, imageURL)
		if err != nil {
			slog.Warn("slidefy: safety assessor failed, trying next", "assessor", assessor.Name(), "error", err.Error())
			continue
		}
		return ExtractSafetyScore(raw)
	}
	if len(cfg.Safety) > 0 {
		slog.Warn("slidefy: all safety assessors failed, failing open", "url", imageURL, "default", fullySafe)
	}
	return fullySafe
}
