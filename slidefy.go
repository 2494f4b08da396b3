// Package slidefy selects or produces a single image for a presentation
// slide: stock-photo search across providers, concurrent quality/fit/safety
// scoring, threshold filtering and ranking, and AI generation with a
// safety-gated retry when no stock candidate qualifies.
package slidefy

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Default thresholds, matching the service's historical configuration.
const (
	DefaultQualityFloor = 0.7
	DefaultFitFloor     = 0.6
	DefaultSafetyFloor  = 0.99
	DefaultPerProvider  = 10
)

// DefaultPlaceholderURL is returned on terminal generation failure so callers
// never receive an empty response by accident.
const DefaultPlaceholderURL = "https://static.slidefy.dev/placeholder-16x9.png"

// TextIntel abstracts the external text-understanding capability used for
// keyword extraction, refinement, translation and prompt composition.
type TextIntel interface {
	// ExtractKeywords returns a structured keyword set for slide text.
	ExtractKeywords(ctx context.Context, text string) (Extraction, error)
	// RefineKeywords compresses a keyword set to a short 2-3 term query.
	RefineKeywords(ctx context.Context, keywords []string) (string, error)
	// Translate renders text into English.
	Translate(ctx context.Context, text string) (string, error)
	// ComposePrompt turns keywords, style and color hints into one
	// image-generation sentence.
	ComposePrompt(ctx context.Context, keywords string, style []string, colors *ColorHints) (string, error)
}

// Extraction is the structured result of keyword extraction.
type Extraction struct {
	Skip     bool     `json:"skip"`
	Keywords []string `json:"english_keywords"`
	Style    []string `json:"style"`
	Negative []string `json:"negative_keywords"`
}

// SearchProvider abstracts one stock-photo search backend.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Candidate, error)
}

// QualityAssessor scores technical image quality in [0,1].
type QualityAssessor interface {
	AssessQuality(ctx context.Context, imageURL string) (float64, error)
}

// FitAssessor scores how well an image fits a topic in [0,1].
type FitAssessor interface {
	AssessFit(ctx context.Context, imageURL, topic string) (float64, error)
}

// SafetyAssessor checks an image for unsafe content. The raw provider
// response is returned untouched; ExtractSafetyScore normalizes it.
type SafetyAssessor interface {
	Name() string
	AssessSafety(ctx context.Context, imageURL string) (json.RawMessage, error)
}

// Generator abstracts one AI image generation backend.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string, width, height int) (GenerationOutput, error)
}

// Config holds every collaborator and policy knob for a Pipeline. All
// external capabilities are injected; nil optional fields degrade gracefully.
type Config struct {
	Intel     TextIntel        // required for extraction; nil = overrides only
	Providers []SearchProvider // stock search backends, merged in this order

	Quality QualityAssessor  // nil = every candidate gets the default quality
	Fit     FitAssessor      // nil = fit recorded as unavailable
	Safety  []SafetyAssessor // tried in order; all failing = fail-open

	Generators       []Generator // selectable by name
	DefaultGenerator string      // resolves the "auto" selector (default: first generator)
	RetryGenerator   string      // fixed alternate for the safety retry

	Artifacts *ArtifactCache // required when any generator emits inline payloads

	StealthClient *http.Client // optional TLS-fingerprinted client for downloads
	HTTPClient    *http.Client // default http client (nil = http.DefaultClient)
	UserAgent     string

	QualityFloor float64
	FitFloor     float64
	SafetyFloor  float64
	PerProvider  int // per-provider search result limit

	// PerceptualDedup enables a near-duplicate pass (dHash over downloaded
	// bytes) after key-based dedup. Off by default: key dedup alone is the
	// documented behavior.
	PerceptualDedup bool

	// ArtifactBaseURL prefixes cache-backed ids when materializing, e.g.
	// "https://host/generated". Default: "/generated".
	ArtifactBaseURL string

	// PlaceholderURL is served on terminal generation failure.
	PlaceholderURL string

	// OnPanic, when set, observes panics recovered inside concurrent branches.
	OnPanic func(tag string, r any)
}

// defaults fills zero-value fields.
func (cfg *Config) defaults() {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (compatible; go-slidefy/1.0)"
	}
	if cfg.QualityFloor <= 0 {
		cfg.QualityFloor = DefaultQualityFloor
	}
	if cfg.FitFloor <= 0 {
		cfg.FitFloor = DefaultFitFloor
	}
	if cfg.SafetyFloor <= 0 {
		cfg.SafetyFloor = DefaultSafetyFloor
	}
	if cfg.PerProvider <= 0 {
		cfg.PerProvider = DefaultPerProvider
	}
	if cfg.ArtifactBaseURL == "" {
		cfg.ArtifactBaseURL = "/generated"
	}
	if cfg.PlaceholderURL == "" {
		cfg.PlaceholderURL = DefaultPlaceholderURL
	}
	if cfg.DefaultGenerator == "" && len(cfg.Generators) > 0 {
		cfg.DefaultGenerator = cfg.Generators[0].Name()
	}
}

// generator returns the registered generator with the given name, or nil.
func (cfg *Config) generator(name string) Generator {
	for _, g := range cfg.Generators {
		if g.Name() == name {
			return g
		}
	}
	return nil
}

// Pipeline runs the slide-image decision flow. Construct with NewPipeline;
// one Pipeline serves concurrent runs, the artifact cache being the only
// shared mutable state.
type Pipeline struct {
	cfg Config
}

// NewPipeline validates and captures cfg.
func NewPipeline(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{cfg: cfg}
}

// callTimeout is the default per-external-call timeout applied by concrete
// providers and assessors.
const callTimeout = 30 * time.Second
