package slidefy

import "fmt"

// OutputMode controls which half of the pipeline is allowed to produce the
// final image.
type OutputMode string

const (
	ModeAuto      OutputMode = "auto"       // stock first, generation as fallback
	ModeStockOnly OutputMode = "stock_only" // never generate
	ModeAIOnly    OutputMode = "ai_only"    // skip stock search entirely
)

// ColorHints carries optional primary/secondary color preferences for
// generated images.
type ColorHints struct {
	Primary   string `json:"primary,omitempty"`
	Secondary string `json:"secondary,omitempty"`
}

// SlideInput is the request for one pipeline run. It is treated as immutable;
// the keyword resolver may swap in a translated copy wholesale before
// extraction, but never mutates fields in place.
type SlideInput struct {
	Title     string      `json:"title,omitempty"`
	Bullets   []string    `json:"bullets,omitempty"`
	Keywords  []string    `json:"keywords,omitempty"` // explicit overrides; bypass extraction
	Style     string      `json:"style,omitempty"`    // free-form style or a named scenario key
	Mode      OutputMode  `json:"mode,omitempty"`
	Generator string      `json:"generator,omitempty"` // generator id, or "auto"
	Colors    *ColorHints `json:"colors,omitempty"`
}

// Candidate is a stock-photo reference returned by a search provider,
// normalized to a common shape.
type Candidate struct {
	Index           int    // ordinal position, contiguous after dedup
	Provider        string // e.g. "unsplash", "pexels"
	ID              string // provider-native id, may be empty
	Alt             string // descriptive alt text, may be empty
	RegularURL      string // display-resolution URL
	FullURL         string // highest-resolution URL, never empty
	Photographer    string
	PhotographerURL string
}

// key is the dedup identity: provider+id when an id exists, else the full URL.
func (c Candidate) key() string {
	if c.ID != "" {
		return c.Provider + ":" + c.ID
	}
	return c.FullURL
}

// ScoreRecord is the assessment attached to one Candidate. Fit is nil when
// the fit assessor is unavailable, which is not a failure.
type ScoreRecord struct {
	Quality float64  // 0..1
	Fit     *float64 // 0..1, nil = assessor unavailable
	Safety  float64  // 0..1, 1.0 = certainly safe
	IsSafe  bool     // Safety >= configured safety floor
}

// RankedCandidate pairs a Candidate with its scores inside Filter & Rank.
type RankedCandidate struct {
	Candidate Candidate
	Scores    ScoreRecord
}

// GenerationOutput is a generator's raw product: either a remote URL or an
// inline payload. Durable reports whether a returned URL can be served as-is;
// non-durable URLs are downloaded and re-hosted from the artifact cache.
type GenerationOutput struct {
	URL       string
	Durable   bool
	Inline    []byte
	MediaType string
}

// GenerationAttempt records one call into a generator. At most two attempts
// happen per pipeline run: the requested generator plus one safety retry.
type GenerationAttempt struct {
	Generator string
	Prompt    string
	Output    GenerationOutput
	Err       error
}

// PipelineResult is the terminal, immutable outcome of one run.
// Source is one of "stock:<provider>", "generated:<generator>", "none",
// "failed".
type PipelineResult struct {
	URL      string `json:"url"`
	Source   string `json:"source"`
	Keywords string `json:"keywords"`
	Detail   string `json:"detail,omitempty"` // error detail on failure
}

func stockSource(provider string) string      { return fmt.Sprintf("stock:%s", provider) }
func generatedSource(generator string) string { return fmt.Sprintf("generated:%s", generator) }

const (
	// SourceNone marks content judged unsuitable for imagery.
	SourceNone = "none"
	// SourceFailed marks a run whose generation path failed terminally.
	SourceFailed = "failed"
)
