package slidefy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
)

// Shared test doubles for pipeline collaborators.

type fakeIntel struct {
	extraction    Extraction
	extractionErr error
	refined       string
	refinedErr    error
	translated    string
	translatedErr error
	composed      string
	composedErr   error

	extractCalls   int
	refineCalls    int
	translateCalls int
	composeCalls   int
	lastExtractIn  string
}

func (f *fakeIntel) ExtractKeywords(_ context.Context, text string) (Extraction, error) {
	f.extractCalls++
	f.lastExtractIn = text
	return f.extraction, f.extractionErr
}

func (f *fakeIntel) RefineKeywords(_ context.Context, _ []string) (string, error) {
	f.refineCalls++
	return f.refined, f.refinedErr
}

func (f *fakeIntel) Translate(_ context.Context, _ string) (string, error) {
	f.translateCalls++
	return f.translated, f.translatedErr
}

func (f *fakeIntel) ComposePrompt(_ context.Context, _ string, _ []string, _ *ColorHints) (string, error) {
	f.composeCalls++
	return f.composed, f.composedErr
}

type fakeProvider struct {
	name       string
	candidates []Candidate
	err        error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(context.Context, string, int) ([]Candidate, error) {
	return f.candidates, f.err
}

type fakeQuality struct {
	score float64
	err   error
}

func (f *fakeQuality) AssessQuality(context.Context, string) (float64, error) {
	return f.score, f.err
}

type fakeFit struct {
	score float64
	err   error
}

func (f *fakeFit) AssessFit(context.Context, string, string) (float64, error) {
	return f.score, f.err
}

type fakeSafety struct {
	name  string
	raw   json.RawMessage
	err   error
	calls atomic.Int64 // scoring fans out, so the counter must be race-safe
}

func (f *fakeSafety) Name() string { return f.name }

func (f *fakeSafety) AssessSafety(context.Context, string) (json.RawMessage, error) {
	f.calls.Add(1)
	return f.raw, f.err
}

// safetyJSON builds a raw response carrying an explicit safe score.
func safetyJSON(score float64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"safe_score": %g}`, score))
}

type fakeGenerator struct {
	name   string
	output GenerationOutput
	err    error
	calls  int
}

func (f *fakeGenerator) Name() string { return f.name }

func (f *fakeGenerator) Generate(context.Context, string, int, int) (GenerationOutput, error) {
	f.calls++
	return f.output, f.err
}

var errBoom = errors.New("boom")

func floatPtr(v float64) *float64 { return &v }
