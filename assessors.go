package slidefy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const sightengineEndpoint = "https://api.sightengine.com/1.0/check.json"

// SightEngineAssessor calls the SightEngine check API. It serves both as the
// technical quality assessor ("quality" model) and as a safety assessor
// ("nudity-2.1" model).
type SightEngineAssessor struct {
	APIUser    string
	APISecret  string
	HTTPClient *http.Client // nil = http.DefaultClient
	Endpoint   string       // override for tests
}

func (s *SightEngineAssessor) Name() string { return "sightengine" }

func (s *SightEngineAssessor) endpoint() string {
	if s.Endpoint != "" {
		return s.Endpoint
	}
	return sightengineEndpoint
}

func (s *SightEngineAssessor) check(ctx context.Context, models, imageURL string, dest any) error {
	q := url.Values{
		"models":     {models},
		"api_user":   {s.APIUser},
		"api_secret": {s.APISecret},
		"url":        {imageURL},
	}
	return getJSON(ctx, s.HTTPClient, s.endpoint()+"?"+q.Encode(), nil, dest)
}

// AssessQuality returns SightEngine's technical quality score in [0,1].
func (s *SightEngineAssessor) AssessQuality(ctx context.Context, imageURL string) (float64, error) {
	var payload struct {
		Quality struct {
			Score float64 `json:"score"`
		} `json:"quality"`
	}
	if err := s.check(ctx, "quality", imageURL, &payload); err != nil {
		return 0, fmt.Errorf("sightengine quality: %w", err)
	}
	return payload.Quality.Score, nil
}

// AssessSafety returns the raw nudity-model response for normalization by
// ExtractSafetyScore.
func (s *SightEngineAssessor) AssessSafety(ctx context.Context, imageURL string) (json.RawMessage, error) {
	var payload json.RawMessage
	if err := s.check(ctx, "nudity-2.1", imageURL, &payload); err != nil {
		return nil, fmt.Errorf("sightengine nudity: %w", err)
	}
	return payload, nil
}

// ScoringServiceAssessor calls a deployed scoring service that rates how well
// an image fits a presentation topic.
type ScoringServiceAssessor struct {
	BaseURL    string
	HTTPClient *http.Client // nil = http.DefaultClient
}

// AssessFit posts the image URL and topic to the scoring service.
func (s *ScoringServiceAssessor) AssessFit(ctx context.Context, imageURL, topic string) (float64, error) {
	body, _ := json.Marshal(map[string]string{"image_url": imageURL, "topic": topic})

	var payload struct {
		PresentationScore *float64 `json:"presentation_score"`
	}
	if err := postJSON(ctx, s.HTTPClient, s.BaseURL+"/score", body, &payload); err != nil {
		return 0, fmt.Errorf("scoring service: %w", err)
	}
	if payload.PresentationScore == nil {
		return 0.5, nil
	}
	return *payload.PresentationScore, nil
}

// GenericSafetyAssessor is a secondary safety backend speaking plain JSON
// over a single POST endpoint. Whatever shape it answers with goes through
// the normalization table untouched.
type GenericSafetyAssessor struct {
	ProviderName string
	Endpoint     string
	APIKey       string
	HTTPClient   *http.Client // nil = http.DefaultClient
}

func (g *GenericSafetyAssessor) Name() string {
	if g.ProviderName != "" {
		return g.ProviderName
	}
	return "generic"
}

// AssessSafety posts the image URL and returns the raw response body.
func (g *GenericSafetyAssessor) AssessSafety(ctx context.Context, imageURL string) (json.RawMessage, error) {
	body, _ := json.Marshal(map[string]string{"url": imageURL})

	client := g.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s safety: %w", g.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s safety: unexpected status %d", g.Name(), resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// postJSON performs a JSON POST with per-call timeout and decodes the reply.
func postJSON(ctx context.Context, client *http.Client, rawURL string, body []byte, dest any) error {
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
