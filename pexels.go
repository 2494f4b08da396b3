package slidefy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const pexelsEndpoint = "https://api.pexels.com/v1/search"

// PexelsProvider searches the Pexels photo API.
type PexelsProvider struct {
	APIKey     string
	HTTPClient *http.Client // nil = http.DefaultClient
	Endpoint   string       // override for tests
}

func (p *PexelsProvider) Name() string { return "pexels" }

// Search queries Pexels and normalizes results into Candidates. Pexels ids
// are numeric and stringified so the dedup key shape matches other providers.
func (p *PexelsProvider) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = pexelsEndpoint
	}

	var payload struct {
		Photos []struct {
			ID  json.Number `json:"id"`
			Alt string      `json:"alt"`
			Src struct {
				Original string `json:"original"`
				Large2x  string `json:"large2x"`
				Large    string `json:"large"`
			} `json:"src"`
			Photographer    string `json:"photographer"`
			PhotographerURL string `json:"photographer_url"`
		} `json:"photos"`
	}

	q := url.Values{"query": {query}, "per_page": {strconv.Itoa(limit)}}
	headers := map[string]string{"Authorization": p.APIKey}
	if err := getJSON(ctx, p.HTTPClient, endpoint+"?"+q.Encode(), headers, &payload); err != nil {
		return nil, fmt.Errorf("pexels search: %w", err)
	}

	candidates := make([]Candidate, 0, len(payload.Photos))
	for i, photo := range payload.Photos {
		regular := firstNonEmpty(photo.Src.Large2x, photo.Src.Large)
		full := firstNonEmpty(photo.Src.Original, photo.Src.Large2x)
		if full == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Index:           i,
			Provider:        p.Name(),
			ID:              photo.ID.String(),
			Alt:             photo.Alt,
			RegularURL:      regular,
			FullURL:         full,
			Photographer:    photo.Photographer,
			PhotographerURL: photo.PhotographerURL,
		})
	}
	return candidates, nil
}
