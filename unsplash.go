package slidefy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const unsplashEndpoint = "https://api.unsplash.com/search/photos"

// UnsplashProvider searches the Unsplash photo API.
type UnsplashProvider struct {
	AccessKey  string
	HTTPClient *http.Client // nil = http.DefaultClient
	Endpoint   string       // override for tests
}

func (u *UnsplashProvider) Name() string { return "unsplash" }

// Search queries Unsplash and normalizes results into Candidates. URL fields
// fall back to the next-best available resolution.
func (u *UnsplashProvider) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	endpoint := u.Endpoint
	if endpoint == "" {
		endpoint = unsplashEndpoint
	}

	var payload struct {
		Results []struct {
			ID             string `json:"id"`
			AltDescription string `json:"alt_description"`
			Description    string `json:"description"`
			URLs           struct {
				Raw     string `json:"raw"`
				Full    string `json:"full"`
				Regular string `json:"regular"`
			} `json:"urls"`
			User struct {
				Name  string `json:"name"`
				Links struct {
					HTML string `json:"html"`
				} `json:"links"`
			} `json:"user"`
		} `json:"results"`
	}

	q := url.Values{"query": {query}, "per_page": {strconv.Itoa(limit)}}
	headers := map[string]string{"Authorization": "Client-ID " + u.AccessKey}
	if err := getJSON(ctx, u.HTTPClient, endpoint+"?"+q.Encode(), headers, &payload); err != nil {
		return nil, fmt.Errorf("unsplash search: %w", err)
	}

	candidates := make([]Candidate, 0, len(payload.Results))
	for i, photo := range payload.Results {
		alt := photo.AltDescription
		if alt == "" {
			alt = photo.Description
		}
		regular := firstNonEmpty(photo.URLs.Regular, photo.URLs.Full)
		full := firstNonEmpty(photo.URLs.Full, photo.URLs.Raw)
		if full == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Index:           i,
			Provider:        u.Name(),
			ID:              photo.ID,
			Alt:             alt,
			RegularURL:      regular,
			FullURL:         full,
			Photographer:    photo.User.Name,
			PhotographerURL: photo.User.Links.HTML,
		})
	}
	return candidates, nil
}

// getJSON performs a GET with per-call timeout and decodes a JSON body.
func getJSON(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, dest any) error {
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

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

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
