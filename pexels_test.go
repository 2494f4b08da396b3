package slidefy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPexelsSearchNormalizes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "pexkey" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"photos": [
			{"id": 42, "alt": "city skyline",
			 "src": {"original": "https://p/orig", "large2x": "https://p/l2x", "large": "https://p/l"},
			 "photographer": "Bob", "photographer_url": "https://p/bob"},
			{"id": 43, "alt": "",
			 "src": {"large2x": "https://p/only-l2x"}}
		]}`))
	}))
	defer srv.Close()

	p := &PexelsProvider{APIKey: "pexkey", HTTPClient: srv.Client(), Endpoint: srv.URL}
	got, err := p.Search(context.Background(), "city", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	first := got[0]
	if first.ID != "42" {
		t.Errorf("ID = %q, want numeric id stringified", first.ID)
	}
	if first.RegularURL != "https://p/l2x" || first.FullURL != "https://p/orig" {
		t.Errorf("urls = %q / %q", first.RegularURL, first.FullURL)
	}
	if first.Photographer != "Bob" {
		t.Errorf("Photographer = %q", first.Photographer)
	}

	if got[1].FullURL != "https://p/only-l2x" {
		t.Errorf("full URL fallback = %q, want large2x", got[1].FullURL)
	}
}
