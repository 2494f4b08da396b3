package slidefy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateImage(t *testing.T) {
	t.Parallel()

	slide := SlideInput{Title: "Quarterly results", Keywords: []string{"growth"}}

	t.Run("durable url passes through", func(t *testing.T) {
		t.Parallel()
		gen := &fakeGenerator{name: "imagen", output: GenerationOutput{URL: "https://cdn/x.png", Durable: true}}
		p := NewPipeline(Config{Generators: []Generator{gen}})

		got := p.GenerateImage(context.Background(), slide, "growth")
		if got.URL != "https://cdn/x.png" {
			t.Errorf("URL = %q, want durable passthrough", got.URL)
		}
		if got.Source != "generated:imagen" {
			t.Errorf("Source = %q", got.Source)
		}
		if got.Keywords != "growth" {
			t.Errorf("Keywords = %q", got.Keywords)
		}
	})

	t.Run("inline payload lands in the artifact cache", func(t *testing.T) {
		t.Parallel()
		gen := &fakeGenerator{name: "gemini", output: GenerationOutput{Inline: []byte{0x89, 0x50}, MediaType: "image/png"}}
		cache := NewArtifactCache()
		p := NewPipeline(Config{Generators: []Generator{gen}, Artifacts: cache})

		got := p.GenerateImage(context.Background(), slide, "growth")
		if !strings.HasPrefix(got.URL, "/generated/") {
			t.Fatalf("URL = %q, want cache-backed path", got.URL)
		}
		id := strings.TrimPrefix(got.URL, "/generated/")
		data, mediaType, ok := cache.Get(id)
		if !ok || mediaType != "image/png" || len(data) != 2 {
			t.Errorf("cache entry = (%d bytes, %q, %v)", len(data), mediaType, ok)
		}
	})

	t.Run("inline payload without cache serves data url", func(t *testing.T) {
		t.Parallel()
		gen := &fakeGenerator{name: "gemini", output: GenerationOutput{Inline: []byte{1, 2, 3}, MediaType: "image/png"}}
		p := NewPipeline(Config{Generators: []Generator{gen}})

		got := p.GenerateImage(context.Background(), slide, "growth")
		if !strings.HasPrefix(got.URL, "data:image/png;base64,") {
			t.Errorf("URL = %q, want data URL", got.URL)
		}
	})

	t.Run("non-durable url is rehosted", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpegbytes"))
		}))
		defer srv.Close()

		gen := &fakeGenerator{name: "flux", output: GenerationOutput{URL: srv.URL + "/sample.jpg"}}
		cache := NewArtifactCache()
		p := NewPipeline(Config{Generators: []Generator{gen}, Artifacts: cache, HTTPClient: srv.Client()})

		got := p.GenerateImage(context.Background(), slide, "growth")
		if !strings.HasPrefix(got.URL, "/generated/") {
			t.Fatalf("URL = %q, want rehosted path", got.URL)
		}
		id := strings.TrimPrefix(got.URL, "/generated/")
		data, mediaType, ok := cache.Get(id)
		if !ok || mediaType != "image/jpeg" || string(data) != "jpegbytes" {
			t.Errorf("cache entry = (%q, %q, %v)", data, mediaType, ok)
		}
	})

	t.Run("failed rehost serves the source url", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		gen := &fakeGenerator{name: "flux", output: GenerationOutput{URL: srv.URL + "/gone.jpg"}}
		p := NewPipeline(Config{Generators: []Generator{gen}, Artifacts: NewArtifactCache(), HTTPClient: srv.Client()})

		got := p.GenerateImage(context.Background(), slide, "growth")
		if got.URL != srv.URL+"/gone.jpg" {
			t.Errorf("URL = %q, want source URL fallback", got.URL)
		}
	})

	t.Run("auto resolves to the default generator", func(t *testing.T) {
		t.Parallel()
		flux := &fakeGenerator{name: "flux", output: GenerationOutput{URL: "https://f/img", Durable: true}}
		gemini := &fakeGenerator{name: "gemini", output: GenerationOutput{URL: "https://g/img", Durable: true}}
		p := NewPipeline(Config{Generators: []Generator{flux, gemini}, DefaultGenerator: "flux"})

		in := slide
		in.Generator = "auto"
		got := p.GenerateImage(context.Background(), in, "growth")
		if got.Source != "generated:flux" || gemini.calls != 0 {
			t.Errorf("Source = %q, gemini calls = %d", got.Source, gemini.calls)
		}
	})

	t.Run("explicit generator selection", func(t *testing.T) {
		t.Parallel()
		flux := &fakeGenerator{name: "flux", output: GenerationOutput{URL: "https://f/img", Durable: true}}
		gemini := &fakeGenerator{name: "gemini", output: GenerationOutput{URL: "https://g/img", Durable: true}}
		p := NewPipeline(Config{Generators: []Generator{flux, gemini}})

		in := slide
		in.Generator = "gemini"
		got := p.GenerateImage(context.Background(), in, "growth")
		if got.Source != "generated:gemini" || flux.calls != 0 {
			t.Errorf("Source = %q, flux calls = %d", got.Source, flux.calls)
		}
	})

	t.Run("unknown generator fails with placeholder", func(t *testing.T) {
		t.Parallel()
		p := NewPipeline(Config{Generators: []Generator{&fakeGenerator{name: "flux"}}})

		in := slide
		in.Generator = "dalle"
		got := p.GenerateImage(context.Background(), in, "growth")
		if got.URL != DefaultPlaceholderURL || got.Source != SourceFailed {
			t.Errorf("got %q / %q, want placeholder + failed", got.URL, got.Source)
		}
		if got.Detail == "" {
			t.Error("Detail should carry the cause")
		}
	})

	t.Run("primary failure is terminal", func(t *testing.T) {
		t.Parallel()
		primary := &fakeGenerator{name: "flux", err: errBoom}
		alt := &fakeGenerator{name: "gemini", output: GenerationOutput{URL: "https://g/img", Durable: true}}
		p := NewPipeline(Config{Generators: []Generator{primary, alt}, RetryGenerator: "gemini"})

		got := p.GenerateImage(context.Background(), slide, "growth")
		if got.Source != SourceFailed || got.URL != DefaultPlaceholderURL {
			t.Errorf("got %q / %q, want terminal failure", got.Source, got.URL)
		}
		if alt.calls != 0 {
			t.Errorf("alternate called %d times on primary failure, want 0", alt.calls)
		}
	})

	t.Run("empty output counts as failure", func(t *testing.T) {
		t.Parallel()
		p := NewPipeline(Config{Generators: []Generator{&fakeGenerator{name: "flux"}}})

		got := p.GenerateImage(context.Background(), slide, "growth")
		if got.Source != SourceFailed {
			t.Errorf("Source = %q, want %q", got.Source, SourceFailed)
		}
	})

	t.Run("unsafe image retries once with the alternate", func(t *testing.T) {
		t.Parallel()
		primary := &fakeGenerator{name: "flux", output: GenerationOutput{URL: "https://f/racy.jpg", Durable: true}}
		alt := &fakeGenerator{name: "gemini", output: GenerationOutput{URL: "https://g/clean.jpg", Durable: true}}
		safety := &fakeSafety{raw: safetyJSON(0.2)}
		p := NewPipeline(Config{
			Generators:     []Generator{primary, alt},
			RetryGenerator: "gemini",
			Safety:         []SafetyAssessor{safety},
		})

		got := p.GenerateImage(context.Background(), slide, "growth")
		if got.URL != "https://g/clean.jpg" || got.Source != "generated:gemini" {
			t.Errorf("got %q / %q, want alternate's image", got.URL, got.Source)
		}
		if primary.calls != 1 || alt.calls != 1 {
			t.Errorf("calls = %d/%d, want 1/1", primary.calls, alt.calls)
		}
		// The retry's output is not safety-checked again.
		if n := safety.calls.Load(); n != 1 {
			t.Errorf("safety assessed %d times, want 1", n)
		}
	})

	t.Run("failed retry keeps the first image", func(t *testing.T) {
		t.Parallel()
		primary := &fakeGenerator{name: "flux", output: GenerationOutput{URL: "https://f/racy.jpg", Durable: true}}
		alt := &fakeGenerator{name: "gemini", err: errBoom}
		p := NewPipeline(Config{
			Generators:     []Generator{primary, alt},
			RetryGenerator: "gemini",
			Safety:         []SafetyAssessor{&fakeSafety{raw: safetyJSON(0.2)}},
		})

		got := p.GenerateImage(context.Background(), slide, "growth")
		if got.URL != "https://f/racy.jpg" || got.Source != "generated:flux" {
			t.Errorf("got %q / %q, want first image kept", got.URL, got.Source)
		}
	})

	t.Run("missing alternate keeps the first image", func(t *testing.T) {
		t.Parallel()
		primary := &fakeGenerator{name: "flux", output: GenerationOutput{URL: "https://f/racy.jpg", Durable: true}}
		p := NewPipeline(Config{
			Generators:     []Generator{primary},
			RetryGenerator: "gemini",
			Safety:         []SafetyAssessor{&fakeSafety{raw: safetyJSON(0.2)}},
		})

		got := p.GenerateImage(context.Background(), slide, "growth")
		if got.URL != "https://f/racy.jpg" || got.Source != "generated:flux" {
			t.Errorf("got %q / %q, want first image kept", got.URL, got.Source)
		}
	})

	t.Run("safe image skips the retry", func(t *testing.T) {
		t.Parallel()
		primary := &fakeGenerator{name: "flux", output: GenerationOutput{URL: "https://f/ok.jpg", Durable: true}}
		alt := &fakeGenerator{name: "gemini"}
		p := NewPipeline(Config{
			Generators:     []Generator{primary, alt},
			RetryGenerator: "gemini",
			Safety:         []SafetyAssessor{&fakeSafety{raw: safetyJSON(1.0)}},
		})

		got := p.GenerateImage(context.Background(), slide, "growth")
		if got.URL != "https://f/ok.jpg" || alt.calls != 0 {
			t.Errorf("URL = %q, alternate calls = %d", got.URL, alt.calls)
		}
	})

	t.Run("panicking generator fails with placeholder", func(t *testing.T) {
		t.Parallel()
		var observed string
		p := NewPipeline(Config{
			Generators: []Generator{panicGenerator{}},
			OnPanic:    func(tag string, _ any) { observed = tag },
		})

		got := p.GenerateImage(context.Background(), slide, "growth")
		if got.Source != SourceFailed {
			t.Errorf("Source = %q, want %q", got.Source, SourceFailed)
		}
		if observed != "generation" {
			t.Errorf("OnPanic tag = %q", observed)
		}
	})
}

type panicGenerator struct{}

func (panicGenerator) Name() string { return "flux" }

func (panicGenerator) Generate(context.Context, string, int, int) (GenerationOutput, error) {
	panic("backend exploded")
}
