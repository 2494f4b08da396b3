package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	slidefy "github.com/anatolykoptev/go-slidefy"
)

func TestHealthz(t *testing.T) {
	t.Parallel()

	artifacts := slidefy.NewArtifactCache()
	app := newApp(slidefy.NewPipeline(slidefy.Config{Artifacts: artifacts}), artifacts)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "slidefy", body["service"])
}

func TestKeywordsEndpoint(t *testing.T) {
	t.Parallel()

	artifacts := slidefy.NewArtifactCache()
	app := newApp(slidefy.NewPipeline(slidefy.Config{Artifacts: artifacts}), artifacts)

	req := httptest.NewRequest(http.MethodPost, "/v1/keywords",
		strings.NewReader(`{"title": "Lean", "keywords": ["lean manufacturing", "efficiency"]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Skip  bool   `json:"skip"`
		Query string `json:"query"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Skip)
	assert.Equal(t, "lean manufacturing, efficiency", body.Query)
}

func TestKeywordsEndpointBadBody(t *testing.T) {
	t.Parallel()

	artifacts := slidefy.NewArtifactCache()
	app := newApp(slidefy.NewPipeline(slidefy.Config{Artifacts: artifacts}), artifacts)

	req := httptest.NewRequest(http.MethodPost, "/v1/keywords", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSlideImageEndpoint(t *testing.T) {
	t.Parallel()

	artifacts := slidefy.NewArtifactCache()
	// No providers and no generators configured: the run fails terminally and
	// the endpoint still answers with the placeholder.
	app := newApp(slidefy.NewPipeline(slidefy.Config{Artifacts: artifacts}), artifacts)

	req := httptest.NewRequest(http.MethodPost, "/v1/slide-image",
		strings.NewReader(`{"title": "Roadmap", "keywords": ["roadmap"]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result slidefy.PipelineResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, slidefy.SourceFailed, result.Source)
	assert.Equal(t, slidefy.DefaultPlaceholderURL, result.URL)
	assert.Equal(t, "roadmap", result.Keywords)
}

func TestGeneratedArtifactEndpoint(t *testing.T) {
	t.Parallel()

	artifacts := slidefy.NewArtifactCache()
	app := newApp(slidefy.NewPipeline(slidefy.Config{Artifacts: artifacts}), artifacts)

	id := artifacts.StoreBytes([]byte("pngbytes"), "image/png")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/generated/"+id, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pngbytes", string(data))
}

func TestGeneratedArtifactUnknownID(t *testing.T) {
	t.Parallel()

	artifacts := slidefy.NewArtifactCache()
	app := newApp(slidefy.NewPipeline(slidefy.Config{Artifacts: artifacts}), artifacts)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/generated/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
