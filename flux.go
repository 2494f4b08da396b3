package slidefy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const fluxEndpoint = "https://api.bfl.ai/v1/flux-2-pro"

// FLUX generation is asynchronous: the submit call answers with a polling
// URL, the result appears after a warm-up delay.
const (
	fluxWarmup       = 15 * time.Second
	fluxPollInterval = 3 * time.Second
	fluxMaxPolls     = 10
)

// FluxGenerator generates images through the Black Forest Labs FLUX API.
// Its delivery URLs are signed and expire, so outputs are re-hosted from the
// artifact cache.
type FluxGenerator struct {
	APIKey     string
	HTTPClient *http.Client // nil = http.DefaultClient
	Endpoint   string       // override for tests

	// Warmup/PollInterval override the polling schedule; zero = defaults.
	Warmup       time.Duration
	PollInterval time.Duration
}

func (f *FluxGenerator) Name() string { return "flux" }

// Generate submits the prompt and polls until the render succeeds or the
// poll budget runs out.
func (f *FluxGenerator) Generate(ctx context.Context, prompt string, width, height int) (GenerationOutput, error) {
	client := f.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	endpoint := f.Endpoint
	if endpoint == "" {
		endpoint = fluxEndpoint
	}

	pollingURL, err := f.submit(ctx, client, endpoint, prompt, width, height)
	if err != nil {
		return GenerationOutput{}, err
	}

	if err := sleepCtx(ctx, f.warmup()); err != nil {
		return GenerationOutput{}, err
	}

	for poll := 0; poll < fluxMaxPolls; poll++ {
		var status struct {
			Status string `json:"status"`
			Result struct {
				Sample string `json:"sample"`
			} `json:"result"`
		}
		if err := getJSON(ctx, client, pollingURL, nil, &status); err != nil {
			return GenerationOutput{}, fmt.Errorf("flux poll: %w", err)
		}
		switch status.Status {
		case "succeeded":
			if status.Result.Sample == "" {
				return GenerationOutput{}, errors.New("flux: succeeded without sample URL")
			}
			return GenerationOutput{URL: status.Result.Sample, Durable: false}, nil
		case "failed":
			return GenerationOutput{}, errors.New("flux: generation failed")
		}
		if err := sleepCtx(ctx, f.pollInterval()); err != nil {
			return GenerationOutput{}, err
		}
	}
	return GenerationOutput{}, errors.New("flux: polling budget exhausted")
}

func (f *FluxGenerator) submit(ctx context.Context, client *http.Client, endpoint, prompt string, width, height int) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"prompt":           prompt,
		"width":            width,
		"height":           height,
		"steps":            28,
		"guidance":         3,
		"safety_tolerance": 2,
		"output_format":    "jpeg",
	})

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-key", f.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("flux submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("flux submit: unexpected status %d", resp.StatusCode)
	}

	var submitted struct {
		PollingURL string `json:"polling_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		return "", fmt.Errorf("flux submit: %w", err)
	}
	if submitted.PollingURL == "" {
		return "", errors.New("flux submit: no polling URL")
	}
	return submitted.PollingURL, nil
}

func (f *FluxGenerator) warmup() time.Duration {
	if f.Warmup > 0 {
		return f.Warmup
	}
	return fluxWarmup
}

func (f *FluxGenerator) pollInterval() time.Duration {
	if f.PollInterval > 0 {
		return f.PollInterval
	}
	return fluxPollInterval
}

// sleepCtx waits d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
