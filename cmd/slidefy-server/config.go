package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration carries everything the server needs from the environment.
type Configuration struct {
	Address string `env:"ADDRESS" envDefault:":8080"`

	// Stock photo providers
	UnsplashAccessKey string `env:"UNSPLASH_ACCESS_KEY"`
	PexelsAPIKey      string `env:"PEXELS_API_KEY"`

	// Assessors
	SightEngineAPIUser   string `env:"SIGHTENGINE_API_USER"`
	SightEngineAPISecret string `env:"SIGHTENGINE_API_SECRET"`
	ScoringServiceURL    string `env:"SCORING_SERVICE_URL"`
	SafetyFallbackURL    string `env:"SAFETY_FALLBACK_URL"`
	SafetyFallbackKey    string `env:"SAFETY_FALLBACK_KEY"`

	// Text intelligence + generators
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	FluxAPIKey       string `env:"FLUX_API_KEY"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	ArkAPIKey        string `env:"ARK_API_KEY"`

	DefaultGenerator string `env:"DEFAULT_GENERATOR" envDefault:"flux"`
	RetryGenerator   string `env:"RETRY_GENERATOR" envDefault:"gemini"`

	// Thresholds
	MinQualityScore    float64 `env:"MIN_QUALITY_SCORE" envDefault:"0.7"`
	MinFitScore        float64 `env:"MIN_PRESENTATION_SCORE" envDefault:"0.6"`
	MinSafetyScore     float64 `env:"MIN_NUDITY_SAFE_SCORE" envDefault:"0.99"`
	ResultsPerProvider int     `env:"RESULTS_PER_PROVIDER" envDefault:"10"`

	PublicBaseURL  string `env:"PUBLIC_BASE_URL"`
	PlaceholderURL string `env:"PLACEHOLDER_URL"`
}

// LoadConfiguration reads an optional .env file, then the environment.
func LoadConfiguration() (*Configuration, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	cfg := &Configuration{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
