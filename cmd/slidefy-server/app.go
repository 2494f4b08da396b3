package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/sirupsen/logrus"

	slidefy "github.com/anatolykoptev/go-slidefy"
)

// buildPipeline assembles the library pipeline from the environment
// configuration. Collaborators whose credentials are missing stay nil and
// the pipeline degrades per its documented defaults.
func buildPipeline(ctx context.Context, conf *Configuration) (*slidefy.Pipeline, *slidefy.ArtifactCache) {
	artifacts := slidefy.NewArtifactCache()

	cfg := slidefy.Config{
		Artifacts:        artifacts,
		DefaultGenerator: conf.DefaultGenerator,
		RetryGenerator:   conf.RetryGenerator,
		QualityFloor:     conf.MinQualityScore,
		FitFloor:         conf.MinFitScore,
		SafetyFloor:      conf.MinSafetyScore,
		PerProvider:      conf.ResultsPerProvider,
		ArtifactBaseURL:  conf.PublicBaseURL + "/generated",
		PlaceholderURL:   conf.PlaceholderURL,
		OnPanic: func(tag string, r any) {
			logrus.WithFields(logrus.Fields{"tag": tag, "panic": r}).Error("recovered pipeline panic")
		},
	}

	if conf.UnsplashAccessKey != "" {
		cfg.Providers = append(cfg.Providers, &slidefy.UnsplashProvider{AccessKey: conf.UnsplashAccessKey})
	}
	if conf.PexelsAPIKey != "" {
		cfg.Providers = append(cfg.Providers, &slidefy.PexelsProvider{APIKey: conf.PexelsAPIKey})
	}

	if conf.SightEngineAPIUser != "" {
		se := &slidefy.SightEngineAssessor{APIUser: conf.SightEngineAPIUser, APISecret: conf.SightEngineAPISecret}
		cfg.Quality = se
		cfg.Safety = append(cfg.Safety, se)
	}
	if conf.SafetyFallbackURL != "" {
		cfg.Safety = append(cfg.Safety, &slidefy.GenericSafetyAssessor{
			ProviderName: "fallback",
			Endpoint:     conf.SafetyFallbackURL,
			APIKey:       conf.SafetyFallbackKey,
		})
	}
	if conf.ScoringServiceURL != "" {
		cfg.Fit = &slidefy.ScoringServiceAssessor{BaseURL: conf.ScoringServiceURL}
	}

	if conf.OpenRouterAPIKey != "" {
		cfg.Intel = &slidefy.OpenRouterClient{APIKey: conf.OpenRouterAPIKey}
		cfg.Generators = append(cfg.Generators, &slidefy.ImagenGenerator{APIKey: conf.OpenRouterAPIKey})
	}
	if conf.FluxAPIKey != "" {
		cfg.Generators = append(cfg.Generators, &slidefy.FluxGenerator{APIKey: conf.FluxAPIKey})
	}
	if conf.GeminiAPIKey != "" {
		gemini, err := slidefy.NewGeminiGenerator(ctx, conf.GeminiAPIKey, "")
		if err != nil {
			logrus.WithError(err).Warn("gemini generator unavailable")
		} else {
			cfg.Generators = append(cfg.Generators, gemini)
		}
	}
	if conf.ArkAPIKey != "" {
		cfg.Generators = append(cfg.Generators, slidefy.NewArkGenerator(conf.ArkAPIKey, ""))
	}

	return slidefy.NewPipeline(cfg), artifacts
}

// newApp wires the fiber application and its routes.
func newApp(pipeline *slidefy.Pipeline, artifacts *slidefy.ArtifactCache) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "slidefy",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // generation runs are slow
		IdleTimeout:  120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "slidefy", "status": "running"})
	})

	app.Post("/v1/slide-image", func(c fiber.Ctx) error {
		var slide slidefy.SlideInput
		if err := c.Bind().Body(&slide); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		result := pipeline.ProcessSlide(c.Context(), slide)
		return c.JSON(result)
	})

	app.Post("/v1/keywords", func(c fiber.Ctx) error {
		var slide slidefy.SlideInput
		if err := c.Bind().Body(&slide); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		resolved := pipeline.ResolveKeywords(c.Context(), slide)
		return c.JSON(fiber.Map{
			"skip":     resolved.Skip,
			"query":    resolved.Query,
			"detailed": resolved.Extraction,
		})
	})

	app.Get("/generated/:id", func(c fiber.Ctx) error {
		data, mediaType, ok := artifacts.Get(c.Params("id"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown image id"})
		}
		c.Set(fiber.HeaderContentType, mediaType)
		return c.Send(data)
	})

	return app
}
