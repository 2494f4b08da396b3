package slidefy

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiImageModel is the image model used by the Gemini generator.
const DefaultGeminiImageModel = "gemini-3-pro-image-preview"

// GeminiGenerator generates images with the Gemini API. It answers with
// inline image bytes, which the controller re-hosts from the artifact cache;
// this is also the fixed alternate used for the safety retry by default.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator builds a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if model == "" {
		model = DefaultGeminiImageModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Name() string { return "gemini" }

// Generate asks the model for one image and returns its inline payload.
// Gemini ignores pixel dimensions; the prompt carries the framing.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, width, height int) (GenerationOutput, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return GenerationOutput{}, fmt.Errorf("gemini generate: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mediaType := part.InlineData.MIMEType
				if mediaType == "" {
					mediaType = "image/png"
				}
				return GenerationOutput{Inline: part.InlineData.Data, MediaType: mediaType}, nil
			}
		}
	}
	return GenerationOutput{}, errors.New("gemini generate: no inline image in response")
}
