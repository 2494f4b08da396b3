package slidefy

import (
	"context"
	"errors"
	"fmt"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	arkmodel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"
)

// DefaultArkModel is the Seedream text-to-image model.
const DefaultArkModel = "doubao-seedream-4-0-250828"

// ArkGenerator generates images through Volcengine Ark (Seedream). Result
// URLs expire after 24 hours, so outputs are re-hosted from the artifact
// cache.
type ArkGenerator struct {
	client *arkruntime.Client
	model  string
}

// NewArkGenerator builds an Ark-backed generator.
func NewArkGenerator(apiKey, model string) *ArkGenerator {
	if model == "" {
		model = DefaultArkModel
	}
	return &ArkGenerator{client: arkruntime.NewClientWithApiKey(apiKey), model: model}
}

func (a *ArkGenerator) Name() string { return "ark" }

// Generate requests a single image and returns its temporary URL.
func (a *ArkGenerator) Generate(ctx context.Context, prompt string, width, height int) (GenerationOutput, error) {
	req := arkmodel.GenerateImagesRequest{
		Model:          a.model,
		Prompt:         prompt,
		Size:           volcengine.String(fmt.Sprintf("%dx%d", width, height)),
		ResponseFormat: volcengine.String(arkmodel.GenerateImagesResponseFormatURL),
		Watermark:      volcengine.Bool(false),
	}

	resp, err := a.client.GenerateImages(ctx, req)
	if err != nil {
		return GenerationOutput{}, fmt.Errorf("ark generate: %w", err)
	}
	if resp.Error != nil {
		return GenerationOutput{}, fmt.Errorf("ark generate: %s: %s", resp.Error.Code, resp.Error.Message)
	}
	for _, img := range resp.Data {
		if img.Url != nil && *img.Url != "" {
			return GenerationOutput{URL: *img.Url, Durable: false}, nil
		}
	}
	return GenerationOutput{}, errors.New("ark generate: empty result")
}
