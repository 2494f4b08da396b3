package slidefy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const openRouterBase = "https://openrouter.ai/api/v1"

// Model defaults for the OpenRouter-backed capabilities.
const (
	DefaultExtractionModel = "google/gemini-2.0-flash-001"
	DefaultPromptModel     = "anthropic/claude-3.5-haiku"
	DefaultImagenModel     = "google/imagen-3.0-generate-001"
)

// OpenRouterClient implements TextIntel on top of the OpenRouter chat
// completions API.
type OpenRouterClient struct {
	APIKey          string
	ExtractionModel string       // default: DefaultExtractionModel
	PromptModel     string       // default: DefaultPromptModel
	HTTPClient      *http.Client // nil = http.DefaultClient
	BaseURL         string       // override for tests
}

func (o *OpenRouterClient) base() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}
	return openRouterBase
}

func (o *OpenRouterClient) extractionModel() string {
	if o.ExtractionModel != "" {
		return o.ExtractionModel
	}
	return DefaultExtractionModel
}

func (o *OpenRouterClient) promptModel() string {
	if o.PromptModel != "" {
		return o.PromptModel
	}
	return DefaultPromptModel
}

const extractionSystemPrompt = `You extract stock-photo search keywords from presentation slide text.
Rules: no brand names, personal names or confidential data; produce generic,
visual English terms (e.g. "teamwork", "data analytics"); focus on subject,
scene, object, mood. If the text is unusable for imagery (agenda, pure
numbers), set "skip" to true with empty lists.
Answer with ONLY valid JSON:
{"skip": boolean, "english_keywords": string[], "style": string[], "negative_keywords": string[]}`

const refinementSystemPrompt = `Reduce the given keywords to the 2-3 most important English terms for a
stock photo search. Answer with the terms only, comma separated, e.g.
"dog, meadow". Nothing else.`

const translationSystemPrompt = `Translate the following slide text to English. Answer with the translation only.`

const composeSystemPrompt = `From keywords, style requirements and optional colors, write exactly one
English sentence prompting an image generation model. The image must suit a
business presentation slide. Answer with that one sentence only.`

// ExtractKeywords asks the model for a structured keyword set. A reply that
// does not parse as the expected JSON is an error; the resolver handles the
// fallback.
func (o *OpenRouterClient) ExtractKeywords(ctx context.Context, text string) (Extraction, error) {
	reply, err := o.chat(ctx, o.extractionModel(), extractionSystemPrompt, text)
	if err != nil {
		return Extraction{}, err
	}

	var extraction Extraction
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &extraction); err != nil {
		return Extraction{}, fmt.Errorf("openrouter extraction: unparseable reply: %w", err)
	}
	return extraction, nil
}

// RefineKeywords compresses the keyword set to a 2-3 term query string.
func (o *OpenRouterClient) RefineKeywords(ctx context.Context, keywords []string) (string, error) {
	reply, err := o.chat(ctx, o.extractionModel(), refinementSystemPrompt, "Keywords: "+strings.Join(keywords, ", "))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// Translate renders slide text into English.
func (o *OpenRouterClient) Translate(ctx context.Context, text string) (string, error) {
	reply, err := o.chat(ctx, o.extractionModel(), translationSystemPrompt, text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// ComposePrompt writes the image-generation sentence.
func (o *OpenRouterClient) ComposePrompt(ctx context.Context, keywords string, style []string, colors *ColorHints) (string, error) {
	var b strings.Builder
	b.WriteString("Keywords: ")
	b.WriteString(keywords)
	if len(style) > 0 {
		b.WriteString("\nStyle requirements: ")
		b.WriteString(strings.Join(style, ", "))
	}
	if colors != nil && (colors.Primary != "" || colors.Secondary != "") {
		b.WriteString("\nColor requirements: primary ")
		b.WriteString(colors.Primary)
		if colors.Secondary != "" {
			b.WriteString(", secondary ")
			b.WriteString(colors.Secondary)
		}
	}

	reply, err := o.chat(ctx, o.promptModel(), composeSystemPrompt, b.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// chat performs one chat completion round-trip.
func (o *OpenRouterClient) chat(ctx context.Context, model, system, user string) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	})

	client := o.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.base()+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openrouter chat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openrouter chat: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("openrouter chat: %w", err)
	}
	if len(payload.Choices) == 0 {
		return "", errors.New("openrouter chat: empty choices")
	}
	return payload.Choices[0].Message.Content, nil
}

// stripCodeFence removes a surrounding markdown code fence, which chat models
// like to wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ImagenGenerator generates images through OpenRouter's image generations
// endpoint. Returned URLs are hosted by the upstream provider and served
// as-is.
type ImagenGenerator struct {
	APIKey     string
	Model      string       // default: DefaultImagenModel
	HTTPClient *http.Client // nil = http.DefaultClient
	BaseURL    string       // override for tests
}

func (g *ImagenGenerator) Name() string { return "imagen" }

// Generate requests a single image and returns its hosted URL.
func (g *ImagenGenerator) Generate(ctx context.Context, prompt string, width, height int) (GenerationOutput, error) {
	model := g.Model
	if model == "" {
		model = DefaultImagenModel
	}
	base := g.BaseURL
	if base == "" {
		base = openRouterBase
	}

	body, _ := json.Marshal(map[string]any{
		"model":  model,
		"prompt": prompt,
		"n":      1,
		"size":   fmt.Sprintf("%dx%d", width, height),
	})

	client := g.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, 2*callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return GenerationOutput{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return GenerationOutput{}, fmt.Errorf("imagen: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GenerationOutput{}, fmt.Errorf("imagen: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return GenerationOutput{}, fmt.Errorf("imagen: %w", err)
	}
	if len(payload.Data) == 0 || payload.Data[0].URL == "" {
		return GenerationOutput{}, errors.New("imagen: empty result")
	}
	return GenerationOutput{URL: payload.Data[0].URL, Durable: true}, nil
}
