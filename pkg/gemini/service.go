package gemini

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

type GeminiService struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiService(ctx context.Context, apiKey, model string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, goerr.New("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client", goerr.V("model", model))
	}

	return &GeminiService{
		client:      client,
		model:       model,
		temperature: 0.7,
	}, nil
}

// Model returns the model name used for generation
func (g *GeminiService) Model() string {
	return g.model
}

// GenerateText sends a single-turn prompt and returns the first candidate's text
func (g *GeminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		return "", goerr.Wrap(err, "gemini generate content failed", goerr.V("model", g.model))
	}

	text := firstText(resp)
	if text == "" {
		return "", goerr.New("gemini returned no content", goerr.V("model", g.model))
	}
	return text, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil {
			continue
		}
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String())
}
