package ai

import (
	"context"

	"meetingprep-ai/pkg/gemini"

	"github.com/m-mizutani/goerr/v2"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama" or "auto"

	GeminiAPIKey string
	GeminiModel  string

	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// DynamicConfig is Config with Ollama settings read at call time, so the settings API can
// repoint the local model without a restart
type DynamicConfig struct {
	Provider ProviderType

	GeminiAPIKey string
	GeminiModel  string

	GetOllamaBaseURL func() string
	GetOllamaModel   func() string
}

// NewProvider creates a Provider based on the config.
// Switch AI provider by changing cfg.Provider.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	baseURL, model := cfg.OllamaBaseURL, cfg.OllamaModel
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return NewProviderWithDynamicConfig(ctx, DynamicConfig{
		Provider:         cfg.Provider,
		GeminiAPIKey:     cfg.GeminiAPIKey,
		GeminiModel:      cfg.GeminiModel,
		GetOllamaBaseURL: func() string { return baseURL },
		GetOllamaModel:   func() string { return model },
	})
}

// NewProviderWithDynamicConfig creates a Provider whose Ollama endpoint follows the getters.
// In auto mode both providers are combined behind a FallbackService when a Gemini key exists.
func NewProviderWithDynamicConfig(ctx context.Context, cfg DynamicConfig) (Provider, error) {
	ollama := NewOllamaServiceWithGetters(cfg.GetOllamaBaseURL, cfg.GetOllamaModel)

	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, goerr.New("GEMINI_API_KEY is required for Gemini provider")
		}
		return newGeminiProvider(ctx, cfg)

	case ProviderOllama:
		return ollama, nil

	case ProviderAuto, "":
		if cfg.GeminiAPIKey == "" {
			return ollama, nil
		}
		g, err := newGeminiProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewFallbackService(g, ollama), nil

	default:
		return nil, goerr.New("unknown AI provider", goerr.V("provider", cfg.Provider))
	}
}

type geminiProvider struct {
	svc *gemini.GeminiService
}

func newGeminiProvider(ctx context.Context, cfg DynamicConfig) (*geminiProvider, error) {
	svc, err := gemini.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	return &geminiProvider{svc: svc}, nil
}

func (g *geminiProvider) Generate(ctx context.Context, prompt string) (*Completion, error) {
	text, err := g.svc.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &Completion{Text: text, Model: g.svc.Model()}, nil
}
