package ai

import (
	"context"
	"time"
)

// MeetingInput is the canonical meeting the brief is generated for
type MeetingInput struct {
	Title       string
	Date        string
	Time        string
	Attendees   []string
	Description string
	Location    string
}

// Completion is one generated text and the model that produced it
type Completion struct {
	Text  string
	Model string
}

// Brief is a generated meeting brief in the markdown subset the renderer understands
type Brief struct {
	Content  string
	Model    string
	Duration time.Duration
}

// Provider is a text generation backend.
// Implement this interface to add new AI providers (Gemini, Ollama, OpenAI, etc.)
type Provider interface {
	Generate(ctx context.Context, prompt string) (*Completion, error)
}

// BriefGenerator turns a meeting into a brief
type BriefGenerator interface {
	GenerateBrief(ctx context.Context, meeting MeetingInput) (*Brief, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
