package ai

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"meetingprep-ai/pkg/logging"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// FallbackService implements provider routing with fallback.
// Briefs go to Gemini first (better quality) and fall back to Ollama when Gemini fails.
type FallbackService struct {
	gemini Provider
	ollama Provider
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(gemini, ollama Provider) *FallbackService {
	return &FallbackService{
		gemini: gemini,
		ollama: ollama,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}
	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}

	errStr := strings.ToLower(err.Error())
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"resource_exhausted",
	}
	for _, indicator := range quotaIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

// Generate tries Gemini first and falls back to Ollama on any Gemini error
func (f *FallbackService) Generate(ctx context.Context, prompt string) (*Completion, error) {
	logger := logging.From(ctx)
	var geminiErr error

	if f.gemini != nil {
		logger.Debug("[AI] Trying Gemini for brief generation")
		out, err := f.gemini.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		geminiErr = err

		switch {
		case isQuotaError(err):
			logger.Warn("[AI] Gemini quota exhausted, falling back to Ollama", "error", err)
		case isConnectionError(err):
			logger.Warn("[AI] Gemini unreachable, falling back to Ollama", "error", err)
		default:
			logger.Warn("[AI] Gemini error, falling back to Ollama", "error", err)
		}
	}

	if f.ollama != nil {
		logger.Debug("[AI] Using Ollama for brief generation")
		out, err := f.ollama.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if geminiErr != nil {
			return nil, goerr.Wrap(err, "all AI providers failed", goerr.V("gemini_error", geminiErr.Error()))
		}
		return nil, goerr.Wrap(err, "ollama brief generation failed")
	}

	if geminiErr != nil {
		return nil, goerr.Wrap(geminiErr, "gemini brief generation failed")
	}
	return nil, goerr.New("no AI provider available for brief generation")
}
