package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"meetingprep-ai/pkg/ai"

	"github.com/gin-gonic/gin"
)

// RuntimeConfig holds runtime-configurable settings
type RuntimeConfig struct {
	OllamaBaseURL string `json:"ollama_base_url"`
	OllamaModel   string `json:"ollama_model,omitempty"`
}

var (
	runtimeConfig     RuntimeConfig
	runtimeConfigLock sync.RWMutex
)

const ollamaTestTimeout = 5 * time.Second

// InitRuntimeConfig initializes runtime config from static config
func InitRuntimeConfig(ollamaBaseURL, ollamaModel string) {
	runtimeConfigLock.Lock()
	defer runtimeConfigLock.Unlock()
	runtimeConfig = RuntimeConfig{
		OllamaBaseURL: ollamaBaseURL,
		OllamaModel:   ollamaModel,
	}
}

// GetRuntimeOllamaBaseURL returns the current runtime Ollama base URL
func GetRuntimeOllamaBaseURL() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.OllamaBaseURL
}

// GetRuntimeOllamaModel returns the current runtime Ollama model
func GetRuntimeOllamaModel() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.OllamaModel
}

type UpdateAISettingsRequest struct {
	OllamaBaseURL string `json:"ollama_base_url" binding:"required"`
	OllamaModel   string `json:"ollama_model,omitempty"`
}

func validBaseURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// GetAISettings returns the current local model configuration
// GET /api/settings/ai
func GetAISettings(c *gin.Context) {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"ollama_base_url": runtimeConfig.OllamaBaseURL,
		"ollama_model":    runtimeConfig.OllamaModel,
	})
}

// UpdateAISettings repoints the local model without a restart
// PUT /api/settings/ai
func UpdateAISettings(c *gin.Context) {
	var req UpdateAISettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "ollama_base_url is required"})
		return
	}

	baseURL := strings.TrimRight(strings.TrimSpace(req.OllamaBaseURL), "/")
	if !validBaseURL(baseURL) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "ollama_base_url must be an http(s) URL"})
		return
	}

	runtimeConfigLock.Lock()
	runtimeConfig.OllamaBaseURL = baseURL
	if m := strings.TrimSpace(req.OllamaModel); m != "" {
		runtimeConfig.OllamaModel = m
	}
	runtimeConfigLock.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "AI settings updated successfully",
		"ollama_base_url": baseURL,
		"ollama_model":    GetRuntimeOllamaModel(),
	})
}

// TestOllamaConnection checks that the Ollama server answers and lists its models
// POST /api/settings/ai/test
func TestOllamaConnection(c *gin.Context) {
	var req struct {
		OllamaBaseURL string `json:"ollama_base_url"`
	}
	// An empty body tests the current setting
	_ = c.ShouldBindJSON(&req)

	baseURL := strings.TrimRight(strings.TrimSpace(req.OllamaBaseURL), "/")
	if baseURL == "" {
		baseURL = GetRuntimeOllamaBaseURL()
	}
	if !validBaseURL(baseURL) {
		c.JSON(http.StatusBadRequest, gin.H{"connected": false, "error": "ollama_base_url must be an http(s) URL"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ollamaTestTimeout)
	defer cancel()

	models, err := ai.NewOllamaService(baseURL, GetRuntimeOllamaModel()).Ping(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"connected": false,
			"error":     err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":       true,
		"ollama_base_url": baseURL,
		"models":          models,
	})
}
