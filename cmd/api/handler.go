package api

import (
	"context"
	"net/http"
	"time"

	analyticsDelivery "meetingprep-ai/internal/analytics/delivery"
	analyticsUsecase "meetingprep-ai/internal/analytics/usecase"
	authUsecase "meetingprep-ai/internal/auth/usecase"
	meetingDelivery "meetingprep-ai/internal/meeting/delivery"
	meetingUsecase "meetingprep-ai/internal/meeting/usecase"
	"meetingprep-ai/pkg/ai"
	"meetingprep-ai/pkg/config"
	"meetingprep-ai/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/goerr/v2"
)

type Handler struct {
	authUsecase      authUsecase.AuthUsecase
	meetingHandler   *meetingDelivery.MeetingHandler
	analyticsHandler *analyticsDelivery.AnalyticsHandler
	config           *config.Config
	server           *http.Server
}

func NewHandler(ctx context.Context, authUc authUsecase.AuthUsecase, meetingUc meetingUsecase.MeetingUsecase, analyticsUc analyticsUsecase.AnalyticsUsecase, cfg *config.Config) *Handler {
	logger := logging.From(ctx)

	// Initialize runtime config for settings API
	InitRuntimeConfig(cfg.OllamaBaseURL, cfg.OllamaModel)

	// AI provider follows the runtime Ollama settings
	aiCfg := ai.DynamicConfig{
		Provider:         ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:     cfg.GeminiApiKey,
		GeminiModel:      cfg.GeminiModel,
		GetOllamaBaseURL: GetRuntimeOllamaBaseURL,
		GetOllamaModel:   GetRuntimeOllamaModel,
	}
	provider, err := ai.NewProviderWithDynamicConfig(ctx, aiCfg)
	if err != nil {
		logger.Warn("[AI] failed to initialize provider, brief generation disabled", "error", err)
	} else {
		meetingUc.SetBriefGenerator(ai.NewBriefService(provider))
		logger.Info("[AI] provider initialized", "provider", cfg.AIProvider)
	}

	return &Handler{
		authUsecase:      authUc,
		meetingHandler:   meetingDelivery.NewMeetingHandler(meetingUc),
		analyticsHandler: analyticsDelivery.NewAnalyticsHandler(analyticsUc),
		config:           cfg,
	}
}

func corsMiddleware(c *gin.Context) {
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
	} else {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	}

	c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
	c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	c.Next()
}

// Engine builds the router with every route mounted
func (h *Handler) Engine() *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware)
	SetupRoutes(r, h.authUsecase, h.meetingHandler, h.analyticsHandler)
	return r
}

// Start serves until Shutdown is called
func (h *Handler) Start(addr string) error {
	h.server = &http.Server{
		Addr:              addr,
		Handler:           h.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return goerr.Wrap(err, "server stopped", goerr.V("addr", addr))
	}
	return nil
}

func (h *Handler) Shutdown(ctx context.Context) error {
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(ctx)
}
