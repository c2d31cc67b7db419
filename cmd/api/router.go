package api

import (
	"net/http"

	analyticsDelivery "meetingprep-ai/internal/analytics/delivery"
	"meetingprep-ai/internal/auth/delivery"
	authUsecase "meetingprep-ai/internal/auth/usecase"
	meetingDelivery "meetingprep-ai/internal/meeting/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, meetingHandler *meetingDelivery.MeetingHandler, analyticsHandler *analyticsDelivery.AnalyticsHandler) {
	authHandler := delivery.NewAuthHandler(authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/google", authHandler.GoogleSignIn)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", delivery.AuthMiddleware(authUsecase), authHandler.Me)
			auth.POST("/logout", authHandler.Logout)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(delivery.AuthMiddleware(authUsecase))
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		// Extension routes
		ext := api.Group("/extension")
		{
			// Anonymous callers get a brief without persistence
			ext.POST("/generate-brief", delivery.OptionalAuth(authUsecase), meetingHandler.GenerateBrief)
			ext.POST("/analytics", analyticsHandler.Track)

			protected := ext.Group("")
			protected.Use(delivery.AuthMiddleware(authUsecase))
			{
				protected.GET("/get-meetings", meetingHandler.GetMeetings)
				protected.GET("/search-meetings", meetingHandler.SearchMeetings)
				protected.DELETE("/delete-meeting", meetingHandler.DeleteMeeting)
				protected.GET("/usage", meetingHandler.Usage)
			}
		}

		// Analytics reporting (protected)
		api.GET("/analytics/summary", delivery.AuthMiddleware(authUsecase), analyticsHandler.Summary)

		// Runtime AI settings (protected). The Ollama URL is fetched server side.
		settings := api.Group("/settings")
		settings.Use(delivery.AuthMiddleware(authUsecase))
		{
			settings.GET("/ai", GetAISettings)
			settings.PUT("/ai", UpdateAISettings)
			settings.POST("/ai/test", TestOllamaConnection)
		}
	}
}
