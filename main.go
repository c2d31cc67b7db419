package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "meetingprep-ai/cmd/api"
	analyticsdomain "meetingprep-ai/internal/analytics/domain"
	analyticsRepo "meetingprep-ai/internal/analytics/repository"
	analyticsUsecase "meetingprep-ai/internal/analytics/usecase"
	authdomain "meetingprep-ai/internal/auth/domain"
	authRepo "meetingprep-ai/internal/auth/repository"
	authUsecase "meetingprep-ai/internal/auth/usecase"
	meetingdomain "meetingprep-ai/internal/meeting/domain"
	meetingRepo "meetingprep-ai/internal/meeting/repository"
	meetingUsecase "meetingprep-ai/internal/meeting/usecase"
	"meetingprep-ai/internal/normalize"
	"meetingprep-ai/internal/notification"
	subdomain "meetingprep-ai/internal/subscription/domain"
	subRepo "meetingprep-ai/internal/subscription/repository"
	"meetingprep-ai/internal/subscription/scheduler"
	subUsecase "meetingprep-ai/internal/subscription/usecase"
	"meetingprep-ai/pkg/config"
	"meetingprep-ai/pkg/database"
	"meetingprep-ai/pkg/fcm"
	"meetingprep-ai/pkg/logging"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel, os.Stderr)
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.With(ctx, logger)

	if err := run(ctx, cfg); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.From(ctx)

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		return err
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{}, &authdomain.RefreshToken{}, &authdomain.FCMToken{},
		&meetingdomain.Meeting{}, &meetingdomain.Brief{},
		&subdomain.Subscription{},
		&analyticsdomain.AnalyticsEvent{},
	); err != nil {
		return err
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	fcmTokenRepo := authRepo.NewDeviceTokenRepository(db)
	meetingRepository := meetingRepo.NewMeetingRepository(db)
	subscriptionRepo := subRepo.NewSubscriptionRepository(db)
	analyticsRepository := analyticsRepo.NewAnalyticsRepository(db)

	// Push notifications are optional
	var sender notification.Sender
	if cfg.FirebaseCredentialsFile != "" {
		fcmClient, err := fcm.NewClient(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Warn("[FCM] failed to initialize client, push notifications disabled", "error", err)
		} else {
			sender = fcmClient
		}
	} else {
		logger.Info("[FCM] no Firebase credentials configured, push notifications disabled")
	}
	notifier := notification.NewService(fcmTokenRepo, sender)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, fcmTokenRepo, cfg)
	subscriptionUsecase := subUsecase.NewSubscriptionUsecase(subscriptionRepo, cfg.FreeBriefLimit)
	meetingUsecaseInstance := meetingUsecase.NewMeetingUsecase(meetingRepository, subscriptionUsecase, normalize.New(), cfg.MeetingListLimit)
	meetingUsecaseInstance.SetNotifier(notifier)

	// Analytics events are stored in the background and optionally fanned out to Pub/Sub
	analyticsWorker := analyticsUsecase.NewEventWorker(analyticsRepository, cfg.AnalyticsWorkers, 0)
	if cfg.PubSubProjectID != "" {
		publisher, err := analyticsUsecase.NewPubSubPublisher(ctx, cfg.PubSubProjectID, cfg.PubSubTopic, cfg.PubSubCredentialsFile)
		if err != nil {
			logger.Warn("[PubSub] analytics fan-out disabled", "error", err)
		} else {
			defer publisher.Close()
			analyticsWorker.SetPublisher(publisher)
			logger.Info("[PubSub] analytics fan-out enabled", "topic", cfg.PubSubTopic)
		}
	}
	analyticsWorker.Start()
	defer analyticsWorker.Stop()

	usageScheduler := scheduler.NewUsageResetScheduler(subscriptionUsecase, cfg.UsageResetInterval)
	usageScheduler.Start(ctx)
	defer usageScheduler.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(ctx, authUsecaseInstance, meetingUsecaseInstance, analyticsWorker, cfg)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		errCh <- handler.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return handler.Shutdown(shutdownCtx)
}
