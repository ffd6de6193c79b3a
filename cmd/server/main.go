package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"riderapp/internal/app"
	"riderapp/internal/config"
	"riderapp/internal/handler"
	"riderapp/internal/logger"
	"riderapp/internal/maps"
	"riderapp/internal/platform"
	internalRedis "riderapp/internal/redis"
	"riderapp/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	log, err := logger.New("riderapp", cfg.Server.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so Redis can be instrumented.
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Warn("failed to initialize New Relic", zap.Error(err))
		} else {
			log.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// Background work (pollers, chat loops) stops when this context dies.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	server, tracking, chat := wireServer(appCtx, redisClient, nrApp, cfg, log)

	// Start server in goroutine.
	go func() {
		log.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	tracking.StopAll()
	chat.CloseAll()
	appCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server along with
// the services that own background loops.
func wireServer(
	appCtx context.Context,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	cfg *config.Config,
	log *zap.Logger,
) (*http.Server, *service.TrackingService, *service.ChatService) {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	snapshotStore := internalRedis.NewSnapshotStore(redisClient)

	// Initialize the platform API client.
	client := platform.NewClient(cfg.Platform, log)

	// Route estimation is optional; without a key the straight-line
	// fallback covers every estimate.
	var routes maps.RouteEstimator
	if cfg.Maps.Enabled && cfg.Maps.APIKey != "" {
		rs, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Warn("maps client unavailable, using straight-line estimates", zap.Error(err))
		} else {
			routes = rs
		}
	}

	// Initialize services.
	sink := service.NewMemorySink(256)
	gateway := service.NewUIGateway(sink, log)
	fareService := service.NewFareService(cfg.Fare, log)
	rentalService := service.NewRentalService(client, cfg.Rental, log)
	quoteService := service.NewQuoteService(client, routes, log)
	trackingService := service.NewTrackingService(appCtx, client, lockStore, snapshotStore, gateway, cfg.Poll, log)
	bookingService := service.NewBookingService(client, trackingService, gateway, cfg.Booking, log)
	cancellationService := service.NewCancellationService(client, trackingService, snapshotStore, gateway, log)
	chatService := service.NewChatService(appCtx, client, cfg.Chat, log)

	// Initialize handlers.
	quoteHandler := handler.NewQuoteHandler(quoteService, fareService, rentalService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	rideHandler := handler.NewRideHandler(trackingService, cancellationService)
	chatHandler := handler.NewChatHandler(chatService)
	eventsHandler := handler.NewEventsHandler(sink)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		QuoteHandler:   quoteHandler,
		BookingHandler: bookingHandler,
		RideHandler:    rideHandler,
		ChatHandler:    chatHandler,
		EventsHandler:  eventsHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return server, trackingService, chatService
}
