package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saladoop/shift-report-backend/pkg/apihelpers"
	"github.com/saladoop/shift-report-backend/pkg/apihelpers/middlewares"
	"github.com/saladoop/shift-report-backend/pkg/events"
	"github.com/saladoop/shift-report-backend/pkg/notification"
	"github.com/saladoop/shift-report-backend/services/notification-relay/apihandlers"
)

const shutdownTimeout = 30 * time.Second

func main() {
	relay, closeRelay := notification.NewRelayFromConfig(conf.Relay)
	defer closeRelay()

	dispatcher := notification.NewDispatcher(
		conf.Dispatcher.Workers,
		conf.Dispatcher.QueueSize,
		conf.Dispatcher.JobTimeout,
	)

	if natsBus != nil {
		notifier := notification.NewNotifier(reportsDBService, relay, conf.ClaimLockDuration)
		_, err := natsBus.SubscribeReportCreated(func(event events.ReportCreated) {
			if !notifier.DispatchReport(dispatcher, event.ReportID) {
				slog.Warn("report left for the sweeper", slog.String("reportID", event.ReportID))
			}
		})
		if err != nil {
			slog.Error("Error subscribing to report created events", slog.String("error", err.Error()))
			return
		}
	}

	// Start webserver
	router := gin.Default()
	if err := router.SetTrustedProxies(conf.GinConfig.TrustedProxies); err != nil {
		slog.Error("Invalid trusted proxies", slog.String("error", err.Error()))
		return
	}
	router.HandleMethodNotAllowed = true
	router.NoMethod(apihandlers.MethodNotAllowedHandle)
	router.Use(middlewares.RequestID())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:              []string{"Origin", "Content-Type", "Content-Length"},
		ExposeHeaders:             []string{middlewares.HeaderRequestID},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}))

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)
	router.GET("/metrics", middlewares.HasValidAPIKey(conf.MetricsApiKeys), gin.WrapH(promhttp.Handler()))
	v1Root := router.Group("/v1")

	v1APIHandlers := apihandlers.NewHTTPHandler(
		relay,
		dispatcher,
		limiter,
		conf.GinConfig.MaxPayloadSize,
	)
	v1APIHandlers.AddRelayAPI(v1Root)

	if conf.GinConfig.DebugMode {
		if err := apihelpers.WriteRoutesToFile(router, "notification-relay-routes.txt"); err != nil {
			slog.Warn("Could not write routes file", slog.String("error", err.Error()))
		}
	}

	server := &http.Server{
		Addr:    ":" + conf.GinConfig.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Starting Notification Relay on port " + conf.GinConfig.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Exited Notification Relay", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down Notification Relay")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", slog.String("error", err.Error()))
	}

	// no new jobs may arrive once the subscription is drained
	if natsBus != nil {
		if err := natsBus.Drain(); err != nil {
			slog.Error("Error draining NATS connection", slog.String("error", err.Error()))
		}
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		slog.Error("Pending notifications cancelled", slog.String("error", err.Error()))
	}
	if reportsDBService != nil {
		if err := reportsDBService.Close(); err != nil {
			slog.Error("Error closing Reports DB", slog.String("error", err.Error()))
		}
	}
}
