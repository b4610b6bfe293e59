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

	"github.com/saladoop/shift-report-backend/pkg/apihelpers"
	"github.com/saladoop/shift-report-backend/pkg/apihelpers/middlewares"
	"github.com/saladoop/shift-report-backend/pkg/blobstore"
	"github.com/saladoop/shift-report-backend/pkg/submission"
	"github.com/saladoop/shift-report-backend/services/report-api/apihandlers"
)

const shutdownTimeout = 15 * time.Second

func main() {
	defer func() {
		if natsBus != nil {
			if err := natsBus.Drain(); err != nil {
				slog.Error("Error draining NATS connection", slog.String("error", err.Error()))
			}
		}
		if err := reportsDBService.Close(); err != nil {
			slog.Error("Error closing Reports DB", slog.String("error", err.Error()))
		}
	}()

	uploader := blobstore.NewUploader(blobStore, conf.BlobStoreConfig.PublicBaseURL)
	pipeline := submission.NewPipeline(reportsDBService, uploader, publisher, submission.Options{
		Location:          submission.LoadLocation(conf.SubmissionConfig.Timezone),
		UploadConcurrency: conf.SubmissionConfig.UploadConcurrency,
	})

	// Start webserver
	router := gin.Default()
	if err := router.SetTrustedProxies(conf.GinConfig.TrustedProxies); err != nil {
		slog.Error("Invalid trusted proxies", slog.String("error", err.Error()))
		return
	}
	router.Use(middlewares.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length"},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length", middlewares.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")

	v1APIHandlers := apihandlers.NewHTTPHandler(
		conf.ReporterJWTConfig.SignKey,
		conf.PrivilegedViewerEmail,
		reportsDBService,
		pipeline,
		uploader,
		conf.GinConfig.MaxPayloadSize,
		conf.SubmissionConfig.MaxPhotoSize,
	)
	v1APIHandlers.AddStagesAPI(v1Root)
	v1APIHandlers.AddReportsAPI(v1Root)
	v1APIHandlers.AddPhotosAPI(v1Root)

	if conf.GinConfig.DebugMode {
		if err := apihelpers.WriteRoutesToFile(router, "report-api-routes.txt"); err != nil {
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
		slog.Info("Starting Report API on port " + conf.GinConfig.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Exited Report API", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down Report API")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", slog.String("error", err.Error()))
	}
}
