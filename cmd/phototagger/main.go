// phototagger hosts the AI-tagging proxy and the batch tagging coordinator
// for the photo management application.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"phototagger/config"
	"phototagger/internal/adapters/aiproxy"
	"phototagger/internal/adapters/auth"
	"phototagger/internal/adapters/gemini"
	"phototagger/internal/adapters/photoapi"
	deliveryhttp "phototagger/internal/delivery/http"
	"phototagger/internal/delivery/http/controllers"
	"phototagger/internal/delivery/http/middleware"
	"phototagger/internal/repository/postgres"
	"phototagger/internal/services"
)

// @title phototagger API
// @version 1.0
// @description AI-tagging proxy and batch tagging coordinator for the photo management application.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to reach database", "err", err)
		os.Exit(1)
	}

	analyzer, err := gemini.NewAnalyzer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Error("failed to create analyzer", "err", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	photos := photoapi.NewClient(httpClient, cfg.PhotoAPIURL, cfg.PhotoAPIToken)
	cache := postgres.NewAnalysisCacheRepository(db)
	analysisService := services.NewAnalysisService(logger, analyzer, cache, photos, cfg.RequestTimeout)

	// Batch analyze calls may span several Gemini requests; give the
	// coordinator's proxy client a looser timeout than single calls.
	proxyClient := aiproxy.NewClient(&http.Client{Timeout: 10 * time.Minute}, cfg.AIProxyURL)
	coordinator := services.NewCoordinator(logger, proxyClient, photos, services.CoordinatorConfig{
		DebounceWindow: cfg.DebounceWindow,
		RunCooldown:    cfg.RunCooldown,
		ChunkSize:      cfg.ChunkSize,
		SubBatchSize:   cfg.SubBatchSize,
		HealthInterval: cfg.HealthInterval,
		PollInterval:   cfg.PollInterval,
		MaxSessions:    cfg.MaxSessions,
	})

	verifier := auth.NewJWTVerifier(cfg.AuthTokenSecret)
	analysisController := controllers.NewAnalysisController(logger, analysisService)
	taggingController := controllers.NewTaggingController(logger, coordinator)
	mux := deliveryhttp.NewRouter(analysisController, taggingController, verifier)

	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	coordinator.Start(ctx)
	defer coordinator.Stop()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}
