package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"regwizard/config"
	"regwizard/cron"
	"regwizard/database"
	draftRepo "regwizard/database/repository/draft"
	preferenceRepo "regwizard/database/repository/preference"
	"regwizard/handlers"
	"regwizard/metrics"
	"regwizard/middleware"
	"regwizard/routes"
	"regwizard/services/location"
	"regwizard/services/theme"
	"regwizard/services/wizard"
	"regwizard/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func newDraftRepo(cfg config.Config, logger *zap.Logger) draftRepo.DraftRepository {
	switch cfg.DraftBackend {
	case "redis":
		return draftRepo.NewRedisDraftRepo(utils.GetDraftCacheClient(), cfg.DraftTTL)
	case "mongo":
		database.InitDB()
		repo, err := draftRepo.NewMongoDraftRepo(database.Database())
		if err != nil {
			logger.Sugar().Fatalf("main: failed to prepare mongo draft store: %v", err)
		}
		return repo
	case "", "memory":
		return draftRepo.NewMemoryDraftRepo()
	}
	logger.Sugar().Fatalf("main: unknown DRAFT_BACKEND %q", cfg.DraftBackend)
	return nil
}

func newPreferenceRepo(cfg config.Config, logger *zap.Logger) preferenceRepo.PreferenceRepository {
	switch cfg.PreferenceBackend {
	case "redis":
		return preferenceRepo.NewRedisPreferenceRepo(utils.GetPreferenceCacheClient())
	case "", "memory":
		return preferenceRepo.NewMemoryPreferenceRepo()
	}
	logger.Sugar().Fatalf("main: unknown PREFERENCE_BACKEND %q", cfg.PreferenceBackend)
	return nil
}

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// repositories.
	drafts := newDraftRepo(cfg, logger)
	prefs := newPreferenceRepo(cfg, logger)
	utils.StartHealthMonitor(rootCtx, 30*time.Second, utils.RedisClients(), database.MongoClient)

	detector, err := location.NewDetector(cfg.CountryDetector, cfg.DetectorFixedCountry, cfg.DetectorHeader, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	// services.
	m := metrics.New()
	wizardService := wizard.NewDefaultWizardService(wizard.ServiceConfig{
		Repo:           drafts,
		Detector:       detector,
		Submitter:      wizard.DelaySubmitter{Delay: cfg.SubmitDelay},
		Logger:         logger,
		Metrics:        m,
		PersistTimeout: cfg.PersistTimeout,
		SummaryTTL:     cfg.SummaryTTL,
	})
	themeService := theme.NewService(prefs, logger)

	janitorDone := newJanitor(cfg, wizardService, logger).Start(rootCtx)

	var worker *cron.Worker
	if cfg.DraftPurgeEnabled {
		worker, err = cron.NewWorker(cfg, &cron.DraftPurger{
			Repo:    drafts,
			Metrics: m,
			Logger:  logger,
			MaxAge:  cfg.DraftMaxAge,
		}, logger)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to configure purge worker: %v", err)
		}
		worker.Start()
	}

	tmpl, err := handlers.Templates()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to parse page templates: %v", err)
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	if err := handlers.RegisterValidators(); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	handlerBundle := handlers.NewHandlerBundle(wizardService, themeService, m)
	for _, origin := range cfg.AllowedOrigins() {
		handlerBundle.LiveOrigins = append(handlerBundle.LiveOrigins, stripScheme(origin))
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle, routes.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		Gatherer:       prometheus.DefaultGatherer,
		Templates:      tmpl,
	})

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	stop()
	<-janitorDone
	if err := database.CloseDB(ctx); err != nil {
		logger.Sugar().Warnf("main: failed to close mongo: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// newJanitor evicts idle sessions and expired summaries whether or not the queued purge runs.
func newJanitor(cfg config.Config, sessions cron.SessionPruner, logger *zap.Logger) *cron.Janitor {
	return &cron.Janitor{
		Sessions: sessions,
		IdleTTL:  cfg.SessionIdleTTL,
		Interval: cfg.JanitorInterval,
		Logger:   logger,
	}
}

// stripScheme turns a CORS origin into the host pattern the websocket origin check expects.
func stripScheme(origin string) string {
	return strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://")
}
