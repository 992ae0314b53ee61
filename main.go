package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"katalyst-be/internal/config"
	"katalyst-be/internal/container"
	"katalyst-be/internal/handler"
	"katalyst-be/internal/middleware"
	"katalyst-be/pkg/logger"
)

// Resources holds all resources that need cleanup
type Resources struct {
	container *container.Container
	server    *http.Server
	log       *logger.Logger
	mu        sync.Mutex
	closed    bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	r.log.Info("Starting graceful shutdown...")

	var shutdownErr error
	if r.server != nil {
		r.log.Info("Shutting down HTTP server...")
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			shutdownErr = fmt.Errorf("HTTP server shutdown: %w", err)
		} else {
			r.log.Info("HTTP server shutdown complete")
		}
	}

	r.container.Close()
	r.log.Info("Connections closed")

	if shutdownErr != nil {
		return shutdownErr
	}
	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting katalyst-be server")

	ctx := context.Background()
	c, err := container.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	router := setupRouter(c)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	resources := &Resources{
		container: c,
		server:    server,
		log:       log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.Config
	log := c.GetLogger()
	dev := cfg.IsDevelopment()

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID())
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := handler.NewHealthHandler(c.DB, c.RedisClient, log)
	eventHandler := handler.NewEventHandler(c.Services.Event, log, dev)
	leadHandler := handler.NewLeadHandler(c.Services.Lead, log, dev)
	analyticsHandler := handler.NewAnalyticsHandler(c.Services.Analytics, log, dev)
	exportHandler := handler.NewExportHandler(c.Services.Export, log, dev)

	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		// Public event surface, consumed by the student-facing frontend
		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.List)
			r.Get("/{eventId}", eventHandler.Get)
			r.Post("/{eventId}/interested", eventHandler.MarkInterested)
			r.Post("/{eventId}/complete", eventHandler.MarkCompleted)
			r.Post("/{eventId}/register", leadHandler.Register)
		})

		// Admin surface, gated by actor tokens with the admin role
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.AuthJWTSecret, log))
			r.Use(middleware.RequireAdmin(log))

			r.Get("/dashboard", analyticsHandler.GetDashboard)

			r.Route("/events", func(r chi.Router) {
				r.Post("/", eventHandler.Create)
				r.Put("/{eventId}", eventHandler.Update)
				r.Delete("/{eventId}", eventHandler.Delete)
				r.Get("/{eventId}/stats", eventHandler.Stats)
				r.Get("/{eventId}/leads", leadHandler.ListForEvent)
			})

			r.Route("/leads", func(r chi.Router) {
				r.Get("/", leadHandler.List)
				r.Get("/analytics", analyticsHandler.GetAnalytics)
				r.Get("/export", exportHandler.ExportLeads)
				r.Get("/{leadId}", leadHandler.Get)
				r.Patch("/{leadId}/status", leadHandler.UpdateStatus)
				r.Post("/{leadId}/notes", leadHandler.AddNote)
			})
		})
	})

	return r
}
