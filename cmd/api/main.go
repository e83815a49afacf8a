package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mentorhub/interviews/docs" // This is for Swagger
	"github.com/mentorhub/interviews/internal/auth"
	"github.com/mentorhub/interviews/internal/config"
	"github.com/mentorhub/interviews/internal/database"
	"github.com/mentorhub/interviews/internal/events"
	"github.com/mentorhub/interviews/internal/handlers"
	"github.com/mentorhub/interviews/internal/logger"
	"github.com/mentorhub/interviews/internal/middleware"
	"github.com/mentorhub/interviews/internal/repository"
	"github.com/mentorhub/interviews/internal/scheduler"
	"github.com/mentorhub/interviews/internal/service"
	"github.com/mentorhub/interviews/internal/vault"
	"github.com/mentorhub/interviews/migrations"
)

// @title MentorHub Interviews API
// @version 1.0
// @description AI interview session lifecycle: start or resume, answers, completion and termination.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.Info("Starting service", "app", cfg.App.Name, "version", cfg.App.Version, "env", cfg.App.Env)

	if err := run(cfg); err != nil {
		slog.Error("Service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	slog.Info("Database connection established")

	// Run database migrations
	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations(ctx, migrationSource(cfg.Database.MigrationsPath)); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed")

	healthChecks := map[string]handlers.HealthChecker{
		"database": func(context.Context) error { return db.HealthCheck() },
	}

	// Transcript sealing
	var sealer repository.TranscriptSealer
	if cfg.Vault.Enabled {
		vaultClient, err := vault.NewClient(ctx, &vault.Config{
			Address:      cfg.Vault.Address,
			Token:        cfg.Vault.Token,
			TransitMount: cfg.Vault.TransitMount,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize vault: %w", err)
		}
		transcripts, err := vault.NewTranscriptSealer(ctx, vaultClient, cfg.Vault.TranscriptKey)
		if err != nil {
			return fmt.Errorf("failed to prepare transcript key: %w", err)
		}
		sealer = transcripts
		healthChecks["vault"] = vaultClient.Health
		slog.Info("Transcript sealing enabled", "key", cfg.Vault.TranscriptKey)
	}

	// Lifecycle events
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		rabbit, err := events.NewRabbitMQPublisher(cfg.Events.RabbitMQURL, cfg.Events.Exchange)
		if err != nil {
			return fmt.Errorf("failed to initialize event publisher: %w", err)
		}
		publisher = rabbit
		slog.Info("Publishing lifecycle events", "exchange", cfg.Events.Exchange)
	}
	defer publisher.Close()

	// Initialize repositories
	jobRepo := repository.NewJobRepository(db.DB)
	applicationRepo := repository.NewApplicationRepository(db.DB)
	interviewRepo := repository.NewInterviewRepository(db.DB, sealer)
	auditRepo := repository.NewAuditRepository(db.DB)

	// Initialize services
	authService := auth.NewService(&cfg.JWT)
	auditService := service.NewAuditService(auditRepo)
	interviewService := service.NewInterviewService(
		jobRepo,
		applicationRepo,
		interviewRepo,
		repository.NewTransactor(db.DB),
		auditService,
		service.WithPublisher(publisher),
	)

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)

	// Setup router
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, handlers.Handlers{
		Interview:   handlers.NewInterviewHandler(interviewService),
		Application: handlers.NewApplicationHandler(interviewService),
		Admin:       handlers.NewAdminHandler(interviewService, cfg.Interview),
		Audit:       handlers.NewAuditHandler(auditRepo),
		Health:      handlers.NewHealthHandler(healthChecks),
	}, authMw)

	// Apply global middleware
	var handler http.Handler = mux
	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
		defer rateLimiter.Stop()
		handler = rateLimiter.Limit(handler)
	}
	handler = middleware.Logging(
		middleware.SecurityHeaders(
			corsMw.Handler(
				middleware.ClientInfo(handler),
			),
		),
	)

	// Background maintenance
	sched := scheduler.NewScheduler(interviewService, &cfg.Scheduler, &cfg.Interview)
	sched.Start()
	defer sched.Stop()

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}

// migrationSource returns the migrations directory when it exists and the
// embedded set otherwise
func migrationSource(path string) fs.FS {
	if path != "" {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return os.DirFS(path)
		}
	}
	return migrations.FS
}
