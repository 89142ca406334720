package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"coachpath/internal/coaching"
	"coachpath/internal/config"
	"coachpath/internal/content"
	"coachpath/internal/database"
	"coachpath/internal/handlers"
	"coachpath/internal/metrics"
	"coachpath/internal/repository"
	"coachpath/internal/security"
	"coachpath/internal/service"
	"coachpath/migrations"
)

const unsubscribeTokenTTL = 30 * 24 * time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(ctx, migrations.Source(cfg.MigrationsPath)); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	catalog, err := content.Load(cfg.ContentPath)
	if err != nil {
		log.Fatalf("Failed to load pathway content: %v", err)
	}
	log.Printf("Pathway content loaded: %d pathways, %d lessons", len(catalog.Pathways()), catalog.LessonCount())

	m := metrics.NewDefault()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	csrfSecret := cfg.CSRFSecret
	if csrfSecret == "" {
		log.Println("Warning: CSRF_SECRET not set, generating a random secret; tokens will not survive a restart")
		csrfSecret = security.GenerateSessionID()
	}
	reminderSecret := cfg.ReminderSecret
	if reminderSecret == "" {
		log.Println("Warning: REMINDER_SECRET not set, unsubscribe links will not survive a restart")
		reminderSecret = security.GenerateSessionID()
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.SessionDuration)
	coachingService := service.NewCoachingService(catalog, progressRepo, m)
	adminService := service.NewAdminService(userRepo, progressRepo, coaching.NewAggregator(cfg.ActivityWindow), m)
	reminderService := service.NewReminderService(
		userRepo, progressRepo, reminderRepo, emailService, catalog,
		security.NewTokenSigner(reminderSecret, unsubscribeTokenTTL), m,
		cfg.AppBaseURL, cfg.ReminderHour,
	)

	googleOAuth := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}

	csrf := security.NewCSRFGenerator(csrfSecret)
	limiter := security.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Initialize handlers
	routes := &handlers.Routes{
		Middleware: handlers.NewMiddleware(authService, csrf, limiter, cfg.IsAdmin),
		Auth:       handlers.NewAuthHandler(authService, coachingService, emailService, csrf, cfg.IsAdmin, googleOAuth, cfg.OAuthRedirectBaseURL),
		Coaching:   handlers.NewCoachingHandler(coachingService, reminderService),
		Admin:      handlers.NewAdminHandler(adminService),
	}

	// Setup routes
	mux := http.NewServeMux()
	routes.Register(mux)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(pingCtx); err != nil {
			http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.BasicAuth(cfg.MetricsUser, cfg.MetricsPass, m.Handler()))

	allowedOrigins := cfg.CORSAllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{cfg.AppBaseURL}
	}
	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(allowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", security.CSRFHeader}),
		gorillaHandlers.AllowCredentials(),
	)

	handler := corsHandler(m.Monitor(handlers.Logging(mux)))

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background jobs
	go authService.StartSessionCleanup(ctx, time.Hour)
	go reminderService.Start(ctx)
	go limiter.StartCleanup(ctx.Done())

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
