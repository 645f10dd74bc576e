package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"echoreport/internal/app"
	"echoreport/internal/config"
	"echoreport/internal/metrics"
	"echoreport/internal/service"
	"echoreport/internal/transport/rest"
	"echoreport/internal/transport/ws"

	"github.com/joho/godotenv"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg := config.Load()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize:", err)
	}
	defer a.Close()
	log.Printf("Catalogue loaded: %d fields", a.Catalogue.Schema.Len())

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	m := metrics.New()

	// Initialize WebSocket hub
	wsHub := ws.NewHub(logger)
	defer wsHub.Close()
	log.Println("WebSocket hub started")

	// Initialize services
	opts := []service.Option{service.WithLogger(logger), service.WithMetrics(m)}
	authSvc := service.NewAuthService(cfg.ClinicianUsername, cfg.ClinicianPassword, cfg.JWTSecret)
	sessionSvc := service.NewSessionService(a.Catalogue, a.Drafts, a.Reports, opts...)
	reportSvc := service.NewReportService(a.Reports, a.Catalogue, opts...)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)

	container := &rest.Container{
		Catalogue:      a.Catalogue,
		AuthService:    authSvc,
		SessionService: sessionSvc,
		ReportService:  reportSvc,
		Metrics:        m,
		WSHub:          wsHub,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           rest.NewRouter(container),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Printf("Clinician auth: username=%s", cfg.ClinicianUsername)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  GET  /v1/schema")
		log.Println("  POST /v1/sessions")
		log.Println("  PUT  /v1/sessions/{id}/fields/{name}")
		log.Println("  POST /v1/sessions/{id}/submit")
		log.Println("  GET  /v1/reports")
		log.Println("  GET  /v1/reports/{id}/print")
		log.Println("  GET  /v1/reports/export.xlsx")
		log.Println("  WS   /v1/ws/sessions/{id}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
