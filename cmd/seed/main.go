package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"echoreport/internal/app"
	"echoreport/internal/config"
	"echoreport/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	sessions := service.NewSessionService(a.Catalogue, a.Drafts, a.Reports)
	res, err := app.SeedDemo(ctx, sessions, "clinician_seed")
	if err != nil {
		log.Fatalf("Failed to seed report: %v", err)
	}

	fmt.Printf("Successfully created demo report '%s' in %s store\n", res.ReportID, cfg.StorageBackend)
}
