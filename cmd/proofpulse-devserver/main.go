package main

import (
	"log"

	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/messaging"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/persistence/analytics"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/persistence/content"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/persistence/database"
	"github.com/ProofPulse/proofpulse-go/internal/presentation/http/server"
	"github.com/ProofPulse/proofpulse-go/pkg/config"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found -- config defaults will be used")
	}

	logger, err := logging.NewChanneledLogger(nil)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	store, err := content.LoadFixtures(config.DevserverFixtures)
	if err != nil {
		log.Fatalf("Failed to load campaign fixtures: %v", err)
	}

	db, err := database.NewConnectionWithLogger(config.DBDriver, config.DevserverDBPath, logger)
	if err != nil {
		log.Fatalf("Failed to open devserver database: %v", err)
	}
	defer db.Close()

	if err := database.NewTableCreator().CreateTrackingSchema(db.DB); err != nil {
		log.Fatalf("Failed to create tracking schema: %v", err)
	}

	broadcaster := messaging.NewControlBroadcaster(logger)

	srv := server.New(config.DevserverPort, store, analytics.NewTrackingRepository(db, logger), broadcaster, logger)
	if err := srv.Run(); err != nil {
		log.Fatalf("Devserver failed: %v", err)
	}
}
