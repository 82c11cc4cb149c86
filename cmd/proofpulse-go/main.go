package main

import (
	"log"

	"github.com/ProofPulse/proofpulse-go/internal/application/startup"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found -- config defaults will be used")
	}

	if err := startup.Initialize(); err != nil {
		log.Fatalf("Engine startup failed: %v", err)
	}

	log.Println("Engine has shut down gracefully.")
}
