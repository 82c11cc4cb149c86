// Package config provides centralized default values for ProofPulse
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Embed Configuration (at least one identifier must be present)
	WidgetID  string
	SiteToken string
	WebsiteID string
	PageURL   string

	// Backend API
	APIBase      string
	FetchTimeout time.Duration
	ControlWSURL string

	// Client State Database
	DBDriver string
	DBPath   string

	// Scheduler Pacing
	InitialDelay    time.Duration
	DisplayInterval time.Duration
	VisibleDuration time.Duration

	// Notification Placement
	Position string

	// Devserver Configuration
	DevserverPort     string
	DevserverDBPath   string
	DevserverFixtures string

	// Logging Configuration
	LogDirectory    string
	LogToFile       bool
	LogLevel        string
	SlowQueryMillis int
)

func init() {
	loadEnvFile()

	// Embed Configuration
	WidgetID = getEnvString("PROOFPULSE_WIDGET_ID", "")
	SiteToken = getEnvString("PROOFPULSE_SITE_TOKEN", "")
	WebsiteID = getEnvString("PROOFPULSE_WEBSITE_ID", "")
	PageURL = getEnvString("PROOFPULSE_PAGE_URL", "")

	// Backend API
	APIBase = getEnvString("PROOFPULSE_API_BASE", "http://localhost:8090/api/v1")
	FetchTimeout = getEnvDuration("PROOFPULSE_FETCH_TIMEOUT", 10*time.Second)
	ControlWSURL = getEnvString("PROOFPULSE_CONTROL_WS", "")

	// Client State Database
	DBDriver = getEnvString("PROOFPULSE_DB_DRIVER", "sqlite3")
	DBPath = getEnvString("PROOFPULSE_DB_PATH", "proofpulse-state.db")

	// Scheduler Pacing
	InitialDelay = getEnvDuration("PROOFPULSE_INITIAL_DELAY", 5*time.Second)
	DisplayInterval = getEnvDuration("PROOFPULSE_DISPLAY_INTERVAL", 15*time.Second)
	VisibleDuration = getEnvDuration("PROOFPULSE_VISIBLE_DURATION", 8*time.Second)

	// Notification Placement
	Position = getEnvString("PROOFPULSE_POSITION", "bottom-left")

	// Devserver Configuration
	DevserverPort = getEnvString("PROOFPULSE_DEVSERVER_PORT", "8090")
	DevserverDBPath = getEnvString("PROOFPULSE_DEVSERVER_DB_PATH", "proofpulse-devserver.db")
	DevserverFixtures = getEnvString("PROOFPULSE_DEVSERVER_FIXTURES", "fixtures/campaigns.json")

	// Logging Configuration
	LogDirectory = getEnvString("PROOFPULSE_LOG_DIR", "logs")
	LogToFile = getEnvBool("PROOFPULSE_LOG_TO_FILE", false)
	LogLevel = getEnvString("PROOFPULSE_LOG_LEVEL", "info")
	SlowQueryMillis = getEnvInt("PROOFPULSE_SLOW_QUERY_MILLIS", 100)
}
