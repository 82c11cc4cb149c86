// Package server assembles the devserver's HTTP surface.
package server

import (
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/messaging"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/persistence/analytics"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/persistence/content"
	"github.com/ProofPulse/proofpulse-go/internal/presentation/http/handlers"
	"github.com/ProofPulse/proofpulse-go/internal/presentation/http/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server is the devserver: the read, tracking, and control endpoints the
// engine consumes, backed by fixtures and a sqlite tracking store.
type Server struct {
	port   string
	router *gin.Engine
	logger *logging.ChanneledLogger
}

// New builds the full devserver router.
func New(
	port string,
	store *content.FixtureStore,
	tracking *analytics.TrackingRepository,
	broadcaster *messaging.ControlBroadcaster,
	logger *logging.ChanneledLogger,
) *Server {
	r := gin.Default()
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	// Allow local embedding origins, including IPv6 localhost.
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:4321",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:4321",
			"http://[::1]:3000",
			"http://[::1]:4321",
		},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	campaignHandlers := handlers.NewCampaignHandlers(store)
	trackHandlers := handlers.NewTrackHandlers(tracking, logger)
	controlHandlers := handlers.NewControlHandlers(broadcaster, logger)

	api := r.Group("/api/v1")
	{
		api.GET("/campaigns", middleware.RequireSiteIdentifier(), campaignHandlers.GetCampaigns)
		api.GET("/events", middleware.RequireSiteIdentifier(), campaignHandlers.GetEvents)
		api.POST("/track", trackHandlers.PostTrack)
		api.GET("/ws", controlHandlers.Subscribe)
		api.POST("/control", controlHandlers.PostControl)
	}

	return &Server{
		port:   port,
		router: r,
		logger: logger,
	}
}

// Router exposes the gin engine, used by handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run blocks serving HTTP on the configured port.
func (s *Server) Run() error {
	if s.logger != nil {
		s.logger.Startup().Info("Devserver listening", "port", s.port)
	}
	return s.router.Run(":" + s.port)
}
