// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/ProofPulse/proofpulse-go/internal/application/services"
	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/widgets"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/backend"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/persistence/database"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/persistence/storage"
	"github.com/ProofPulse/proofpulse-go/internal/presentation/surface"
	"github.com/ProofPulse/proofpulse-go/pkg/config"
)

// Container holds the engine's singleton services and infrastructure
// dependencies, wired once at startup and threaded everywhere; there are
// no ambient globals.
type Container struct {
	Logger *logging.ChanneledLogger

	// State tiers
	Durable   storage.Tier
	Ephemeral storage.Tier

	// Engine services
	IdentityService  *services.IdentityService
	FrequencyService *services.FrequencyService
	TelemetryService *services.TelemetryService

	// Infrastructure
	WidgetContext *widgets.WidgetContext
	BackendClient *backend.Client
	Surface       *surface.Surface
}

// NewContainer creates and wires the engine's singleton services. The
// stateDB may be nil; the durable tier then runs memory-only, which is
// the storage-failure degradation the engine is required to survive.
func NewContainer(wctx *widgets.WidgetContext, stateDB *database.DB, logger *logging.ChanneledLogger, surfaceOpts ...surface.Option) *Container {
	durable := storage.NewDurableTier(stateDB, logger)
	ephemeral := storage.NewMemoryTier()

	client := backend.NewClient(config.APIBase, wctx.Embed, config.FetchTimeout, logger)

	c := &Container{
		Logger:    logger,
		Durable:   durable,
		Ephemeral: ephemeral,

		IdentityService:  services.NewIdentityService(durable, ephemeral, logger),
		FrequencyService: services.NewFrequencyService(durable, ephemeral, logger),

		WidgetContext: wctx,
		BackendClient: client,
		Surface:       surface.New(config.VisibleDuration, config.Position, logger, surfaceOpts...),
	}

	// Identity is resolved eagerly so every later component sees one
	// stable pair for the whole run.
	wctx.VisitorID = c.IdentityService.VisitorID()
	wctx.SessionID = c.IdentityService.SessionID()

	c.TelemetryService = services.NewTelemetryService(client, wctx, logger)

	return c
}
