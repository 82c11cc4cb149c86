// Package startup prepares the notification engine
package startup

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ProofPulse/proofpulse-go/internal/application/container"
	"github.com/ProofPulse/proofpulse-go/internal/application/services"
	"github.com/ProofPulse/proofpulse-go/internal/domain/entities/widgets"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/messaging"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/persistence/database"
	"github.com/ProofPulse/proofpulse-go/pkg/config"
)

// Initialize performs the complete engine startup sequence and blocks
// until shutdown. The only fatal path is the missing-identifier
// misconfiguration; every other failure degrades per the engine's
// no-throw contract. A failed initial campaign fetch aborts startup
// silently: no loop is armed and the host is never disturbed.
func Initialize() error {
	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	// Step 1: Validate the embed configuration. This is the one fatal
	// local misconfiguration: no work happens before it passes.
	embed := widgets.EmbedConfig{
		WidgetID:  config.WidgetID,
		SiteToken: config.SiteToken,
		WebsiteID: config.WebsiteID,
	}
	if err := embed.Validate(); err != nil {
		return err
	}

	// Step 2: Initialize channeled logging.
	loggerConfig := logging.DefaultLoggerConfig()
	loggerConfig.OutputToFile = config.LogToFile
	loggerConfig.LogDirectory = config.LogDirectory
	loggerConfig.DefaultLevel = logging.ParseLevel(config.LogLevel)
	logger, err := logging.NewChanneledLogger(loggerConfig)
	if err != nil {
		log.Printf("Channeled logger unavailable, using defaults: %v", err)
		logger, _ = logging.NewChanneledLogger(nil)
	}
	logger.Startup().Info("Engine initializing",
		"widgetId", embed.WidgetID,
		"siteToken", embed.SiteToken != "",
		"websiteId", embed.WebsiteID,
	)

	// Step 3: Open the client state database. Failure is non-fatal: the
	// durable tier then runs memory-only for this run.
	var stateDB *database.DB
	stateDB, err = database.NewConnectionWithLogger(config.DBDriver, config.DBPath, logger)
	if err != nil {
		logger.Startup().Warn("State database unavailable, durable tier is memory-only", "error", err.Error())
		stateDB = nil
	} else {
		if err := database.NewTableCreator().CreateClientStateSchema(stateDB.DB); err != nil {
			logger.Startup().Warn("State schema creation failed, durable tier is memory-only", "error", err.Error())
			stateDB.Close()
			stateDB = nil
		}
	}
	if stateDB != nil {
		defer stateDB.Close()
	}

	// Step 4: Create the dependency injection container; identity is
	// resolved here so the pair stays stable for the whole run.
	wctx := widgets.NewWidgetContext(embed, config.PageURL)
	appContainer := container.NewContainer(wctx, stateDB, logger)
	logger.Startup().Info("Container initialized",
		"visitorId", wctx.VisitorID,
		"sessionId", wctx.SessionID,
	)

	// Step 5: Fetch the campaign snapshot. Any failure here aborts
	// startup cleanly: log, no loop, exit without error.
	fetchCtx, cancelFetch := context.WithTimeout(ctx, config.FetchTimeout)
	snapshot, err := appContainer.BackendClient.FetchCampaigns(fetchCtx)
	cancelFetch()
	if err != nil {
		logger.Startup().Warn("Initial campaign fetch failed, engine will not start", "error", err.Error())
		return nil
	}

	// Step 6: Build the orchestrator and scheduler, then arm the loop.
	orchestrator := services.NewOrchestratorService(snapshot, appContainer.FrequencyService, logger)
	scheduler := services.NewSchedulerService(
		orchestrator,
		appContainer.FrequencyService,
		appContainer.TelemetryService,
		appContainer.Surface,
		appContainer.BackendClient,
		config.InitialDelay,
		config.DisplayInterval,
		logger,
	)
	scheduler.Start(ctx)
	logger.Startup().Info("Display loop armed",
		"campaigns", len(snapshot.Campaigns),
		"sequenceMode", orchestrator.Rules().SequenceMode,
		"duration", time.Since(start),
	)

	// Step 7: Subscribe to the live control channel when configured.
	var subscriber *messaging.ControlSubscriber
	if config.ControlWSURL != "" {
		subscriber = messaging.NewControlSubscriber(config.ControlWSURL, func(frame messaging.ControlFrame) {
			switch frame.Action {
			case messaging.ActionPause:
				scheduler.Pause()
			case messaging.ActionResume:
				scheduler.Resume()
			case messaging.ActionRefresh:
				refreshCtx, cancelRefresh := context.WithTimeout(ctx, config.FetchTimeout)
				fresh, err := appContainer.BackendClient.FetchCampaigns(refreshCtx)
				cancelRefresh()
				if err != nil {
					logger.Network().Debug("Campaign refresh failed, keeping current snapshot", "error", err.Error())
					return
				}
				scheduler.Reinitialize(ctx, fresh)
			}
		}, logger)
		subscriber.Subscribe()
	}

	// Step 8: Block until shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Shutdown().Info("Shutting down engine...")
	if subscriber != nil {
		subscriber.Close()
	}
	scheduler.Stop()

	snapshotState := scheduler.Snapshot()
	logger.Shutdown().Info("Engine stopped",
		"state", snapshotState.State,
		"shown", snapshotState.Shown,
		"cursor", snapshotState.Cursor,
		"uptime", time.Since(start),
	)
	return nil
}
