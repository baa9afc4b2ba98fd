package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/skinfolio/skinfolio/internal/api"
	"github.com/skinfolio/skinfolio/internal/api/handlers"
	"github.com/skinfolio/skinfolio/internal/scheduler"
	"github.com/skinfolio/skinfolio/internal/scheduler/jobs"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the HTTP API server with the scheduled sync running alongside.

On startup the tracked universe is seeded and, when the store holds less
history than SEED_DAYS, an initial backfill runs before serving.

Endpoints:
  GET  /health                      - health check
  GET  /items                       - tracked universe
  GET  /history/{id}                - one item's snapshots
  GET  /recommendations             - ranked buy candidates
  GET  /simulation/portfolio        - portfolio replay
  GET  /audit/summary               - dataset aggregates
  GET  /audit/snapshots             - newest raw rows
  POST /track                       - sync today's prices
  POST /backfill                    - fill historical snapshots
  POST /maintenance/rebuild         - wipe and re-ingest
  POST /maintenance/enrich-images   - resolve missing icons
  GET  /ws/ticks                    - live snapshot stream

Example:
  go run ./cmd/skinfolio api
  go run ./cmd/skinfolio api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "override the configured port")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	// Seed the universe and make sure there is enough history to rank.
	if _, err := a.pipeline.EnsureUniverse(ctx); err != nil {
		return fmt.Errorf("seed universe: %w", err)
	}
	if err := a.pipeline.SeedIfNeeded(ctx, a.cfg.SeedDays); err != nil {
		return fmt.Errorf("seed snapshots: %w", err)
	}

	// Snapshot writes feed the websocket stream.
	stream := api.NewTickStream(a.logger)
	a.pipeline.SetNotifier(stream.Broadcast)

	market := handlers.NewMarketHandler(a.items, a.snaps, a.logger)
	ingestH := handlers.NewIngestHandler(a.pipeline, a.logger)
	strategy := handlers.NewStrategyHandler(a.scoring, a.sim, a.logger)
	router := api.NewRouter(market, ingestH, strategy, stream, a.logger)

	sched := scheduler.New(a.logger)
	if err := sched.AddJob(jobs.NewSyncJob(a.pipeline, a.cfg.SyncSchedule, a.logger)); err != nil {
		return fmt.Errorf("schedule sync: %w", err)
	}
	if err := sched.AddJob(jobs.NewEnrichJob(a.pipeline, a.logger)); err != nil {
		return fmt.Errorf("schedule enrichment: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	server := api.New(a.cfg, a.logger, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		a.logger.WithField("signal", sig.String()).Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
