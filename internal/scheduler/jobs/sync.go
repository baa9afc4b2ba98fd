// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/skinfolio/skinfolio/internal/ingest"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

const syncRunTimeout = 10 * time.Minute

// SyncJob runs the price sync on the configured schedule.
type SyncJob struct {
	pipeline *ingest.Pipeline
	schedule string
	logger   *logger.Logger
}

// NewSyncJob creates the scheduled sync. schedule is a cron expression with
// the seconds field, from SYNC_SCHEDULE.
func NewSyncJob(pipeline *ingest.Pipeline, schedule string, log *logger.Logger) *SyncJob {
	return &SyncJob{pipeline: pipeline, schedule: schedule, logger: log}
}

// Name implements scheduler.Job.
func (j *SyncJob) Name() string { return "price_sync" }

// Schedule implements scheduler.Job.
func (j *SyncJob) Schedule() string { return j.schedule }

// Run implements scheduler.Job.
func (j *SyncJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, syncRunTimeout)
	defer cancel()

	result, err := j.pipeline.Sync(ctx)
	if err != nil {
		return fmt.Errorf("scheduled sync: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"created": result.Created,
		"failed":  result.Failed,
	}).Info("scheduled sync finished")
	return nil
}
