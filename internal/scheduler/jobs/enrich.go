package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/skinfolio/skinfolio/internal/ingest"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

const enrichRunTimeout = 15 * time.Minute

// EnrichJob fills missing item icons weekly. New catalog entries start
// without media; this keeps them from staying bare indefinitely.
type EnrichJob struct {
	pipeline *ingest.Pipeline
	logger   *logger.Logger
}

// NewEnrichJob creates the weekly media enrichment job.
func NewEnrichJob(pipeline *ingest.Pipeline, log *logger.Logger) *EnrichJob {
	return &EnrichJob{pipeline: pipeline, logger: log}
}

// Name implements scheduler.Job.
func (j *EnrichJob) Name() string { return "image_enrichment" }

// Schedule implements scheduler.Job. Sunday 03:00.
func (j *EnrichJob) Schedule() string { return "0 0 3 * * 0" }

// Run implements scheduler.Job.
func (j *EnrichJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, enrichRunTimeout)
	defer cancel()

	updated, err := j.pipeline.EnrichImages(ctx)
	if err != nil {
		return fmt.Errorf("scheduled enrichment: %w", err)
	}

	j.logger.WithField("updated", updated).Info("scheduled enrichment finished")
	return nil
}
