package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/internal/strategyconfig"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

// Limit bounds accepted by Recommendations.
const (
	MinLimit = 1
	MaxLimit = 20
)

// Service loads candidates from the store and ranks them.
type Service struct {
	items  contracts.ItemRepository
	snaps  contracts.SnapshotRepository
	engine *Engine
	cfg    *strategyconfig.Config
	logger *logger.Logger
}

// NewService wires the ranking engine to the repositories.
func NewService(items contracts.ItemRepository, snaps contracts.SnapshotRepository, cfg *strategyconfig.Config, log *logger.Logger) *Service {
	return &Service{
		items:  items,
		snaps:  snaps,
		engine: NewEngine(cfg),
		cfg:    cfg,
		logger: log,
	}
}

// Engine exposes the underlying pure engine for replay callers.
func (s *Service) Engine() *Engine {
	return s.engine
}

// Recommendations ranks the tracked universe on current history and returns
// the top limit records. limit <= 0 means the configured default; values
// outside [1,20] are clamped.
func (s *Service) Recommendations(ctx context.Context, limit int) ([]contracts.ScoreRecord, error) {
	if limit <= 0 {
		limit = s.cfg.Ranking.DefaultTopN
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	candidates, err := s.loadCandidates(ctx)
	if err != nil {
		return nil, err
	}

	records := s.engine.Rank(candidates, time.Time{})
	if len(records) > limit {
		records = records[:limit]
	}

	s.logger.WithFields(map[string]interface{}{
		"candidates": len(candidates),
		"returned":   len(records),
	}).Debug("ranking computed")
	return records, nil
}

func (s *Service) loadCandidates(ctx context.Context) ([]Candidate, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	candidates := make([]Candidate, 0, len(items))
	for _, item := range items {
		history, err := s.snaps.History(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("history for %q: %w", item.Name, err)
		}
		candidates = append(candidates, Candidate{Item: item, History: history})
	}
	return candidates, nil
}
