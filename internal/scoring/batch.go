package scoring

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/fitscore/internal/logger"
	"github.com/spigell/fitscore/internal/record"
)

// Pair is one candidate and requirement to score together.
type Pair struct {
	ID          string
	Candidate   record.Record
	Requirement record.Record
}

// Batch scores every pair on at most workers goroutines and returns the
// results in input order. A workers value below one uses GOMAXPROCS.
// Cancelling ctx stops scheduling new pairs and returns the context error.
func (e *Engine) Batch(ctx context.Context, pairs []Pair, workers int) ([]*MatchResult, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*MatchResult, len(pairs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range pairs {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			// Each goroutine owns its own slot, so no lock is needed.
			results[i] = e.Score(p.Candidate, p.Requirement)
			e.logger.Debug("pair scored",
				zap.String(logger.FieldPair, p.ID),
				zap.Int("overall_score", results[i].OverallScore),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring batch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scoring batch: %w", err)
	}
	return results, nil
}
