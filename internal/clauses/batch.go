package clauses

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"clausegen/internal/ir"
)

// Request is one goal to synthesize clauses for.
type Request struct {
	Name string
	Goal ir.DomainGoal
	Env  ir.Environment
}

// Result pairs a request with its clause set. ID correlates the request in
// logs.
type Result struct {
	ID      string
	Name    string
	Clauses ClauseSet
	Elapsed time.Duration
}

// SynthesizeBatch synthesizes every request concurrently, at most
// WithWorkers at a time. Results are in request order. The only error is
// the context's: synthesis itself cannot fail.
func (s *Synthesizer) SynthesizeBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for i, req := range reqs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			id := uuid.NewString()
			start := time.Now()
			set := s.ProgramClausesForGoal(req.Goal, req.Env)
			results[i] = Result{ID: id, Name: req.Name, Clauses: set, Elapsed: time.Since(start)}
			s.logger.Debug("batch request done",
				zap.String("request_id", id),
				zap.String("name", req.Name),
				zap.Int("clauses", set.Len()))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
