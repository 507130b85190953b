package scenario

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"levfin_model/pkg/core/assumption"
	"levfin_model/pkg/core/logger"
	"levfin_model/pkg/core/projection"
)

// Outcome is one projected variant. Outcomes[0] is always the base case.
type Outcome struct {
	Name        string                      `json:"name"`
	Assumptions assumption.Assumptions      `json:"assumptions"`
	Result      projection.ProjectionResult `json:"result"`
}

// Runner projects every variant of a deck. Each variant gets its own
// engine call; nothing is shared between goroutines except the read-only deck.
type Runner struct {
	engine      *projection.ProjectionEngine
	parallelism int
	log         logger.Logger
}

func NewRunner(engine *projection.ProjectionEngine, parallelism int, log logger.Logger) *Runner {
	if parallelism < 1 {
		parallelism = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{engine: engine, parallelism: parallelism, log: log}
}

// RunAll returns the base outcome followed by one outcome per scenario, in
// deck order. The first failing variant cancels the rest.
func (r *Runner) RunAll(ctx context.Context, deck *Deck) ([]Outcome, error) {
	inputs := make([]Outcome, 0, len(deck.Scenarios)+1)
	inputs = append(inputs, Outcome{Name: BaseName, Assumptions: deck.Base.Clone()})
	for _, s := range deck.Scenarios {
		inputs = append(inputs, Outcome{Name: s.Name, Assumptions: s.Overrides.Apply(deck.Base)})
	}

	outcomes := make([]Outcome, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.engine.Run(in.Assumptions)
			if err != nil {
				return fmt.Errorf("scenario %q: %w", in.Name, err)
			}
			outcomes[i] = Outcome{Name: in.Name, Assumptions: in.Assumptions, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.log.WithError(err).Error("scenario deck failed", map[string]interface{}{"deck": deck.Name})
		return nil, err
	}

	r.log.Info("scenario deck projected", map[string]interface{}{
		"deck":      deck.Name,
		"scenarios": len(outcomes),
		"mode":      string(r.engine.Mode()),
	})
	return outcomes, nil
}
