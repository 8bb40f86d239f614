package workflow

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/agentline/types"
)

// Branch is one unit of fan-out work: a runner and the initial state it
// starts from. Branches share the Ctx they are executed against; each one
// needs its own Runner because runners are not reentrant.
type Branch[S any] struct {
	Name    string
	Runner  *Runner[S]
	Initial S
}

// BranchResult carries one branch's terminal state in declaration order.
type BranchResult[S any] struct {
	Name  string
	State S
	Err   error
}

// ParallelExecutor runs independent branches concurrently against a shared
// Ctx and joins them all before returning. There is no partial
// cancellation: a failing branch never interrupts its siblings.
type ParallelExecutor[S any] struct {
	limit  int
	logger *zap.Logger
}

// NewParallelExecutor creates an executor with unbounded concurrency and a
// no-op logger.
func NewParallelExecutor[S any]() *ParallelExecutor[S] {
	return &ParallelExecutor[S]{logger: zap.NewNop()}
}

// WithConcurrency caps how many branches run at once. Zero or negative
// means unbounded.
func (p *ParallelExecutor[S]) WithConcurrency(n int) *ParallelExecutor[S] {
	p.limit = n
	return p
}

// WithLogger sets the structured logger for branch lifecycle events.
func (p *ParallelExecutor[S]) WithLogger(logger *zap.Logger) *ParallelExecutor[S] {
	if logger != nil {
		p.logger = logger.With(zap.String("component", "parallel_executor"))
	}
	return p
}

// Execute starts every branch on its own goroutine and blocks until all of
// them reach a terminal state. Results are returned in declaration order
// regardless of completion order. The returned error is the first failing
// branch's error in declaration order, wrapped with the branch name; the
// full result slice is returned either way so callers can inspect every
// branch.
func (p *ParallelExecutor[S]) Execute(c *Ctx, branches ...Branch[S]) ([]BranchResult[S], error) {
	for _, br := range branches {
		if br.Runner == nil {
			return nil, types.Invalidf("branch %q has no runner", br.Name)
		}
	}

	p.logger.Info("starting parallel execution",
		zap.Int("branches", len(branches)),
		zap.Int("concurrency", p.limit),
	)

	results := make([]BranchResult[S], len(branches))
	var g errgroup.Group
	if p.limit > 0 {
		g.SetLimit(p.limit)
	}

	for i, br := range branches {
		i, br := i, br
		g.Go(func() error {
			state, err := br.Runner.Run(br.Initial, c)
			results[i] = BranchResult[S]{
				Name:  br.Name,
				State: state,
				Err:   err,
			}
			return nil // collect every branch, never terminate the group early
		})
	}

	_ = g.Wait()

	for _, res := range results {
		if res.Err != nil {
			p.logger.Error("parallel execution failed",
				zap.String("branch", res.Name),
				zap.Error(res.Err),
			)
			return results, fmt.Errorf("branch %s: %w", res.Name, res.Err)
		}
	}

	p.logger.Info("parallel execution completed",
		zap.Int("branches", len(branches)),
	)
	return results, nil
}
