package workflow

import (
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/agentline/types"
)

// Default limits applied by NewRunner.
const (
	DefaultMaxSteps   = 10_000
	DefaultMaxRetries = 3
)

// Runner interprets a workflow against an evolving state value, applying
// each agent's outcome until the run terminates. A Runner is not reentrant:
// concurrent Run calls on the same instance are undefined. Independent
// Runners sharing one Ctx are safe.
type Runner[S any] struct {
	wf            *Workflow[S]
	maxSteps      int
	maxRetries    int
	stepHooks     []StepHook
	errorHooks    []ErrorHook
	runStartHooks []RunHook
	runEndHooks   []RunHook
	logger        *zap.Logger
}

// NewRunner creates a runner for the workflow with default limits and a
// no-op logger.
func NewRunner[S any](wf *Workflow[S]) *Runner[S] {
	return &Runner[S]{
		wf:         wf,
		maxSteps:   DefaultMaxSteps,
		maxRetries: DefaultMaxRetries,
		logger:     zap.NewNop(),
	}
}

// WithMaxSteps caps the total number of agent invocations in one Run call.
// It is the guard against accidental infinite loops.
func (r *Runner[S]) WithMaxSteps(n int) *Runner[S] {
	r.maxSteps = n
	return r
}

// WithMaxRetries caps consecutive Retry outcomes from the same agent. The
// counter resets whenever the active agent changes.
func (r *Runner[S]) WithMaxRetries(n int) *Runner[S] {
	r.maxRetries = n
	return r
}

// OnStep registers a hook invoked after every successful step, in
// registration order, on the run goroutine.
func (r *Runner[S]) OnStep(fn StepHook) *Runner[S] {
	if fn != nil {
		r.stepHooks = append(r.stepHooks, fn)
	}
	return r
}

// OnError registers a hook invoked when a run terminates in failure.
func (r *Runner[S]) OnError(fn ErrorHook) *Runner[S] {
	if fn != nil {
		r.errorHooks = append(r.errorHooks, fn)
	}
	return r
}

// OnRunStart registers a hook invoked once before the first step of a run.
func (r *Runner[S]) OnRunStart(fn RunHook) *Runner[S] {
	if fn != nil {
		r.runStartHooks = append(r.runStartHooks, fn)
	}
	return r
}

// OnRunEnd registers a hook invoked once when a run reaches a terminal
// state, whether it succeeded or failed.
func (r *Runner[S]) OnRunEnd(fn RunHook) *Runner[S] {
	if fn != nil {
		r.runEndHooks = append(r.runEndHooks, fn)
	}
	return r
}

// WithObserver registers both callbacks of h. If h also implements
// RunHooks, its run callbacks are registered as well.
func (r *Runner[S]) WithObserver(h Hooks) *Runner[S] {
	if h == nil {
		return r
	}
	r.OnStep(h.OnStep).OnError(h.OnError)
	if rh, ok := h.(RunHooks); ok {
		r.OnRunStart(rh.OnRunStart).OnRunEnd(rh.OnRunEnd)
	}
	return r
}

// WithTracing installs hooks that write one line per step and per failure
// to stderr.
func (r *Runner[S]) WithTracing() *Runner[S] {
	return r.WithObserver(NewTraceHooks(os.Stderr))
}

// WithLogger sets the structured logger for run lifecycle events.
func (r *Runner[S]) WithLogger(logger *zap.Logger) *Runner[S] {
	if logger != nil {
		r.logger = logger.With(zap.String("component", "runner"))
	}
	return r
}

// Run executes the workflow from its start agent until an agent ends it,
// a limit trips, or an agent errors. It returns the final state on
// success. On failure it returns the terminal error together with the last
// state produced by a successful step, so callers can inspect partial
// progress.
//
// The run blocks the calling goroutine, including through Wait outcomes.
// There is no cancellation: once started, a run proceeds to a terminal
// state on its own.
func (r *Runner[S]) Run(initial S, c *Ctx) (S, error) {
	runID := uuid.New().String()
	state := initial
	current := r.wf.Start()
	steps := 0
	retries := 0
	runBegan := time.Now()

	r.logger.Info("starting workflow run",
		zap.String("run_id", runID),
		zap.String("workflow", r.wf.Name()),
		zap.String("start", current),
		zap.Int("max_steps", r.maxSteps),
		zap.Int("max_retries", r.maxRetries),
	)
	for _, h := range r.runStartHooks {
		h(RunEvent{RunID: runID, Workflow: r.wf.Name()})
	}

	endRun := func(err error) {
		ev := RunEvent{
			RunID:    runID,
			Workflow: r.wf.Name(),
			Steps:    steps,
			Err:      err,
			Took:     time.Since(runBegan),
		}
		for _, h := range r.runEndHooks {
			h(ev)
		}
	}

	fail := func(agent string, step int, err error) (S, error) {
		r.logger.Error("workflow run failed",
			zap.String("run_id", runID),
			zap.String("workflow", r.wf.Name()),
			zap.String("agent", agent),
			zap.Int("step", step),
			zap.Error(err),
		)
		ev := ErrorEvent{
			RunID:    runID,
			Workflow: r.wf.Name(),
			Agent:    agent,
			Step:     step,
			Err:      err,
		}
		for _, h := range r.errorHooks {
			h(ev)
		}
		endRun(err)
		return state, err
	}

	succeed := func() (S, error) {
		r.logger.Info("workflow run succeeded",
			zap.String("run_id", runID),
			zap.String("workflow", r.wf.Name()),
			zap.Int("steps", steps),
		)
		endRun(nil)
		return state, nil
	}

	for {
		agent, ok := r.wf.Agent(current)
		if !ok {
			err := types.Failedf("unknown step: %s", current).
				WithCode(types.ErrUnknownAgent)
			return fail(current, steps, err)
		}

		began := time.Now()
		next, outcome, err := agent.Run(state, c)
		took := time.Since(began)
		if err != nil {
			// The invocation itself failed; state keeps the last good value
			// and the error is surfaced as-is, never retried.
			return fail(current, steps+1, err)
		}
		state = next
		steps++

		r.logger.Debug("step completed",
			zap.String("run_id", runID),
			zap.String("agent", current),
			zap.Int("step", steps),
			zap.Int("retries", retries),
			zap.Stringer("outcome", outcome),
			zap.Duration("duration", took),
		)
		ev := StepEvent{
			RunID:    runID,
			Workflow: r.wf.Name(),
			Agent:    current,
			Step:     steps,
			Retries:  retries,
			Outcome:  outcome,
			Duration: took,
		}
		for _, h := range r.stepHooks {
			h(ev)
		}

		// The step that overflows the budget is still observed above, then
		// the run fails before its outcome is acted on.
		if steps > r.maxSteps {
			err := types.Failedf("max_steps exceeded (possible infinite loop) in workflow %s", r.wf.Name()).
				WithCode(types.ErrStepLimitExceeded)
			return fail(current, steps, err)
		}

		switch outcome.Kind() {
		case OutcomeDone:
			return succeed()

		case OutcomeFail:
			err := types.Failed(outcome.Message()).
				WithCode(types.ErrAgentFailed)
			return fail(current, steps, err)

		case OutcomeNext:
			current = outcome.Target()
			retries = 0

		case OutcomeContinue:
			target, ok := r.wf.DefaultNext(current)
			if !ok {
				// No outgoing edge: the chain is exhausted and the run
				// ends successfully with the current state.
				return succeed()
			}
			current = target
			retries = 0

		case OutcomeRetry:
			retries++
			if retries > r.maxRetries {
				err := types.Failedf("step '%s' exceeded max retries (%d): %s",
					current, r.maxRetries, outcome.Hint().Reason).
					WithCode(types.ErrRetryLimitExceeded)
				return fail(current, steps, err)
			}

		case OutcomeWait:
			// Waiting blocks this runner only and leaves the retry
			// counter untouched.
			time.Sleep(outcome.Duration())
		}
	}
}
