package workflow

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// StepEvent describes one successfully completed step. It is delivered to
// step hooks synchronously, after the step's outcome has been decided and
// before the runner acts on it.
type StepEvent struct {
	RunID    string
	Workflow string
	Agent    string
	Step     int
	Retries  int
	Outcome  Outcome
	Duration time.Duration
}

// ErrorEvent describes a run that is about to terminate in failure. Step
// numbers the invocation tied to the failure: the completed step whose
// outcome failed the run, or the attempted step when the agent itself
// returned an error.
type ErrorEvent struct {
	RunID    string
	Workflow string
	Agent    string
	Step     int
	Err      error
}

// StepHook observes completed steps.
type StepHook func(StepEvent)

// ErrorHook observes terminal failures.
type ErrorHook func(ErrorEvent)

// RunHook observes run starts and run ends.
type RunHook func(RunEvent)

// Hooks receives lifecycle callbacks from a Runner. Implementations are
// called synchronously on the run goroutine and should return quickly;
// heavy work belongs on another goroutine.
type Hooks interface {
	OnStep(StepEvent)
	OnError(ErrorEvent)
}

// RunEvent describes a whole run: fired once when it starts and once when
// it reaches a terminal state. Err is nil on success; Took is zero in the
// start event.
type RunEvent struct {
	RunID    string
	Workflow string
	Steps    int
	Err      error
	Took     time.Duration
}

// RunHooks is an optional extension of Hooks. Observers that implement it
// additionally receive run start and end events when registered through
// WithObserver.
type RunHooks interface {
	OnRunStart(RunEvent)
	OnRunEnd(RunEvent)
}

// NoopHooks is a Hooks that does nothing.
type NoopHooks struct{}

func (NoopHooks) OnStep(StepEvent)   {}
func (NoopHooks) OnError(ErrorEvent) {}

// CompositeHooks fans events out to multiple Hooks in order.
type CompositeHooks struct {
	hooks []Hooks
}

// NewCompositeHooks creates a Hooks that forwards events to each non-nil
// entry in hooks.
func NewCompositeHooks(hooks ...Hooks) Hooks {
	filtered := make([]Hooks, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	if len(filtered) == 0 {
		return NoopHooks{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeHooks{hooks: filtered}
}

func (c *CompositeHooks) OnStep(ev StepEvent) {
	for _, h := range c.hooks {
		h.OnStep(ev)
	}
}

func (c *CompositeHooks) OnError(ev ErrorEvent) {
	for _, h := range c.hooks {
		h.OnError(ev)
	}
}

// OnRunStart forwards the event to every member that implements RunHooks.
func (c *CompositeHooks) OnRunStart(ev RunEvent) {
	for _, h := range c.hooks {
		if rh, ok := h.(RunHooks); ok {
			rh.OnRunStart(ev)
		}
	}
}

// OnRunEnd forwards the event to every member that implements RunHooks.
func (c *CompositeHooks) OnRunEnd(ev RunEvent) {
	for _, h := range c.hooks {
		if rh, ok := h.(RunHooks); ok {
			rh.OnRunEnd(ev)
		}
	}
}

// LoggingHooks writes structured logs for step and error events.
type LoggingHooks struct {
	logger *zap.Logger
}

// NewLoggingHooks creates a Hooks that logs every event through the given
// logger. A nil logger falls back to zap.NewNop.
func NewLoggingHooks(logger *zap.Logger) *LoggingHooks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingHooks{logger: logger.With(zap.String("component", "hooks"))}
}

func (h *LoggingHooks) OnStep(ev StepEvent) {
	h.logger.Info("step completed",
		zap.String("run_id", ev.RunID),
		zap.String("workflow", ev.Workflow),
		zap.String("agent", ev.Agent),
		zap.Int("step", ev.Step),
		zap.Int("retries", ev.Retries),
		zap.Stringer("outcome", ev.Outcome),
		zap.Duration("duration", ev.Duration),
	)
}

func (h *LoggingHooks) OnError(ev ErrorEvent) {
	h.logger.Error("run failed",
		zap.String("run_id", ev.RunID),
		zap.String("workflow", ev.Workflow),
		zap.String("agent", ev.Agent),
		zap.Int("step", ev.Step),
		zap.Error(ev.Err),
	)
}

// TraceHooks writes one human-readable line per event, in the style of a
// debug trace. Runner.WithTracing installs it against os.Stderr.
type TraceHooks struct {
	w io.Writer
}

// NewTraceHooks creates a Hooks that writes trace lines to w.
func NewTraceHooks(w io.Writer) *TraceHooks {
	return &TraceHooks{w: w}
}

func (t *TraceHooks) OnStep(ev StepEvent) {
	fmt.Fprintf(t.w, "[%s] step %d agent=%s outcome=%s retries=%d took=%s\n",
		ev.Workflow, ev.Step, ev.Agent, ev.Outcome, ev.Retries, ev.Duration)
}

func (t *TraceHooks) OnError(ev ErrorEvent) {
	fmt.Fprintf(t.w, "[%s] failed after step %d agent=%s: %v\n",
		ev.Workflow, ev.Step, ev.Agent, ev.Err)
}
