package history

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentline/workflow"
)

// Recorder persists run history by observing runner events. Register it
// with Runner.WithObserver; one Recorder may serve any number of runners
// at once. Store failures are logged and never affect the run itself.
type Recorder struct {
	store  Store
	logger *zap.Logger

	mu   sync.Mutex
	open map[string]*Record
}

var (
	_ workflow.Hooks    = (*Recorder)(nil)
	_ workflow.RunHooks = (*Recorder)(nil)
)

// NewRecorder creates a recorder writing to store. A nil logger silences
// write failures.
func NewRecorder(store Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		store:  store,
		logger: logger.With(zap.String("component", "history_recorder")),
		open:   make(map[string]*Record),
	}
}

// OnRunStart opens a running record for the run.
func (r *Recorder) OnRunStart(ev workflow.RunEvent) {
	rec := &Record{
		RunID:     ev.RunID,
		Workflow:  ev.Workflow,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	r.open[ev.RunID] = rec
	r.mu.Unlock()

	if err := r.store.CreateRun(rec); err != nil {
		r.logger.Warn("failed to record run start",
			zap.String("run_id", ev.RunID),
			zap.String("workflow", ev.Workflow),
			zap.Error(err),
		)
	}
}

// OnStep appends the step to the run's step log.
func (r *Recorder) OnStep(ev workflow.StepEvent) {
	step := &StepRecord{
		RunID:    ev.RunID,
		Step:     ev.Step,
		Agent:    ev.Agent,
		Outcome:  ev.Outcome.String(),
		Retries:  ev.Retries,
		Duration: ev.Duration,
	}
	if err := r.store.AppendStep(step); err != nil {
		r.logger.Warn("failed to record step",
			zap.String("run_id", ev.RunID),
			zap.Int("step", ev.Step),
			zap.Error(err),
		)
	}
}

// OnError is satisfied for the Hooks interface; the terminal error is
// captured by OnRunEnd, which always follows it.
func (r *Recorder) OnError(ev workflow.ErrorEvent) {}

// OnRunEnd closes the run's record with its terminal status.
func (r *Recorder) OnRunEnd(ev workflow.RunEvent) {
	r.mu.Lock()
	rec, ok := r.open[ev.RunID]
	delete(r.open, ev.RunID)
	r.mu.Unlock()
	if !ok {
		// Start was never observed for this run, so there is no record
		// to close.
		r.logger.Warn("run end without matching start",
			zap.String("run_id", ev.RunID),
			zap.String("workflow", ev.Workflow),
		)
		return
	}

	rec.Steps = ev.Steps
	rec.FinishedAt = time.Now().UTC()
	if ev.Err != nil {
		rec.Status = StatusFailed
		rec.Error = ev.Err.Error()
	} else {
		rec.Status = StatusSucceeded
	}

	if err := r.store.UpdateRun(rec); err != nil {
		r.logger.Warn("failed to record run end",
			zap.String("run_id", ev.RunID),
			zap.String("workflow", ev.Workflow),
			zap.Error(err),
		)
	}
}
