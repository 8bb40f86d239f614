package workflow

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recordingHooks captures every event for assertions.
type recordingHooks struct {
	steps []StepEvent
	errs  []ErrorEvent
}

func (r *recordingHooks) OnStep(ev StepEvent)   { r.steps = append(r.steps, ev) }
func (r *recordingHooks) OnError(ev ErrorEvent) { r.errs = append(r.errs, ev) }

func TestCompositeHooks_FansOutInOrder(t *testing.T) {
	var order []string
	first := &orderedHooks{name: "first", order: &order}
	second := &orderedHooks{name: "second", order: &order}

	h := NewCompositeHooks(first, second)
	h.OnStep(StepEvent{Step: 1})
	h.OnError(ErrorEvent{Step: 1})

	assert.Equal(t, []string{
		"first:step", "second:step",
		"first:error", "second:error",
	}, order)
}

type orderedHooks struct {
	name  string
	order *[]string
}

func (o *orderedHooks) OnStep(StepEvent)   { *o.order = append(*o.order, o.name+":step") }
func (o *orderedHooks) OnError(ErrorEvent) { *o.order = append(*o.order, o.name+":error") }

func TestNewCompositeHooks_FiltersNil(t *testing.T) {
	rec := &recordingHooks{}

	h := NewCompositeHooks(nil, rec, nil)
	h.OnStep(StepEvent{Step: 7})

	require.Len(t, rec.steps, 1)
	assert.Equal(t, 7, rec.steps[0].Step)
}

func TestNewCompositeHooks_Degenerate(t *testing.T) {
	empty := NewCompositeHooks()
	assert.IsType(t, NoopHooks{}, empty)

	rec := &recordingHooks{}
	single := NewCompositeHooks(rec)
	assert.Same(t, rec, single)
}

func TestTraceHooks_StepLine(t *testing.T) {
	var buf bytes.Buffer
	h := NewTraceHooks(&buf)

	h.OnStep(StepEvent{
		Workflow: "wf",
		Agent:    "fetch",
		Step:     2,
		Retries:  0,
		Outcome:  Continue(),
		Duration: 5 * time.Millisecond,
	})

	assert.Equal(t, "[wf] step 2 agent=fetch outcome=continue retries=0 took=5ms\n", buf.String())
}

func TestTraceHooks_ErrorLine(t *testing.T) {
	var buf bytes.Buffer
	h := NewTraceHooks(&buf)

	h.OnError(ErrorEvent{
		Workflow: "wf",
		Agent:    "fetch",
		Step:     3,
		Err:      errors.New("boom"),
	})

	assert.Equal(t, "[wf] failed after step 3 agent=fetch: boom\n", buf.String())
}

func TestLoggingHooks(t *testing.T) {
	h := NewLoggingHooks(zaptest.NewLogger(t))
	h.OnStep(StepEvent{Workflow: "wf", Agent: "a", Step: 1, Outcome: Done()})
	h.OnError(ErrorEvent{Workflow: "wf", Agent: "a", Step: 1, Err: errors.New("boom")})

	// A nil logger falls back to a no-op.
	NewLoggingHooks(nil).OnStep(StepEvent{})
}

// runAwareHooks additionally records run starts and ends.
type runAwareHooks struct {
	recordingHooks
	starts []RunEvent
	ends   []RunEvent
}

func (r *runAwareHooks) OnRunStart(ev RunEvent) { r.starts = append(r.starts, ev) }
func (r *runAwareHooks) OnRunEnd(ev RunEvent)   { r.ends = append(r.ends, ev) }

func TestRunner_RunEventsOnSuccess(t *testing.T) {
	agent := NewAgentFunc("tick", func(s int, _ *Ctx) (int, Outcome, error) {
		if s < 2 {
			return s + 1, Next("tick"), nil
		}
		return s, Done(), nil
	})

	wf, err := NewBuilder[int]("clock").Register(agent).Build()
	require.NoError(t, err)

	aware := &runAwareHooks{}
	_, err = NewRunner(wf).WithObserver(aware).Run(0, NewCtxWith(nil))
	require.NoError(t, err)

	require.Len(t, aware.starts, 1)
	start := aware.starts[0]
	assert.Equal(t, "clock", start.Workflow)
	assert.NotEmpty(t, start.RunID)
	assert.Zero(t, start.Steps)
	assert.NoError(t, start.Err)
	assert.Zero(t, start.Took)

	require.Len(t, aware.ends, 1)
	end := aware.ends[0]
	assert.Equal(t, start.RunID, end.RunID)
	assert.Equal(t, 3, end.Steps)
	assert.NoError(t, end.Err)
	assert.Greater(t, end.Took, time.Duration(0))
}

func TestRunner_RunEndCarriesTerminalError(t *testing.T) {
	agent := NewAgentFunc("doomed", func(s int, _ *Ctx) (int, Outcome, error) {
		return s, Continue(), errors.New("boom")
	})

	wf, err := NewBuilder[int]("short").Register(agent).Build()
	require.NoError(t, err)

	var order []string
	aware := &runAwareHooks{}
	_, runErr := NewRunner(wf).
		WithObserver(aware).
		OnError(func(ErrorEvent) { order = append(order, "error") }).
		OnRunEnd(func(RunEvent) { order = append(order, "end") }).
		Run(0, NewCtxWith(nil))

	require.Error(t, runErr)
	require.Len(t, aware.ends, 1)
	assert.EqualError(t, aware.ends[0].Err, "boom")
	assert.Zero(t, aware.ends[0].Steps)

	// The error hook fires before the run-end hook.
	assert.Equal(t, []string{"error", "end"}, order)
}

func TestCompositeHooks_RunEventsReachOnlyRunAwareMembers(t *testing.T) {
	plain := &recordingHooks{}
	aware := &runAwareHooks{}

	h := NewCompositeHooks(plain, aware)
	rh, ok := h.(RunHooks)
	require.True(t, ok, "a composite of two hooks stays run-aware")

	rh.OnRunStart(RunEvent{RunID: "r1"})
	rh.OnRunEnd(RunEvent{RunID: "r1", Steps: 4})

	require.Len(t, aware.starts, 1)
	require.Len(t, aware.ends, 1)
	assert.Equal(t, 4, aware.ends[0].Steps)
	assert.Empty(t, plain.steps)
	assert.Empty(t, plain.errs)
}

func TestRunner_WithObserver(t *testing.T) {
	agent := NewAgentFunc("walker", func(s int, _ *Ctx) (int, Outcome, error) {
		if s < 1 {
			return s + 1, Continue(), nil
		}
		return s, Fail("end of the road"), nil
	})

	wf, err := NewBuilder[int]("observed").
		Register(agent).
		StartAt("walker").
		Then("walker").
		Build()
	require.NoError(t, err)

	rec := &recordingHooks{}
	_, runErr := NewRunner(wf).WithObserver(rec).Run(0, NewCtxWith(nil))

	require.Error(t, runErr)
	require.Len(t, rec.steps, 2)
	assert.Equal(t, OutcomeContinue, rec.steps[0].Outcome.Kind())
	assert.Equal(t, OutcomeFail, rec.steps[1].Outcome.Kind())
	require.Len(t, rec.errs, 1)
	assert.Equal(t, 2, rec.errs[0].Step)
	assert.Equal(t, rec.steps[0].RunID, rec.errs[0].RunID)
}
