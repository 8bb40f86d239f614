package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/BaSui01/agentline/workflow"
)

const instrumentationName = "github.com/BaSui01/agentline/workflow"

// RunTracer emits one span per workflow run with a child span per
// completed step. Register it with Runner.WithObserver. Spans go through
// the global TracerProvider, so Init must run before runs start for them
// to be exported.
type RunTracer struct {
	tracer trace.Tracer

	mu   sync.Mutex
	open map[string]runSpan
}

type runSpan struct {
	ctx  context.Context
	span trace.Span
}

var (
	_ workflow.Hooks    = (*RunTracer)(nil)
	_ workflow.RunHooks = (*RunTracer)(nil)
)

// NewRunTracer creates a tracer bound to the current global provider.
func NewRunTracer() *RunTracer {
	return &RunTracer{
		tracer: otel.Tracer(instrumentationName),
		open:   make(map[string]runSpan),
	}
}

func (rt *RunTracer) OnRunStart(ev workflow.RunEvent) {
	ctx, span := rt.tracer.Start(context.Background(), "workflow.run",
		trace.WithAttributes(
			attribute.String("workflow.name", ev.Workflow),
			attribute.String("workflow.run_id", ev.RunID),
		),
	)
	rt.mu.Lock()
	rt.open[ev.RunID] = runSpan{ctx: ctx, span: span}
	rt.mu.Unlock()
}

func (rt *RunTracer) OnStep(ev workflow.StepEvent) {
	rt.mu.Lock()
	parent, ok := rt.open[ev.RunID]
	rt.mu.Unlock()
	if !ok {
		return
	}

	// The step already ran, so its interval is reconstructed from the
	// measured duration.
	end := time.Now()
	_, span := rt.tracer.Start(parent.ctx, "workflow.step",
		trace.WithTimestamp(end.Add(-ev.Duration)),
		trace.WithAttributes(
			attribute.String("workflow.agent", ev.Agent),
			attribute.Int("workflow.step", ev.Step),
			attribute.Int("workflow.retries", ev.Retries),
			attribute.String("workflow.outcome", string(ev.Outcome.Kind())),
		),
	)
	span.End(trace.WithTimestamp(end))
}

func (rt *RunTracer) OnError(ev workflow.ErrorEvent) {
	rt.mu.Lock()
	parent, ok := rt.open[ev.RunID]
	rt.mu.Unlock()
	if !ok {
		return
	}
	parent.span.RecordError(ev.Err)
	parent.span.SetAttributes(
		attribute.String("workflow.failed_agent", ev.Agent),
		attribute.Int("workflow.failed_step", ev.Step),
	)
}

func (rt *RunTracer) OnRunEnd(ev workflow.RunEvent) {
	rt.mu.Lock()
	rs, ok := rt.open[ev.RunID]
	delete(rt.open, ev.RunID)
	rt.mu.Unlock()
	if !ok {
		return
	}

	rs.span.SetAttributes(attribute.Int("workflow.steps", ev.Steps))
	if ev.Err != nil {
		rs.span.SetStatus(codes.Error, ev.Err.Error())
	} else {
		rs.span.SetStatus(codes.Ok, "")
	}
	rs.span.End()
}
