package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/BaSui01/agentline/workflow"
)

// newTestTracer installs an in-memory exporter as the global provider and
// returns a RunTracer bound to it.
func newTestTracer(t *testing.T) (*RunTracer, *tracetest.InMemoryExporter) {
	t.Helper()
	saveAndRestoreGlobalProviders(t)

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return NewRunTracer(), exporter
}

func findSpans(spans tracetest.SpanStubs, name string) []tracetest.SpanStub {
	var out []tracetest.SpanStub
	for _, s := range spans {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

func attrValue(s tracetest.SpanStub, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range s.Attributes {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestRunTracer_SuccessfulRun(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	fetch := workflow.NewAgentFunc("fetch", func(s int, c *workflow.Ctx) (int, workflow.Outcome, error) {
		return s + 1, workflow.Continue(), nil
	})
	report := workflow.NewAgentFunc("report", func(s int, c *workflow.Ctx) (int, workflow.Outcome, error) {
		return s, workflow.Done(), nil
	})
	wf, err := workflow.NewBuilder[int]("ingest").
		Register(fetch).
		Register(report).
		Then("report").
		Build()
	require.NoError(t, err)

	_, err = workflow.NewRunner(wf).WithObserver(tracer).Run(0, workflow.NewCtxWith(nil))
	require.NoError(t, err)

	spans := exporter.GetSpans()
	runSpans := findSpans(spans, "workflow.run")
	stepSpans := findSpans(spans, "workflow.step")
	require.Len(t, runSpans, 1)
	require.Len(t, stepSpans, 2)

	run := runSpans[0]
	assert.Equal(t, codes.Ok, run.Status.Code)
	name, ok := attrValue(run, "workflow.name")
	require.True(t, ok)
	assert.Equal(t, "ingest", name.AsString())
	steps, ok := attrValue(run, "workflow.steps")
	require.True(t, ok)
	assert.Equal(t, int64(2), steps.AsInt64())

	for _, step := range stepSpans {
		assert.Equal(t, run.SpanContext.SpanID(), step.Parent.SpanID(),
			"step spans must be children of the run span")
		assert.Equal(t, run.SpanContext.TraceID(), step.SpanContext.TraceID())
	}
	agent, ok := attrValue(stepSpans[0], "workflow.agent")
	require.True(t, ok)
	assert.Equal(t, "fetch", agent.AsString())
	outcome, ok := attrValue(stepSpans[1], "workflow.outcome")
	require.True(t, ok)
	assert.Equal(t, "done", outcome.AsString())
}

func TestRunTracer_FailedRun(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	boom := errors.New("boom")
	flaky := workflow.NewAgentFunc("flaky", func(s int, c *workflow.Ctx) (int, workflow.Outcome, error) {
		return s, workflow.Continue(), boom
	})
	wf, err := workflow.NewBuilder[int]("fragile").Register(flaky).Build()
	require.NoError(t, err)

	_, err = workflow.NewRunner(wf).WithObserver(tracer).Run(0, workflow.NewCtxWith(nil))
	require.ErrorIs(t, err, boom)

	spans := exporter.GetSpans()
	runSpans := findSpans(spans, "workflow.run")
	require.Len(t, runSpans, 1)

	run := runSpans[0]
	assert.Equal(t, codes.Error, run.Status.Code)
	assert.Contains(t, run.Status.Description, "boom")

	failedAgent, ok := attrValue(run, "workflow.failed_agent")
	require.True(t, ok)
	assert.Equal(t, "flaky", failedAgent.AsString())

	// RecordError attaches an exception event to the run span.
	var sawException bool
	for _, event := range run.Events {
		if event.Name == "exception" {
			sawException = true
		}
	}
	assert.True(t, sawException)
}

func TestRunTracer_StepSpanCoversMeasuredDuration(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	slow := workflow.NewAgentFunc("slow", func(s int, c *workflow.Ctx) (int, workflow.Outcome, error) {
		time.Sleep(15 * time.Millisecond)
		return s, workflow.Done(), nil
	})
	wf, err := workflow.NewBuilder[int]("sleepy").Register(slow).Build()
	require.NoError(t, err)

	_, err = workflow.NewRunner(wf).WithObserver(tracer).Run(0, workflow.NewCtxWith(nil))
	require.NoError(t, err)

	stepSpans := findSpans(exporter.GetSpans(), "workflow.step")
	require.Len(t, stepSpans, 1)
	span := stepSpans[0]
	assert.GreaterOrEqual(t, span.EndTime.Sub(span.StartTime), 15*time.Millisecond)
}

func TestRunTracer_IgnoresUntrackedRuns(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	tracer.OnStep(workflow.StepEvent{RunID: "unknown", Workflow: "ghost", Agent: "a", Step: 1})
	tracer.OnError(workflow.ErrorEvent{RunID: "unknown", Workflow: "ghost", Err: errors.New("x")})
	tracer.OnRunEnd(workflow.RunEvent{RunID: "unknown", Workflow: "ghost"})

	assert.Empty(t, exporter.GetSpans())
}
