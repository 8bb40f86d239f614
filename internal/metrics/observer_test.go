package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/agentline/workflow"
)

func TestObserver_RecordsSuccessfulRun(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())
	observer := NewObserver(collector)

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

	_, err = workflow.NewRunner(wf).WithObserver(observer).Run(0, workflow.NewCtxWith(nil))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.runsTotal.WithLabelValues("ingest", "succeeded")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.runsInflight.WithLabelValues("ingest")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.stepsTotal.WithLabelValues("ingest", "fetch", "continue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.stepsTotal.WithLabelValues("ingest", "report", "done")))
}

func TestObserver_RecordsFailedRun(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())
	observer := NewObserver(collector)

	boom := errors.New("boom")
	flaky := workflow.NewAgentFunc("flaky", func(s int, c *workflow.Ctx) (int, workflow.Outcome, error) {
		return s, workflow.Continue(), boom
	})
	wf, err := workflow.NewBuilder[int]("fragile").Register(flaky).Build()
	require.NoError(t, err)

	_, err = workflow.NewRunner(wf).WithObserver(observer).Run(0, workflow.NewCtxWith(nil))
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.runsTotal.WithLabelValues("fragile", "failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.runsInflight.WithLabelValues("fragile")))
}

func TestObserver_OutcomeLabelStripsDetail(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())
	observer := NewObserver(collector)

	attempts := 0
	poll := workflow.NewAgentFunc("poll", func(s int, c *workflow.Ctx) (int, workflow.Outcome, error) {
		attempts++
		if attempts == 1 {
			return s, workflow.Retry("queue is backed up"), nil
		}
		return s, workflow.Done(), nil
	})
	wf, err := workflow.NewBuilder[int]("poller").Register(poll).Build()
	require.NoError(t, err)

	_, err = workflow.NewRunner(wf).WithObserver(observer).Run(0, workflow.NewCtxWith(nil))
	require.NoError(t, err)

	// The retry reason must not become part of the label value.
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.stepsTotal.WithLabelValues("poller", "poll", "retry")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.stepsTotal.WithLabelValues("poller", "poll", "done")))
}
