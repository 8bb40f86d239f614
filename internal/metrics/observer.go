package metrics

import (
	"github.com/BaSui01/agentline/workflow"
)

// Observer feeds runner events into a Collector. Register it with
// Runner.WithObserver; one Observer may serve any number of runners.
type Observer struct {
	collector *Collector
}

var (
	_ workflow.Hooks    = (*Observer)(nil)
	_ workflow.RunHooks = (*Observer)(nil)
)

// NewObserver creates an observer recording into collector.
func NewObserver(collector *Collector) *Observer {
	return &Observer{collector: collector}
}

func (o *Observer) OnRunStart(ev workflow.RunEvent) {
	o.collector.RecordRunStart(ev.Workflow)
}

func (o *Observer) OnRunEnd(ev workflow.RunEvent) {
	status := "succeeded"
	if ev.Err != nil {
		status = "failed"
	}
	o.collector.RecordRunEnd(ev.Workflow, status, ev.Took)
}

func (o *Observer) OnStep(ev workflow.StepEvent) {
	// The outcome kind alone keeps label cardinality flat; reasons and
	// jump targets stay out of metrics.
	o.collector.RecordStep(ev.Workflow, ev.Agent, string(ev.Outcome.Kind()), ev.Duration)
}

// OnError is satisfied for the Hooks interface; failures are counted by
// OnRunEnd through the run status label.
func (o *Observer) OnError(ev workflow.ErrorEvent) {}
