package workflow

// Workflow is an immutable, validated graph of agents: a name→agent mapping,
// a start node, and the default edges declared with Then. Built once by a
// Builder; safe to share read-only across concurrent runners. The agents
// themselves are owned by the workflow: a single Runner invokes them one at
// a time, so two runners must not execute the same Workflow value
// concurrently.
type Workflow[S any] struct {
	name        string
	start       string
	agents      map[string]Agent[S]
	defaultNext map[string]string
}

// Name returns the workflow name.
func (w *Workflow[S]) Name() string { return w.name }

// Start returns the start agent name.
func (w *Workflow[S]) Start() string { return w.start }

// Agent looks up a registered agent by name.
func (w *Workflow[S]) Agent(name string) (Agent[S], bool) {
	a, ok := w.agents[name]
	return a, ok
}

// DefaultNext returns the Then edge out of the named agent, if any.
func (w *Workflow[S]) DefaultNext(name string) (string, bool) {
	next, ok := w.defaultNext[name]
	return next, ok
}

// AgentNames returns the registered agent names. Order is unspecified.
func (w *Workflow[S]) AgentNames() []string {
	names := make([]string, 0, len(w.agents))
	for name := range w.agents {
		names = append(names, name)
	}
	return names
}

// Len reports the number of registered agents.
func (w *Workflow[S]) Len() int { return len(w.agents) }
