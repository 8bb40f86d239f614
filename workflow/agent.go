package workflow

// Agent is a named unit of work. Run takes the current state and the shared
// context and returns the new state plus an Outcome directing the runner.
// Returning an error terminates the workflow immediately; errors are never
// auto-retried, only a deliberate Retry outcome is.
//
// An agent may hold internal mutable state (counters, cached resources).
// A workflow exclusively owns its registered agents; the runner invokes them
// one at a time, so Run never races with itself within a single runner.
type Agent[S any] interface {
	// Name is the unique graph key, stable for the agent's lifetime, used
	// for routing with Next.
	Name() string

	// Run executes one step.
	Run(state S, c *Ctx) (S, Outcome, error)
}

// AgentFunc adapts a function into an Agent for closure-style construction.
type AgentFunc[S any] struct {
	name string
	fn   func(state S, c *Ctx) (S, Outcome, error)
}

// NewAgentFunc wraps fn as an Agent with the given name.
func NewAgentFunc[S any](name string, fn func(state S, c *Ctx) (S, Outcome, error)) *AgentFunc[S] {
	return &AgentFunc[S]{name: name, fn: fn}
}

// Name returns the agent name.
func (a *AgentFunc[S]) Name() string { return a.name }

// Run invokes the wrapped function.
func (a *AgentFunc[S]) Run(state S, c *Ctx) (S, Outcome, error) {
	return a.fn(state, c)
}
