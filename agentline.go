// Package agentline provides a top-level convenience entry point for building
// and running workflows with a single import.
//
// Usage:
//
//	import "github.com/BaSui01/agentline"
//
//	fetch := agentline.NewAgentFunc("fetch", func(s State, c *agentline.Ctx) (State, agentline.Outcome, error) {
//		s.Pages++
//		return s, agentline.Continue(), nil
//	})
//
//	wf, err := agentline.NewWorkflow[State]("pipeline").
//		Register(fetch).
//		Register(report).
//		Then("report").
//		Build()
//
//	final, err := agentline.NewRunner(wf).Run(State{}, agentline.NewCtx())
//
// This is a thin wrapper around the workflow package; both produce identical
// results. Use this package when you prefer the shorter import path.
package agentline

import (
	"github.com/BaSui01/agentline/config"
	"github.com/BaSui01/agentline/workflow"
)

// Core types, re-exported so callers never need to import workflow/.

// Agent is a named unit of work inside a workflow.
type Agent[S any] = workflow.Agent[S]

// AgentFunc adapts a plain function into an [Agent].
type AgentFunc[S any] = workflow.AgentFunc[S]

// Builder assembles a workflow from agents and edges.
type Builder[S any] = workflow.Builder[S]

// Workflow is an immutable, validated agent graph.
type Workflow[S any] = workflow.Workflow[S]

// Runner executes a workflow to completion.
type Runner[S any] = workflow.Runner[S]

// Ctx is the shared scratch space agents read and write during a run.
type Ctx = workflow.Ctx

// Outcome is an agent's routing decision.
type Outcome = workflow.Outcome

// Hooks observes steps and errors during a run.
type Hooks = workflow.Hooks

// StepEvent describes one completed step.
type StepEvent = workflow.StepEvent

// ErrorEvent describes a run's terminal error.
type ErrorEvent = workflow.ErrorEvent

// NewWorkflow starts a workflow definition with the given name. It is the
// entry point of the builder chain; call [Builder.Build] to finish it.
func NewWorkflow[S any](name string) *Builder[S] {
	return workflow.NewBuilder[S](name)
}

// NewAgentFunc wraps a function as a named agent.
func NewAgentFunc[S any](name string, fn func(state S, c *Ctx) (S, Outcome, error)) *AgentFunc[S] {
	return workflow.NewAgentFunc(name, fn)
}

// NewRunner creates a runner for a built workflow.
func NewRunner[S any](wf *Workflow[S]) *Runner[S] {
	return workflow.NewRunner(wf)
}

// NewRunnerFromConfig creates a runner with limits and tracing taken from an
// engine configuration section. Non-positive limits keep the defaults.
func NewRunnerFromConfig[S any](wf *Workflow[S], cfg config.EngineConfig) *Runner[S] {
	r := workflow.NewRunner(wf)
	if cfg.MaxSteps > 0 {
		r.WithMaxSteps(cfg.MaxSteps)
	}
	if cfg.MaxRetries > 0 {
		r.WithMaxRetries(cfg.MaxRetries)
	}
	if cfg.Tracing {
		r.WithTracing()
	}
	return r
}

// Re-export context constructors and outcome builders.

// NewCtx creates an empty context without an LLM client.
var NewCtx = workflow.NewCtx

// NewCtxWith creates a context bound to an LLM client.
var NewCtxWith = workflow.NewCtxWith

// Continue hands control to the next agent along the default edge.
var Continue = workflow.Continue

// Done ends the run successfully.
var Done = workflow.Done

// Next jumps to a named agent.
var Next = workflow.Next

// Retry re-runs the current agent.
var Retry = workflow.Retry

// Wait pauses before re-running the current agent.
var Wait = workflow.Wait

// Fail ends the run with a failure message.
var Fail = workflow.Fail
