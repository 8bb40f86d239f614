// =============================================================================
// Package workflow — Agent Workflow Engine
// =============================================================================
// A small state-machine interpreter for composing named agent steps into a
// directed workflow. Agents transform a typed state value and return an
// Outcome that tells the runner what to do next: follow the default edge,
// jump, retry, wait, finish, or fail. Workflows are built with a validating
// builder, executed by a Runner with step and retry ceilings, observed
// through hooks, and fanned out concurrently with the ParallelExecutor.
// =============================================================================
package workflow

import (
	"fmt"
	"time"
)

// OutcomeKind discriminates the control-flow signal carried by an Outcome.
type OutcomeKind string

const (
	// OutcomeContinue follows the workflow's default next edge (set via Then).
	OutcomeContinue OutcomeKind = "continue"
	// OutcomeDone completes the workflow, returning the current state.
	OutcomeDone OutcomeKind = "done"
	// OutcomeNext jumps to a named agent, overriding the default edge.
	OutcomeNext OutcomeKind = "next"
	// OutcomeRetry re-runs the current agent, counted against max retries.
	OutcomeRetry OutcomeKind = "retry"
	// OutcomeWait sleeps for a duration, then re-runs the current agent.
	OutcomeWait OutcomeKind = "wait"
	// OutcomeFail stops the workflow with an error.
	OutcomeFail OutcomeKind = "fail"
)

// RetryHint explains why an agent asked to be retried. The engine does not
// interpret the reason; it surfaces it in events and the retry-exhaustion
// error.
type RetryHint struct {
	Reason string
}

// Outcome is the control-flow signal an agent returns from one step.
// Values are immutable; construct them with the package functions below.
type Outcome struct {
	kind     OutcomeKind
	target   string
	hint     RetryHint
	duration time.Duration
	message  string
}

// Continue follows the default next edge.
func Continue() Outcome {
	return Outcome{kind: OutcomeContinue}
}

// Done completes the workflow successfully.
func Done() Outcome {
	return Outcome{kind: OutcomeDone}
}

// Next jumps to the named agent regardless of the default edge.
func Next(agent string) Outcome {
	return Outcome{kind: OutcomeNext, target: agent}
}

// Retry re-runs the current agent with a human-readable reason.
func Retry(reason string) Outcome {
	return Outcome{kind: OutcomeRetry, hint: RetryHint{Reason: reason}}
}

// Wait sleeps for d, then re-runs the current agent. Waiting does not count
// against the retry budget.
func Wait(d time.Duration) Outcome {
	return Outcome{kind: OutcomeWait, duration: d}
}

// Fail stops the workflow with the given message.
func Fail(message string) Outcome {
	return Outcome{kind: OutcomeFail, message: message}
}

// Kind returns the outcome's discriminant. The zero Outcome reads as
// Continue.
func (o Outcome) Kind() OutcomeKind {
	if o.kind == "" {
		return OutcomeContinue
	}
	return o.kind
}

// Target returns the jump destination of a Next outcome.
func (o Outcome) Target() string { return o.target }

// Hint returns the retry hint of a Retry outcome.
func (o Outcome) Hint() RetryHint { return o.hint }

// Duration returns the sleep duration of a Wait outcome.
func (o Outcome) Duration() time.Duration { return o.duration }

// Message returns the error message of a Fail outcome.
func (o Outcome) Message() string { return o.message }

// String renders the outcome for logs and events.
func (o Outcome) String() string {
	switch o.Kind() {
	case OutcomeNext:
		return fmt.Sprintf("next(%s)", o.target)
	case OutcomeRetry:
		return fmt.Sprintf("retry(%s)", o.hint.Reason)
	case OutcomeWait:
		return fmt.Sprintf("wait(%s)", o.duration)
	case OutcomeFail:
		return fmt.Sprintf("fail(%s)", o.message)
	default:
		return string(o.Kind())
	}
}
