package workflow

import (
	"fmt"
	"strings"

	"github.com/BaSui01/agentline/types"
)

// ValidationError lists every problem found while building a workflow, in
// declaration order. Build wraps it in a types.Error of kind invalid;
// extract it with errors.As to inspect individual violations.
type ValidationError struct {
	Workflow   string
	Violations []string
}

// Error joins the violations into a single message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("workflow %q validation failed: %s", e.Workflow, strings.Join(e.Violations, "; "))
}

// Builder accumulates agents and edges for a workflow, then validates the
// whole graph in Build. Mutating calls never fail mid-chain; every problem
// is collected and reported together by Build.
//
// Chaining rules: the first registered agent becomes the start unless
// StartAt is called. StartAt moves both the start and the Then cursor
// (calling it again overwrites, last write wins). Then adds a default edge
// from the cursor to the named agent and advances the cursor.
type Builder[S any] struct {
	name        string
	start       string
	hasStart    bool
	cursor      string
	hasCursor   bool
	agents      map[string]Agent[S]
	defaultNext map[string]string
	edgeSeq     []string
	duplicates  []string
}

// NewBuilder starts constructing a workflow with the given name.
func NewBuilder[S any](name string) *Builder[S] {
	return &Builder[S]{
		name:        name,
		agents:      make(map[string]Agent[S]),
		defaultNext: make(map[string]string),
	}
}

// Register adds the agent under its own declared name. Registering a name
// twice is recorded as a violation and reported by Build; the later agent
// replaces the earlier one in the meantime.
func (b *Builder[S]) Register(agent Agent[S]) *Builder[S] {
	name := agent.Name()
	if _, exists := b.agents[name]; exists {
		b.duplicates = append(b.duplicates, name)
	}
	b.agents[name] = agent

	if !b.hasStart {
		b.start = name
		b.hasStart = true
	}
	if !b.hasCursor {
		b.cursor = name
		b.hasCursor = true
	}
	return b
}

// StartAt designates the entry agent and resets the Then cursor to it.
// Calling it more than once overwrites the previous start, last write wins.
func (b *Builder[S]) StartAt(name string) *Builder[S] {
	b.start = name
	b.hasStart = true
	b.cursor = name
	b.hasCursor = true
	return b
}

// Then appends a default edge from the cursor to next and advances the
// cursor. With no prior cursor, next becomes the start instead.
// Declaring a second edge from the same source overwrites the first.
func (b *Builder[S]) Then(next string) *Builder[S] {
	if !b.hasCursor {
		return b.StartAt(next)
	}
	if _, seen := b.defaultNext[b.cursor]; !seen {
		b.edgeSeq = append(b.edgeSeq, b.cursor)
	}
	b.defaultNext[b.cursor] = next
	b.cursor = next
	return b
}

// Build validates the accumulated graph and returns the immutable workflow.
// Validation reports every violation found, not just the first: duplicate
// registrations, a missing start, and any start/edge reference that does
// not resolve to a registered agent. The builder must not be reused after a
// successful Build.
func (b *Builder[S]) Build() (*Workflow[S], error) {
	var violations []string
	reportedUnknown := make(map[string]bool)
	unknown := func(name string) {
		if !reportedUnknown[name] {
			reportedUnknown[name] = true
			violations = append(violations, "unknown step: "+name)
		}
	}

	for _, name := range b.duplicates {
		violations = append(violations, "duplicate agent name: "+name)
	}

	if !b.hasStart {
		violations = append(violations, "workflow missing start step")
	} else if _, ok := b.agents[b.start]; !ok {
		unknown(b.start)
	}

	for _, src := range b.edgeSeq {
		if _, ok := b.agents[src]; !ok {
			unknown(src)
		}
		if target := b.defaultNext[src]; target != "" {
			if _, ok := b.agents[target]; !ok {
				unknown(target)
			}
		}
	}

	if len(violations) > 0 {
		verr := &ValidationError{Workflow: b.name, Violations: violations}
		return nil, types.Invalid(verr.Error()).
			WithCode(types.ErrValidationFailed).
			WithCause(verr)
	}

	return &Workflow[S]{
		name:        b.name,
		start:       b.start,
		agents:      b.agents,
		defaultNext: b.defaultNext,
	}, nil
}
