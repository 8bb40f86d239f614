package types

import (
	"errors"
	"fmt"
)

// Kind classifies a step error by what the caller can do about it.
type Kind string

const (
	// KindInvalid is a caller or configuration mistake. Retrying will not help.
	KindInvalid Kind = "invalid"
	// KindTransient is a network or rate-limit style failure. Retrying may help.
	KindTransient Kind = "transient"
	// KindFailed is an agent's deliberate terminal decision.
	KindFailed Kind = "failed"
	// KindOther is an uncategorized I/O or system error.
	KindOther Kind = "other"
)

// ErrorCode identifies a failure independent of its wording.
type ErrorCode string

// Engine error codes
const (
	ErrValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrDuplicateAgent     ErrorCode = "DUPLICATE_AGENT"
	ErrUnknownAgent       ErrorCode = "UNKNOWN_AGENT"
	ErrStepLimitExceeded  ErrorCode = "STEP_LIMIT_EXCEEDED"
	ErrRetryLimitExceeded ErrorCode = "RETRY_LIMIT_EXCEEDED"
	ErrAgentFailed        ErrorCode = "AGENT_FAILED"
)

// LLM error codes
const (
	ErrLLMRequestFailed ErrorCode = "LLM_REQUEST_FAILED"
	ErrLLMParseFailed   ErrorCode = "LLM_PARSE_FAILED"
	ErrLLMEmptyResponse ErrorCode = "LLM_EMPTY_RESPONSE"
)

// Tool error codes
const (
	ErrToolFailed ErrorCode = "TOOL_FAILED"
)

// Error is the structured error used by agents, the runner, and the
// collaborator packages. Kind drives both the rendered message and retry
// decisions; Code is a stable machine-readable identity.
type Error struct {
	Kind    Kind      `json:"kind"`
	Code    ErrorCode `json:"code,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface. KindOther renders the bare message;
// every other kind is prefixed with its kind name.
func (e *Error) Error() string {
	if e.Kind == KindOther {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether retrying the operation might succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransient
}

// WithCode sets the error code.
func (e *Error) WithCode(code ErrorCode) *Error {
	e.Code = code
	return e
}

// WithCause attaches the underlying cause.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// Invalid creates a KindInvalid error.
func Invalid(msg string) *Error {
	return &Error{Kind: KindInvalid, Message: msg}
}

// Invalidf creates a KindInvalid error from a format string.
func Invalidf(format string, args ...any) *Error {
	return Invalid(fmt.Sprintf(format, args...))
}

// Transient creates a KindTransient error.
func Transient(msg string) *Error {
	return &Error{Kind: KindTransient, Message: msg}
}

// Transientf creates a KindTransient error from a format string.
func Transientf(format string, args ...any) *Error {
	return Transient(fmt.Sprintf(format, args...))
}

// Failed creates a KindFailed error.
func Failed(msg string) *Error {
	return &Error{Kind: KindFailed, Message: msg}
}

// Failedf creates a KindFailed error from a format string.
func Failedf(format string, args ...any) *Error {
	return Failed(fmt.Sprintf(format, args...))
}

// Other creates a KindOther error.
func Other(msg string) *Error {
	return &Error{Kind: KindOther, Message: msg}
}

// Otherf creates a KindOther error from a format string.
func Otherf(format string, args ...any) *Error {
	return Other(fmt.Sprintf(format, args...))
}

// WrapTransient wraps err as a KindTransient error with a message prefix.
// The cause stays reachable through errors.Is and errors.As.
func WrapTransient(msg string, err error) *Error {
	return Transientf("%s: %v", msg, err).WithCause(err)
}

// WrapFailed wraps err as a KindFailed error with a message prefix.
func WrapFailed(msg string, err error) *Error {
	return Failedf("%s: %v", msg, err).WithCause(err)
}

// WrapOther wraps err as a KindOther error with a message prefix.
func WrapOther(msg string, err error) *Error {
	return Otherf("%s: %v", msg, err).WithCause(err)
}

// KindOf extracts the kind from an error chain. Errors that do not carry a
// *Error anywhere in the chain report KindOther.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

// CodeOf extracts the error code from an error chain, or "" if absent.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsTransient reports whether the error chain carries a transient error.
func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}

// IsInvalid reports whether the error chain carries an invalid error.
func IsInvalid(err error) bool {
	return KindOf(err) == KindInvalid
}

// IsFailed reports whether the error chain carries a deliberate failure.
func IsFailed(err error) bool {
	return KindOf(err) == KindFailed
}

// Retryable reports whether an arbitrary error is worth retrying.
func Retryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable()
	}
	return false
}
