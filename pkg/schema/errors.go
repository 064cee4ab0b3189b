package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeCompile       = "COMPILE_ERROR"
	ErrCodeEvaluation    = "EVALUATION_ERROR"
	ErrCodeRuleset       = "RULESET_ERROR"
	ErrCodeScenario      = "SCENARIO_ERROR"
	ErrCodeInvariant     = "INVARIANT_VIOLATED"
	ErrCodeUnknownAction = "UNKNOWN_ACTION"
)

// RulesError is the structured error type for all actionrules operations.
type RulesError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Action  string         `json:"action,omitempty"`
	Cause   error          `json:"-"`
}

func (e *RulesError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("[%s] action %s: %s", e.Code, e.Action, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *RulesError) Unwrap() error {
	return e.Cause
}

// NewError creates a new RulesError.
func NewError(code, message string) *RulesError {
	return &RulesError{Code: code, Message: message}
}

// NewErrorf creates a new RulesError with a formatted message.
func NewErrorf(code, format string, args ...any) *RulesError {
	return &RulesError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithAction attaches an action rule name to the error.
func (e *RulesError) WithAction(action string) *RulesError {
	e.Action = action
	return e
}

// WithCause attaches an underlying cause.
func (e *RulesError) WithCause(err error) *RulesError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *RulesError) WithDetails(details map[string]any) *RulesError {
	e.Details = details
	return e
}

// Invariantf panics with an INVARIANT_VIOLATED error. It marks caller bugs
// (wrong action id, target kind mismatch) that must never be recovered from.
func Invariantf(format string, args ...any) {
	panic(NewErrorf(ErrCodeInvariant, format, args...))
}
