package sale

import "fmt"

// ErrorKind classifies a pipeline failure. Kinds map one-to-one onto the
// step that produced them, plus the two boundary conditions that never enter
// the engine (missing context) or cannot be fixed by retrying (validation,
// authentication).
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindAuthentication ErrorKind = "authentication"
	KindCreation       ErrorKind = "creation"
	KindItemization    ErrorKind = "itemization"
	KindInventory      ErrorKind = "inventory"
	KindPayment        ErrorKind = "payment"
	KindMissingContext ErrorKind = "missingContext"
)

// Resumable reports whether re-invoking the run with the same input is
// expected to make forward progress. Gateway-level failures are; user or
// session problems are not.
func (k ErrorKind) Resumable() bool {
	switch k {
	case KindCreation, KindItemization, KindInventory, KindPayment:
		return true
	default:
		return false
	}
}

// Error is a classified step failure surfaced as the run's terminal outcome.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind ErrorKind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: err}
}
