package booking

import "fmt"

// Reason codes carried by ValidationError so the client can choose specific
// messaging per failure.
const (
	ReasonAuthRequired   = "auth_required"
	ReasonMissingFields  = "missing_fields"
	ReasonBadDate        = "bad_date"
	ReasonPastDate       = "past_date"
	ReasonClosedDay      = "closed_day"
	ReasonBeyondHorizon  = "beyond_horizon"
	ReasonBadTime        = "bad_time"
	ReasonUnknownService = "unknown_service"
)

// ValidationError reports a caller-input defect. No store interaction was
// attempted.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func NewValidationError(reason, msg string) error {
	return &ValidationError{Reason: reason, Message: msg}
}

// ConflictError reports that the slot was claimed between the availability
// read and the commit. Recoverable: re-fetch availability and pick again.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// TransientError wraps an opaque store fault (connectivity, permissions). The
// committer does not retry; resubmission is up to the user.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
