package cases

import "errors"

var (
	// ErrNoActiveDraft is returned when a session has no draft to
	// mutate or finalize.
	ErrNoActiveDraft = errors.New("no active draft")

	// ErrCaseNotFound is returned when a case id does not exist in
	// the target collection.
	ErrCaseNotFound = errors.New("case not found")
)

// ValidationError reports malformed command input. It causes no state
// change and is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}

// DraftInProgressError is returned when a session tries to start a new
// draft while one already exists. The existing draft is kept; starting
// over requires /done or /cancel first.
type DraftInProgressError struct {
	Kind Kind
}

func (e *DraftInProgressError) Error() string {
	return "a " + string(e.Kind) + " draft is already in progress"
}
