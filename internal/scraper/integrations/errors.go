package integrations

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a brand lookup matches no registered adapter.
	ErrNotFound = errors.New("integration not found for brand")
	// ErrInvalidRegistration reports a malformed adapter table.
	ErrInvalidRegistration = errors.New("invalid integration registration")
	// ErrMissingCredentials selects the generated-data branch of a direct-API fetch.
	ErrMissingCredentials = errors.New("missing api credentials")
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// Transient reports whether the status is worth retrying (5xx, 429).
func (e *StatusError) Transient() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// PanicError wraps a panic recovered inside an adapter run.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "panic: %v\n%s", e.Value, e.Stack)
		return
	}
	fmt.Fprint(s, e.Error())
}
