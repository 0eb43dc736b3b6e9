package models

import (
	"errors"
	"fmt"
)

// ErrInvalidSignature rejects a webhook before its body is ever parsed.
var ErrInvalidSignature = errors.New("invalid signature")

// ValidationError reports a payload constraint violation. It is a client
// fault (422), carrying the offending field and a stable reason string.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

// InsertOutcome classifies the result of an insert attempt. Both outcomes
// are successes from the caller's perspective; only logging and metrics differ.
type InsertOutcome string

const (
	OutcomeCreated   InsertOutcome = "created"
	OutcomeDuplicate InsertOutcome = "duplicate"
)
