// Package interview implements the interview state machine, answer
// evaluation, and report aggregation.
package interview

import "errors"

var (
	// ErrNotFound indicates an operation referenced an unknown or
	// already-ended session.
	ErrNotFound = errors.New("interview session not found")

	// ErrCompleted indicates an advance on a session whose interview has
	// already reached the completed phase.
	ErrCompleted = errors.New("interview already completed")

	// ErrMalformedInput indicates an inbound payload is missing a
	// required field.
	ErrMalformedInput = errors.New("malformed interview input")
)

// FallbackErrorMessage is shown to the candidate when an internal error
// interrupts a turn. The conversation continues; nothing is lost.
const FallbackErrorMessage = "I apologize, but I encountered an error processing your response. Could you please try again?"
