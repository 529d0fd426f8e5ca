// Package ai defines the language-model collaborator boundary.
package ai

import "context"

// Generator produces conversational text from a prompt. Implementations
// may block for arbitrary latency and may fail; callers are expected to
// substitute a deterministic fallback on failure rather than surfacing the
// error to the candidate.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
