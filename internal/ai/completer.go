// internal/ai/completer.go
package ai

import (
	"context"
	"fmt"
)

// Options tune a single completion call.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Completer is the text-completion collaborator contract. The returned string
// is untrusted model output; callers must run it through the decode helpers
// and discard on any mismatch. Failures here may never become hard failures
// of the features that use them.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// ExternalServiceError wraps any provider failure. RateLimited lets callers
// back off before issuing further calls.
type ExternalServiceError struct {
	Provider    string
	RateLimited bool
	Err         error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
