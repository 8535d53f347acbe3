package llm

import "context"

// Provider is the opaque generation capability: one assembled prompt in, one
// completion out. Implementations wrap their failures so callers can tell a
// generation fault from everything else in the pipeline.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
