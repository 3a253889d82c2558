package emitters

import "context"

// Emitter delivers a run summary to a downstream sink (CI output file,
// report document, webhook, queue).
type Emitter interface {
	ID() string
	Type() string
	Emit(ctx context.Context, evt Event) error
}
