package discovery

import (
	"context"

	"github.com/modelwatch-hq/release-scout/pkg/emitters"
)

// BodyFetcher retrieves the raw text body of a feed or page URL.
type BodyFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// SummaryEmitter delivers the run summary downstream.
type SummaryEmitter interface {
	Emit(ctx context.Context, evt emitters.Event) (int, error)
}
