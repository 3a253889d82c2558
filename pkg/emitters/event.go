package emitters

import (
	"time"

	"github.com/modelwatch-hq/release-scout/internal/domain"
)

// Event is the run outcome payload pushed to every configured sink.
type Event struct {
	App       string            `json:"app"`
	Summary   domain.RunSummary `json:"summary"`
	EmittedAt time.Time         `json:"emitted_at"`
}

// NewEvent wraps a run summary for emission.
func NewEvent(app string, summary domain.RunSummary) Event {
	return Event{
		App:       app,
		Summary:   summary,
		EmittedAt: time.Now().UTC(),
	}
}
