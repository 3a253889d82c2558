package emitters

import (
	"context"
	"errors"
	"fmt"
)

// Fanout dispatches a run summary to all configured emitters.
type Fanout struct {
	emitters []Emitter
}

// NewFanout builds a dispatcher that fans out events across emitters.
func NewFanout(ems []Emitter) *Fanout {
	cp := make([]Emitter, 0, len(ems))
	for _, e := range ems {
		if e == nil {
			continue
		}
		cp = append(cp, e)
	}
	return &Fanout{emitters: cp}
}

// Emit forwards the event to every registered emitter.
// It returns the number of emitters that successfully handled the event.
func (f *Fanout) Emit(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.emitters) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, e := range f.emitters {
		if err := e.Emit(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s emitter[%s]: %w", e.Type(), e.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active emitters.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.emitters)
}
