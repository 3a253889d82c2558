package emitters

import (
	"context"
	"errors"
	"testing"
)

type stubEmitter struct {
	id    string
	typ   string
	err   error
	calls int
}

func (s *stubEmitter) ID() string   { return s.id }
func (s *stubEmitter) Type() string { return s.typ }
func (s *stubEmitter) Emit(context.Context, Event) error {
	s.calls++
	return s.err
}

func TestFanoutEmitAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Emitter{
		&stubEmitter{id: "ok", typ: "log"},
		&stubEmitter{id: "bad", typ: "http", err: errors.New("failed")},
	})

	count, err := fanout.Emit(context.Background(), Event{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	ems, err := BuildAll(context.Background(), reg, []EmitterConfig{
		{ID: "out", Type: TypeCI, CI: &CIEmitterConfig{}},
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPEmitterConfig{URL: "https://example.com"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(ems) != 2 {
		t.Fatalf("expected 2 emitters, got %d", len(ems))
	}
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	reg := DefaultRegistry()
	if _, err := reg.EmitterFor(context.Background(), EmitterConfig{ID: "x", Type: "carrier-pigeon"}, nil); err == nil {
		t.Fatalf("expected error for unknown emitter type")
	}
}
