package emitters

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Builder creates an Emitter from a config entry.
type Builder func(ctx context.Context, cfg EmitterConfig, log Logger) (Emitter, error)

// Registry maps emitter types to builders.
type Registry interface {
	Register(typ string, builder Builder)
	EmitterFor(ctx context.Context, cfg EmitterConfig, log Logger) (Emitter, error)
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{
		builders: make(map[string]Builder),
	}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with an emitter type.
func (r *registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}

	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// EmitterFor returns the emitter built for the provided config.
func (r *registry) EmitterFor(ctx context.Context, cfg EmitterConfig, log Logger) (Emitter, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("emitter %q has no type configured", cfg.ID)
	}

	r.mu.RLock()
	builder := r.builders[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no emitter registered for type %q", cfg.Type)
	}
	return builder(ctx, cfg, log)
}

// DefaultRegistry wires up known emitters.
func DefaultRegistry() Registry {
	builders := map[string]Builder{
		TypeCI:        newCIEmitter,
		TypeReport:    newReportEmitter,
		TypeLog:       newLogEmitter,
		TypeHTTP:      newHTTPEmitter,
		TypeSQS:       newSQSEmitter,
		TypeSNS:       newSNSEmitter,
		TypeGCPPubSub: newGCPPubSubEmitter,
	}
	return NewRegistry(builders)
}

// BuildAll instantiates emitters for configs using the registry.
func BuildAll(ctx context.Context, reg Registry, cfgs []EmitterConfig, log Logger) ([]Emitter, error) {
	if reg == nil || len(cfgs) == 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var out []Emitter
	for _, cfg := range cfgs {
		em, err := reg.EmitterFor(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		out = append(out, em)
	}
	return out, nil
}
