package emitters

import "context"

// logEmitter surfaces the run summary through the structured logger. It is
// the cheapest sink and is kept on in every deployment.
type logEmitter struct {
	id  string
	typ string
	log Logger
}

func newLogEmitter(_ context.Context, cfg EmitterConfig, log Logger) (Emitter, error) {
	return &logEmitter{id: cfg.ID, typ: TypeLog, log: ensureLogger(log)}, nil
}

func (l *logEmitter) ID() string   { return l.id }
func (l *logEmitter) Type() string { return l.typ }

func (l *logEmitter) Emit(_ context.Context, evt Event) error {
	if !evt.Summary.Found {
		l.log.InfoObj("discovery run found no new releases", "run_summary", evt.Summary)
		return nil
	}
	l.log.InfoObj("discovery run found new releases", "run_summary", evt.Summary)
	return nil
}
