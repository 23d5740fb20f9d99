// Package notify routes user-facing events (upload finished, analysis
// rejected, share created) to whatever sinks the process has registered.
// Components receive a Sink; the daemon owns the Registry.
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Kind classifies an event for presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// Event is a single user-facing notification.
type Event struct {
	Kind    Kind
	Message string
	// Fields carries optional structured context (workspace id, file name).
	Fields map[string]string
}

// Sink receives notifications.
type Sink interface {
	Notify(ctx context.Context, ev Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// LogSink writes events to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink logging at a level matching the event kind.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(_ context.Context, ev Event) {
	fields := make([]zap.Field, 0, len(ev.Fields)+1)
	fields = append(fields, zap.String("kind", string(ev.Kind)))
	for k, v := range ev.Fields {
		fields = append(fields, zap.String(k, v))
	}
	switch ev.Kind {
	case KindError:
		s.logger.Error(ev.Message, fields...)
	case KindWarning:
		s.logger.Warn(ev.Message, fields...)
	default:
		s.logger.Info(ev.Message, fields...)
	}
}

// Registry fans events out to registered sinks. It is itself a Sink.
// Sinks are registered once at start-up; Close drops all of them at shutdown,
// after which Notify is a no-op.
type Registry struct {
	mu     sync.RWMutex
	sinks  map[string]Sink
	order  []string
	closed bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sinks: make(map[string]Sink)}
}

// Register adds a sink under name, replacing any sink with the same name.
// It returns false once the registry is closed.
func (r *Registry) Register(name string, s Sink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	if _, ok := r.sinks[name]; !ok {
		r.order = append(r.order, name)
	}
	r.sinks[name] = s
	return true
}

// Unregister removes the named sink.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sinks[name]; !ok {
		return
	}
	delete(r.sinks, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Notify delivers ev to every registered sink in registration order.
func (r *Registry) Notify(ctx context.Context, ev Event) {
	r.mu.RLock()
	sinks := make([]Sink, 0, len(r.order))
	for _, n := range r.order {
		sinks = append(sinks, r.sinks[n])
	}
	r.mu.RUnlock()

	for _, s := range sinks {
		s.Notify(ctx, ev)
	}
}

// Len returns the number of registered sinks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Close deregisters every sink.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.sinks = make(map[string]Sink)
	r.order = nil
}
