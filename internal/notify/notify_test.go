package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Notify(_ context.Context, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestRegistry_FanOut(t *testing.T) {
	r := NewRegistry()
	a, b := &recordingSink{}, &recordingSink{}
	require.True(t, r.Register("a", a))
	require.True(t, r.Register("b", b))

	r.Notify(context.Background(), Event{Kind: KindSuccess, Message: "uploaded"})

	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
	assert.Equal(t, "uploaded", a.events[0].Message)
}

func TestRegistry_ReplaceAndUnregister(t *testing.T) {
	r := NewRegistry()
	old, repl := &recordingSink{}, &recordingSink{}
	r.Register("toast", old)
	r.Register("toast", repl)
	assert.Equal(t, 1, r.Len())

	r.Notify(context.Background(), Event{Kind: KindInfo, Message: "x"})
	assert.Equal(t, 0, old.count())
	assert.Equal(t, 1, repl.count())

	r.Unregister("toast")
	r.Unregister("missing")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry()
	s := &recordingSink{}
	r.Register("s", s)

	r.Close()
	r.Notify(context.Background(), Event{Kind: KindError, Message: "dropped"})

	assert.Equal(t, 0, s.count())
	assert.False(t, r.Register("late", s))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ConcurrentNotify(t *testing.T) {
	r := NewRegistry()
	s := &recordingSink{}
	r.Register("s", s)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Notify(context.Background(), Event{Kind: KindInfo, Message: "tick"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.count())
}

func TestLogSink_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewLogSink(zap.New(core))

	sink.Notify(context.Background(), Event{Kind: KindError, Message: "analysis failed", Fields: map[string]string{"file": "a.xlsx"}})
	sink.Notify(context.Background(), Event{Kind: KindWarning, Message: "share expires soon"})
	sink.Notify(context.Background(), Event{Kind: KindSuccess, Message: "uploaded"})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "a.xlsx", entries[0].ContextMap()["file"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[2].Level)
}

func TestNop(t *testing.T) {
	var s Sink = Nop{}
	s.Notify(context.Background(), Event{Kind: KindInfo})
}
