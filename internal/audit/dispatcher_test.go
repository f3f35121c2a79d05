package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("disabled dispatcher should be nil")
	}

	// nil methods are no-ops, not panics.
	d.Emit(context.Background(), Event{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8, DropIfFull: true}, sink)

	for i := 0; i < 3; i++ {
		d.Emit(context.Background(), Event{ID: NewEventID(), EventType: "login"})
	}
	d.Close()

	for i := 0; i < 3; i++ {
		select {
		case event := <-sink.Events():
			if event.EventType != "login" {
				t.Fatalf("event %d type %q", i, event.EventType)
			}
		case <-time.After(time.Second):
			t.Fatalf("event %d never delivered", i)
		}
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	sink := blockingSink{release: block}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the worker, second fills the buffer, the rest
	// must be dropped rather than block the caller.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "refresh"})
	}

	if d.Dropped() == 0 {
		t.Fatal("expected drops with a saturated buffer")
	}

	close(block)
	d.Close()
}

func TestDispatcherCloseFlushes(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16, DropIfFull: false}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{ID: NewEventID(), EventType: "logout", Success: true})
	}
	d.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("flushed %d lines, want 5", len(lines))
	}
	var event Event
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("line not valid JSON: %v", err)
	}
	if event.EventType != "logout" || !event.Success {
		t.Fatalf("decoded event %+v", event)
	}
}

func TestEmitAfterCloseIsNoOp(t *testing.T) {
	sink := NewChannelSink(4)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4, DropIfFull: true}, sink)
	d.Close()

	d.Emit(context.Background(), Event{EventType: "late"})

	select {
	case event := <-sink.Events():
		t.Fatalf("event delivered after close: %+v", event)
	default:
	}
}

type blockingSink struct {
	release <-chan struct{}
}

func (s blockingSink) Emit(_ context.Context, _ Event) {
	<-s.release
}
