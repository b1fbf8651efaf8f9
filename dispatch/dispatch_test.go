package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/gatewaykit/gateway"
	"github.com/gatewaykit/gateway/event"
	"github.com/gatewaykit/gateway/opcode"
)

func TestRouter(t *testing.T) {
	ctx := context.Background()

	t.Run("routes by event name", func(t *testing.T) {
		router := NewRouter()

		var got []event.Type
		router.On(event.MessageCreate, func(_ context.Context, p *gateway.Payload) {
			got = append(got, p.EventName)
		})

		payloads := []*gateway.Payload{
			{Op: opcode.Dispatch, Seq: 1, EventName: event.MessageCreate},
			{Op: opcode.Dispatch, Seq: 2, EventName: event.TypingStart},
			{Op: opcode.Dispatch, Seq: 3, EventName: event.MessageCreate},
		}
		for _, p := range payloads {
			if err := router.Observe(ctx, p); err != nil {
				t.Fatal(err)
			}
		}

		if len(got) != 2 {
			t.Fatalf("expected two routed events, got %d", len(got))
		}
	})

	t.Run("control messages are observed but not routed", func(t *testing.T) {
		router := NewRouter()

		called := false
		router.On(event.Ready, func(context.Context, *gateway.Payload) { called = true })

		if err := router.Observe(ctx, &gateway.Payload{Op: opcode.Hello}); err != nil {
			t.Fatal(err)
		}
		if called {
			t.Error("a hello must not reach event handlers")
		}
	})

	t.Run("filter skips redundant events", func(t *testing.T) {
		router := NewRouter()
		router.Filter = func(evt event.Type) bool { return evt == event.Ready }

		called := false
		router.On(event.TypingStart, func(context.Context, *gateway.Payload) { called = true })

		p := &gateway.Payload{Op: opcode.Dispatch, Seq: 1, EventName: event.TypingStart}
		if err := router.Observe(ctx, p); err != nil {
			t.Fatal(err)
		}
		if called {
			t.Error("filtered event reached a handler")
		}
	})
}

type recordingSink struct {
	seen []*gateway.Payload
	err  error
}

func (s *recordingSink) Observe(_ context.Context, p *gateway.Payload) error {
	s.seen = append(s.seen, p)
	return s.err
}

func TestPump(t *testing.T) {
	t.Run("drains in order until close", func(t *testing.T) {
		payloads := make(chan *gateway.Payload, 3)
		for seq := int64(1); seq <= 3; seq++ {
			payloads <- &gateway.Payload{Op: opcode.Dispatch, Seq: seq, EventName: event.TypingStart}
		}
		close(payloads)

		sink := &recordingSink{}
		if err := Pump(context.Background(), payloads, sink); err != nil {
			t.Fatal(err)
		}

		if len(sink.seen) != 3 {
			t.Fatalf("expected three payloads, got %d", len(sink.seen))
		}
		for i, p := range sink.seen {
			if p.Seq != int64(i+1) {
				t.Errorf("payload %d out of order, seq %d", i, p.Seq)
			}
		}
	})

	t.Run("stops on sink error", func(t *testing.T) {
		payloads := make(chan *gateway.Payload, 2)
		payloads <- &gateway.Payload{Op: opcode.Dispatch, Seq: 1, EventName: event.TypingStart}
		payloads <- &gateway.Payload{Op: opcode.Dispatch, Seq: 2, EventName: event.TypingStart}

		boom := errors.New("cache write failed")
		sink := &recordingSink{err: boom}
		if err := Pump(context.Background(), payloads, sink); !errors.Is(err, boom) {
			t.Fatalf("expected the sink error, got %v", err)
		}
		if len(sink.seen) != 1 {
			t.Errorf("pump kept going after the error, saw %d", len(sink.seen))
		}
	})

	t.Run("honors context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		payloads := make(chan *gateway.Payload)
		if err := Pump(ctx, payloads, &recordingSink{}); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context cancellation, got %v", err)
		}
	})
}
