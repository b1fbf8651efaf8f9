// Package dispatch consumes the session's dispatch channel: every inbound
// gateway payload in arrival order, control messages included.
package dispatch

import (
	"context"

	"github.com/gatewaykit/gateway"
	"github.com/gatewaykit/gateway/event"
	"github.com/gatewaykit/gateway/opcode"
)

// Sink observes every inbound payload exactly once, in arrival order. An
// error from Observe stops the pump; the session then stalls on
// backpressure until its dispatch side is cancelled.
type Sink interface {
	Observe(ctx context.Context, payload *gateway.Payload) error
}

type HandlerFunc func(ctx context.Context, payload *gateway.Payload)

// Router is a cache-handler style sink: dispatch events are routed to the
// handlers registered for their event name, other op codes are observed and
// dropped. Filter, when set, skips events outside the session allowlist.
type Router struct {
	Logger gateway.Logger
	Filter func(evt event.Type) bool

	handlers map[event.Type][]HandlerFunc
}

func NewRouter() *Router {
	return &Router{
		handlers: map[event.Type][]HandlerFunc{},
	}
}

func (r *Router) On(evt event.Type, handlers ...HandlerFunc) {
	r.handlers[evt] = append(r.handlers[evt], handlers...)
}

func (r *Router) Observe(ctx context.Context, payload *gateway.Payload) error {
	if payload.Op != opcode.Dispatch {
		return nil
	}
	if r.Filter != nil && !r.Filter(payload.EventName) {
		if r.Logger != nil {
			r.Logger.Debug("skipping redundant event %s", payload.EventName)
		}
		return nil
	}

	for _, handler := range r.handlers[payload.EventName] {
		handler(ctx, payload)
	}
	return nil
}

// Pump drains the session dispatch channel into the sink until the channel
// closes, the sink errors, or ctx is cancelled.
func Pump(ctx context.Context, payloads <-chan *gateway.Payload, sink Sink) error {
	for {
		select {
		case payload, ok := <-payloads:
			if !ok {
				return nil
			}
			if err := sink.Observe(ctx, payload); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
