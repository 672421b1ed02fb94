// Package ws is the WebSocket transport adapter: it decodes inbound event
// envelopes into commands and pumps room broadcasts back to each client.
package ws

import (
	"context"

	"quiz-arena/contract"
	"quiz-arena/domain/event"
)

var _ contract.EventSink = (*ConnSink)(nil)

// ConnSink buffers events for one live connection. The fanout worker
// consumes from many rooms; the connection's write pump drains Events and
// serializes frames. A full buffer fails the Consume so the fanout's
// timeout, not the socket, decides when to give up.
type ConnSink struct {
	Events chan event.DomainEvent
}

func NewConnSink(bufferSize int) *ConnSink {
	return &ConnSink{Events: make(chan event.DomainEvent, bufferSize)}
}

func (s *ConnSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
