package workers

import (
	"context"
	"log/slog"
	"time"

	"quiz-arena/contract"
	"quiz-arena/domain/event"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout broadcasts room events to their subscribers and feeds every
// event to the permanent sinks (persistence).
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering across rooms, durability, or retries. EventFanout is not a
// message broker: a slow sink is cut off after sinkTimeout and the event
// is lost for that sink only.
type EventFanout struct {
	log            *slog.Logger
	registry       contract.IRegistry
	events         chan event.DomainEvent
	permanentSinks []contract.EventSink
	sinkTimeout    time.Duration
}

func NewEventFanout(
	log *slog.Logger,
	registry contract.IRegistry,
	events chan event.DomainEvent,
	permanentSinks []contract.EventSink,
	sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:            log,
		registry:       registry,
		events:         events,
		permanentSinks: permanentSinks,
		sinkTimeout:    sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(evt)
		}
	}
}

// Fanout delivers one event. Permanent sinks always consume it; room
// subscribers receive it according to the event's targeting:
// a Target restricts delivery to one connection, an Exclude skips one.
func (w *EventFanout) Fanout(e event.DomainEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), w.sinkTimeout)
	defer cancel()

	for _, sink := range w.permanentSinks {
		w.consume(ctx, sink, e)
	}

	roomID := e.RoomID()
	if roomID == "" {
		return
	}

	if targeted, ok := e.(event.Targeted); ok && targeted.TargetID() != "" {
		if sink, exists := w.registry.GetSink(targeted.TargetID()); exists {
			w.consume(ctx, sink, e)
		}
		return
	}

	exclude := ""
	if excluding, ok := e.(event.Excluding); ok {
		exclude = excluding.ExcludeID()
	}
	for connID, sink := range w.registry.GetSinksForRoom(roomID) {
		if connID == exclude {
			continue
		}
		w.consume(ctx, sink, e)
	}
}

func (w *EventFanout) consume(ctx context.Context, sink contract.EventSink, e event.DomainEvent) {
	if err := sink.Consume(ctx, e); err != nil {
		w.log.Warn("Sink refused event", "error", err)
	}
}
