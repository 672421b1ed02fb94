package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"quiz-arena/contract"
	"quiz-arena/domain"
	"quiz-arena/domain/event"
	"quiz-arena/errors"
	"quiz-arena/runtime/workers"
)

// Orchestrator is the session registry: it maps room ids to their workers,
// creating them on first use. Rooms are never removed; a session lives for
// the process lifetime. All inbound commands funnel through Dispatch into
// the owning room's mailbox.
type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	supervisor     contract.ISupervisor
	registry       contract.IRegistry
	supplier       contract.Supplier
	rooms          map[domain.RoomID]*workers.RoomWorker
	events         chan event.DomainEvent
	permanentSinks []contract.EventSink
	bufferSize     int
	sinkTimeout    time.Duration
	advanceDelay   time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, supplier contract.Supplier,
	bufferSize int, sinkTimeout, advanceDelay time.Duration) *Orchestrator {
	return &Orchestrator{
		log:          log,
		supervisor:   supervisor,
		registry:     registry,
		supplier:     supplier,
		rooms:        make(map[domain.RoomID]*workers.RoomWorker),
		events:       make(chan event.DomainEvent, bufferSize),
		bufferSize:   bufferSize,
		sinkTimeout:  sinkTimeout,
		advanceDelay: advanceDelay,
	}
}

// Add registers permanent sinks consuming every event (persistence,
// projections). Must be called before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// Start launches the fanout pipeline under supervision and returns. Room
// workers come up later, on the first event naming their room.
func (o *Orchestrator) Start(ctx context.Context) error {
	fanout := workers.NewEventFanout(o.log, o.registry, o.events, o.permanentSinks, o.sinkTimeout)
	o.supervisor.Add(fanout)

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// Dispatch routes a command to its room. Join commands create the room on
// demand; every other command against an unknown room is a stale event and
// is silently dropped.
func (o *Orchestrator) Dispatch(cmd domain.Command) {
	var room *workers.RoomWorker
	switch cmd.(type) {
	case domain.JoinRoomCommand:
		room = o.getOrCreate(cmd.RoomID())
	default:
		var ok bool
		room, ok = o.get(cmd.RoomID())
		if !ok {
			o.log.Debug(fmt.Sprintf("Dropping %T for room %s", cmd, cmd.RoomID()), "error", errors.ErrUnknownRoom)
			return
		}
	}

	select {
	case room.Mailbox() <- cmd:
	default:
		o.log.Warn(fmt.Sprintf("Mailbox full for room %s, dropping command", cmd.RoomID()))
	}
}

// JoinRoom subscribes the connection's sink and enqueues the join. A join
// while the supplier is still loading is refused before any state mutates:
// no subscription, no room, no roster entry, only a notice on the sink.
func (o *Orchestrator) JoinRoom(connID string, roomID domain.RoomID, username string, sink contract.EventSink) {
	if !o.supplier.Ready() {
		o.log.Debug("Join refused", "conn_id", connID, "error", errors.ErrNotReady)
		ctx, cancel := context.WithTimeout(context.Background(), o.sinkTimeout)
		defer cancel()
		notice := event.ErrorNotice{Room: roomID, Target: connID, Text: workers.NoticeCatalogLoading}
		if err := sink.Consume(ctx, notice); err != nil {
			o.log.Debug("Failed to report refused join", "error", err)
		}
		return
	}

	o.registry.Subscribe(connID, roomID, sink)
	o.Dispatch(domain.JoinRoomCommand{Room: roomID, ConnID: connID, Username: username})
}

// Disconnect removes the connection from the registry and from the roster
// of every room it had joined. Cleanup is fire-and-forget: it does not
// re-evaluate rounds waiting on the departed player.
func (o *Orchestrator) Disconnect(connID string) {
	for _, roomID := range o.registry.Unsubscribe(connID) {
		o.Dispatch(domain.LeaveRoomCommand{Room: roomID, ConnID: connID})
	}
	o.emit(event.PlayerLeft{ConnID: connID})
}

// Rooms returns the number of live sessions, for observability.
func (o *Orchestrator) Rooms() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.rooms)
}

// Stop initiates a graceful shutdown of every supervised worker.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}

// getOrCreate resolves a room worker, creating and starting it under
// supervision on first use. Two concurrent calls for the same new room
// yield the same worker: creation happens under the lock.
func (o *Orchestrator) getOrCreate(roomID domain.RoomID) *workers.RoomWorker {
	o.mu.Lock()
	room, ok := o.rooms[roomID]
	if !ok {
		room = workers.NewRoomWorker(
			domain.NewSession(roomID),
			make(chan domain.Command, o.bufferSize),
			o.events,
			o.supplier,
			o.advanceDelay,
			o.log,
		)
		o.rooms[roomID] = room
	}
	o.mu.Unlock()

	if !ok {
		o.supervisor.Add(room)
		o.emit(event.GameStarted{Room: roomID, At: time.Now().UTC()})
	}
	return room
}

func (o *Orchestrator) get(roomID domain.RoomID) (*workers.RoomWorker, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	room, ok := o.rooms[roomID]
	return room, ok
}

func (o *Orchestrator) emit(e event.DomainEvent) {
	select {
	case o.events <- e:
	default:
		o.log.Warn("Event channel full, dropping event")
	}
}
