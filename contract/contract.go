//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"quiz-arena/domain"
	"quiz-arena/domain/event"
)

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	// Add registers workers. Once the supervisor runs, added workers are
	// started immediately; that is how room workers come up on demand.
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision purposes, avoiding manual naming in the
// Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	GetSinksForRoom(roomID domain.RoomID) map[string]EventSink
	GetSink(connID string) (EventSink, bool)
	Subscribe(connID string, roomID domain.RoomID, sink EventSink)
	// Unsubscribe drops the connection everywhere and returns the rooms it
	// was subscribed to, so disconnect cleanup can reach each roster.
	Unsubscribe(connID string) []domain.RoomID
}

// Supplier is the question supplier consumed by room workers.
type Supplier interface {
	Ready() bool
	Draw() (domain.Question, error)
}

type IOrchestrator interface {
	Dispatch(cmd domain.Command)
	JoinRoom(connID string, roomID domain.RoomID, username string, sink EventSink)
	Disconnect(connID string)
	Start(ctx context.Context) error
	Stop()
}
