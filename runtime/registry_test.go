package runtime

import (
	"context"
	"testing"

	"quiz-arena/domain"
	"quiz-arena/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct{}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Subscribe_One_Room_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	roomID := domain.RoomID("ABCDEF")
	sink := Sink{}

	// Given no connection exists and no room exists
	req.Empty(registry.sessions)
	req.Empty(registry.roomMembers)

	// When a connection subscribes a room
	registry.Subscribe(connID, roomID, sink)

	// Then
	req.Len(registry.sessions, 1)
	req.Equal(sink, registry.sessions[connID])

	req.Len(registry.roomMembers, 1)
	req.Contains(registry.roomMembers[roomID], connID)

	req.Len(registry.GetSinksForRoom(roomID), 1)
	req.Contains(registry.GetSinksForRoom(roomID), connID)
}

func TestRegistry_Subscribe_One_Room_Multiple_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID1 := uuid.NewString()
	connID2 := uuid.NewString()
	roomID := domain.RoomID("ABCDEF")

	// When connections subscribe a room
	registry.Subscribe(connID1, roomID, Sink{})
	registry.Subscribe(connID2, roomID, Sink{})

	// Then
	req.Len(registry.sessions, 2)
	req.Len(registry.roomMembers[roomID], 2)
	req.Len(registry.GetSinksForRoom(roomID), 2)
}

func TestRegistry_GetSink_Targeted_Delivery(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	registry.Subscribe(connID, "ABCDEF", Sink{})

	sink, ok := registry.GetSink(connID)
	req.True(ok)
	req.Equal(Sink{}, sink)

	_, ok = registry.GetSink("unknown")
	req.False(ok)
}

func TestRegistry_Unsubscribe_Returns_Affected_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	roomID := domain.RoomID("ABCDEF")

	// Given a subscribed connection
	registry.Subscribe(connID, roomID, Sink{})

	// When the connection unsubscribes
	affected := registry.Unsubscribe(connID)

	// Then no connection is left and the empty room disappeared
	req.Equal([]domain.RoomID{roomID}, affected)
	req.Empty(registry.sessions)
	req.Empty(registry.roomMembers)
	req.Nil(registry.GetSinksForRoom(roomID))
}

func TestRegistry_Unsubscribe_Keeps_Other_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID1 := uuid.NewString()
	connID2 := uuid.NewString()
	roomID := domain.RoomID("ABCDEF")

	registry.Subscribe(connID1, roomID, Sink{})
	registry.Subscribe(connID2, roomID, Sink{})

	affected := registry.Unsubscribe(connID1)

	req.Equal([]domain.RoomID{roomID}, affected)
	req.Len(registry.sessions, 1)
	req.Len(registry.roomMembers[roomID], 1)
	req.Contains(registry.GetSinksForRoom(roomID), connID2)
}

func TestRegistry_Unsubscribe_Unknown_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	req.Nil(registry.Unsubscribe(uuid.NewString()))
}
