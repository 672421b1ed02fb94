// Package runtime wires rooms, workers, and event propagation together.
// It orchestrates the system without containing game rules.
package runtime

import (
	"sync"

	"quiz-arena/contract"
	"quiz-arena/domain"
)

type set map[string]struct{}

// Registry tracks live connections and their room subscriptions. It is the
// read side of broadcasting: fan-out resolves a room to its active sinks
// here, while roster state stays inside each Session.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]contract.EventSink // connection id -> sink
	roomMembers map[domain.RoomID]set         // room id -> connection ids
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]contract.EventSink),
		roomMembers: make(map[domain.RoomID]set),
	}
}

// GetSinksForRoom resolves all active sinks subscribed to a room, keyed by
// connection id so delivery can exclude a single connection.
// Returns nil for an unknown or empty room.
func (r *Registry) GetSinksForRoom(roomID domain.RoomID) map[string]contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	activeSinks := make(map[string]contract.EventSink, len(members))
	for connID := range members {
		if sink, exists := r.sessions[connID]; exists {
			activeSinks[connID] = sink
		}
	}
	return activeSinks
}

// GetSink resolves a single connection, for targeted delivery.
func (r *Registry) GetSink(connID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sessions[connID]
	return sink, ok
}

// Subscribe registers a connection's sink and assigns it to a room.
// Rooms appear in the registry on first subscription.
func (r *Registry) Subscribe(connID string, roomID domain.RoomID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[connID] = sink

	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(set)
	}
	r.roomMembers[roomID][connID] = struct{}{}
}

// Unsubscribe removes a connection from the registry and from every room it
// was subscribed to, returning those rooms so roster cleanup can follow.
// Empty member sets are removed to avoid leaking rooms over time.
func (r *Registry) Unsubscribe(connID string) []domain.RoomID {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, connID)

	var affected []domain.RoomID
	for roomID, members := range r.roomMembers {
		if _, ok := members[connID]; !ok {
			continue
		}
		delete(members, connID)
		affected = append(affected, roomID)

		if len(members) == 0 {
			delete(r.roomMembers, roomID)
		}
	}
	return affected
}
