package runtime

import (
	"chat-pulse/contract"
	"chat-pulse/domain"
	"sync"
)

type Set map[string]struct{}

// Registry tracks which participants are present in which room and which
// delivery sink, if any, each participant owns. Membership and delivery are
// kept separate: a dashboard session may join without a live sink.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]contract.EventSink // map participant -> Sink
	roomMembers map[domain.RoomID]Set         // map room to users
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]contract.EventSink),
		roomMembers: make(map[domain.RoomID]Set),
	}
}

// GetSinksForRoom resolves the room's member IDs into their active sinks.
// Members without a sink are simply skipped. Returns nil when the room is
// unknown or empty.
func (r *Registry) GetSinksForRoom(roomID domain.RoomID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for participantID := range members {
		if sink, exists := r.sessions[participantID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe records a participant in a room and, when a sink is provided,
// registers it as their delivery channel. The room entry is initialized on
// the fly.
func (r *Registry) Subscribe(participantID string, roomID domain.RoomID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sink != nil {
		r.sessions[participantID] = sink
	}

	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(Set)
	}
	r.roomMembers[roomID][participantID] = struct{}{}
}

// Unsubscribe removes a participant from the registry and their room,
// dropping empty room sets so the map does not grow forever.
func (r *Registry) Unsubscribe(participantID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, participantID)

	if members, ok := r.roomMembers[roomID]; ok {
		delete(members, participantID)

		if len(members) == 0 {
			delete(r.roomMembers, roomID)
		}
	}
}
