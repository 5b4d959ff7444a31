package event

import (
	"chat-pulse/domain"
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	RoomID() domain.RoomID
}

// MessageStored is emitted once a message has been persisted.
// It is the event fanned out to connected participants, so that everyone
// observes a single source of truth for identity, order and timestamps.
type MessageStored struct {
	ID      uuid.UUID
	Room    int
	Author  string
	Content string
	At      time.Time
}

func (m MessageStored) RoomID() domain.RoomID {
	return domain.RoomID(m.Room)
}
