package domain

import (
	"chat-pulse/errors"
)

type RoomID int

// Room groups participants and enforces posting rules.
// Not safe for concurrent use; the orchestrator serializes access.
type Room struct {
	ID              RoomID
	Name            string
	MaxParticipants int
	AdminsOnly      bool
	admins          map[string]struct{}
	members         map[string]struct{}
}

// NewRoom creates a room and auto-joins its creator as admin.
// Group rooms (more than two seats) must carry a name.
func NewRoom(id int, name string, maxParticipants int, adminsOnly bool, creator string) (*Room, error) {
	if maxParticipants < 2 {
		maxParticipants = 2
	}
	r := &Room{
		ID:              RoomID(id),
		Name:            name,
		MaxParticipants: maxParticipants,
		AdminsOnly:      adminsOnly,
		admins:          make(map[string]struct{}),
		members:         make(map[string]struct{}),
	}
	if r.IsGroup() && r.Name == "" {
		return nil, errors.ErrGroupNeedsName
	}
	r.members[creator] = struct{}{}
	r.admins[creator] = struct{}{}
	return r, nil
}

func (r *Room) IsGroup() bool {
	return r.MaxParticipants > 2
}

// Join adds a participant, refusing once all seats are taken.
// Joining twice is a no-op and never fails.
func (r *Room) Join(userID string, admin bool) error {
	if _, ok := r.members[userID]; ok {
		return nil
	}
	if len(r.members) >= r.MaxParticipants {
		return errors.ErrRoomFull
	}
	r.members[userID] = struct{}{}
	if admin {
		r.admins[userID] = struct{}{}
	}
	return nil
}

func (r *Room) Leave(userID string) {
	delete(r.members, userID)
	delete(r.admins, userID)
}

func (r *Room) Members() int {
	return len(r.members)
}

// CanPost enforces the admins-only posting rule.
func (r *Room) CanPost(userID string) error {
	if !r.AdminsOnly {
		return nil
	}
	if _, ok := r.admins[userID]; ok {
		return nil
	}
	return errors.ErrAdminsOnly
}
