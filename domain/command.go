package domain

import (
	"time"
)

type PostMessageCommand struct {
	Room         int
	Author       string
	Content      string
	Disappearing bool
	CreatedAt    time.Time
}

func (p PostMessageCommand) RoomID() RoomID {
	return RoomID(p.Room)
}

type GetMessageCommand struct {
	Room   int
	Cursor *string
}

func (p GetMessageCommand) RoomID() RoomID {
	return RoomID(p.Room)
}
