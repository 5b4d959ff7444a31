// Package domain contains core concepts of the chat system.
// This file defines Message and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DisappearAfter is how long a disappearing message stays readable.
const DisappearAfter = 1 * time.Hour

// Message represents an immutable chat event.
type Message struct {
	ID           uuid.UUID
	Room         int
	Author       string
	Content      string
	Disappearing bool
	ExpiresAt    *time.Time
	At           time.Time
}

// NewMessage stamps a fresh message with its identity and timestamps.
// Disappearing messages get an expiry one hour after creation.
func NewMessage(room int, author, content string, disappearing bool, at time.Time) Message {
	m := Message{
		ID:           uuid.New(),
		Room:         room,
		Author:       author,
		Content:      content,
		Disappearing: disappearing,
		At:           at.UTC(),
	}
	if disappearing {
		expiresAt := m.At.Add(DisappearAfter)
		m.ExpiresAt = &expiresAt
	}
	return m
}

// Expired reports whether the message should no longer be readable.
func (m Message) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && !now.Before(*m.ExpiresAt)
}
