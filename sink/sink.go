package sink

import (
	"chat-pulse/domain/event"
	"context"
	"log/slog"
)

// ChannelSink buffers events for one connected participant. The transport
// handler owns the channel and drains it into its connection.
type ChannelSink struct {
	Events chan event.DomainEvent
	log    *slog.Logger
}

func NewChannelSink(log *slog.Logger, bufferSize int) *ChannelSink {
	return &ChannelSink{Events: make(chan event.DomainEvent, bufferSize), log: log}
}

// Consume is called by the ingest fanout. The send never blocks: a full
// buffer drops the event for this participant rather than stalling
// delivery to everyone else, and history stays available through the
// store. The context is part of the EventSink contract for sinks that do
// block; it is unused here.
func (s *ChannelSink) Consume(_ context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	default:
		s.log.Debug("sink buffer full, dropping event", "room", e.RoomID())
		return nil
	}
}
