package workers

import (
	"chat-pulse/contract"
	"chat-pulse/domain"
	"chat-pulse/domain/event"
	"chat-pulse/repositories"
	"context"
	"log/slog"
	"time"
)

// IngestWorker is the single writer of the message store. It consumes
// validated post commands, stamps and persists each message, then fans the
// stored event out to the room's sinks. Serializing writes here keeps
// message order identical for the store and for every participant.
type IngestWorker struct {
	log         *slog.Logger
	repository  repositories.IMessageRepository
	registry    contract.IRegistry
	commands    <-chan domain.PostMessageCommand
	sinkTimeout time.Duration
}

func NewIngestWorker(log *slog.Logger, repository repositories.IMessageRepository,
	registry contract.IRegistry, commands <-chan domain.PostMessageCommand,
	sinkTimeout time.Duration) *IngestWorker {
	return &IngestWorker{
		log:         log,
		repository:  repository,
		registry:    registry,
		commands:    commands,
		sinkTimeout: sinkTimeout,
	}
}

func (w *IngestWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				return nil
			}
			w.ingest(ctx, cmd)
		}
	}
}

func (w *IngestWorker) ingest(ctx context.Context, cmd domain.PostMessageCommand) {
	message := domain.NewMessage(cmd.Room, cmd.Author, cmd.Content, cmd.Disappearing, cmd.CreatedAt)

	if err := w.repository.StoreMessage(toDiskMessage(message)); err != nil {
		// The command is lost; crashing the worker would lose it too and
		// drop everything queued behind it.
		w.log.Error("failed to store message",
			"room", message.Room,
			"message_id", message.ID,
			"error", err)
		return
	}

	stored := event.MessageStored{
		ID:      message.ID,
		Room:    message.Room,
		Author:  message.Author,
		Content: message.Content,
		At:      message.At,
	}
	for _, sink := range w.registry.GetSinksForRoom(stored.RoomID()) {
		deliveryCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(deliveryCtx, stored); err != nil {
			w.log.Warn("sink delivery failed", "room", stored.Room, "error", err)
		}
		cancel()
	}
}

func toDiskMessage(m domain.Message) repositories.DiskMessage {
	return repositories.DiskMessage{
		ID:           m.ID,
		Room:         m.Room,
		Author:       m.Author,
		Content:      m.Content,
		Disappearing: m.Disappearing,
		ExpiresAt:    m.ExpiresAt,
		At:           m.At,
	}
}
