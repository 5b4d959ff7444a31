// Package runtime wires rooms, the ingest pipeline and the background
// workers together. It orchestrates the system without containing business
// logic or domain rules.
package runtime

import (
	"chat-pulse/contract"
	"chat-pulse/domain"
	"chat-pulse/errors"
	"chat-pulse/repositories"
	"chat-pulse/runtime/workers"
	"context"
	"log/slog"
	"sync"
	"time"
)

type Orchestrator struct {
	mu              sync.Mutex
	log             *slog.Logger
	rooms           map[domain.RoomID]*domain.Room
	supervisor      contract.ISupervisor
	registry        contract.IRegistry
	commands        chan domain.PostMessageCommand
	repository      repositories.IMessageRepository
	sinkTimeout     time.Duration
	cleanupInterval time.Duration
	healthInterval  time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, repository repositories.IMessageRepository,
	bufferSize int, sinkTimeout, cleanupInterval, healthInterval time.Duration) *Orchestrator {
	return &Orchestrator{
		log:             log,
		rooms:           make(map[domain.RoomID]*domain.Room),
		supervisor:      supervisor,
		registry:        registry,
		commands:        make(chan domain.PostMessageCommand, bufferSize),
		repository:      repository,
		sinkTimeout:     sinkTimeout,
		cleanupInterval: cleanupInterval,
		healthInterval:  healthInterval,
	}
}

// Start registers the background workers and launches the supervisor.
// Returns once the workers are running; they stop when ctx is canceled or
// Stop is called.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.supervisor.Add(
		workers.NewIngestWorker(o.log, o.repository, o.registry, o.commands, o.sinkTimeout),
		workers.NewCleanupWorker(o.log, o.repository, o.cleanupInterval),
		workers.NewHealthWorker(o.log, o.healthInterval),
	)
	go o.supervisor.Run(ctx)
	return nil
}

// Stop closes the command channel so the ingest worker drains what is left
// and terminates cleanly.
func (o *Orchestrator) Stop() {
	close(o.commands)
}

// CreateRoom registers a room, auto-joining its creator as admin.
// Creating a room that already exists returns the existing one.
func (o *Orchestrator) CreateRoom(id int, name string, maxParticipants int,
	adminsOnly bool, creator string) (*domain.Room, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if room, ok := o.rooms[domain.RoomID(id)]; ok {
		o.log.Info("Room already exists", "room_id", id)
		return room, nil
	}
	room, err := domain.NewRoom(id, name, maxParticipants, adminsOnly, creator)
	if err != nil {
		return nil, err
	}
	o.rooms[room.ID] = room
	o.registry.Subscribe(creator, room.ID, nil)
	return room, nil
}

// JoinRoom seats a participant in a room. The sink is optional: transports
// with live delivery pass one, plain REST sessions pass nil.
func (o *Orchestrator) JoinRoom(userID string, roomID domain.RoomID, admin bool, sink contract.EventSink) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	room, ok := o.rooms[roomID]
	if !ok {
		return errors.ErrRoomNotFound
	}
	if err := room.Join(userID, admin); err != nil {
		return err
	}
	o.registry.Subscribe(userID, roomID, sink)
	return nil
}

func (o *Orchestrator) LeaveRoom(userID string, roomID domain.RoomID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if room, ok := o.rooms[roomID]; ok {
		room.Leave(userID)
	}
	o.registry.Unsubscribe(userID, roomID)
}

// PostMessage validates the command against the room's rules and hands it
// to the ingest worker. The message is not echoed back synchronously: the
// stored event reaches every participant through their sink, keeping a
// single source of truth for identity, order and timestamps.
func (o *Orchestrator) PostMessage(ctx context.Context, cmd domain.PostMessageCommand) error {
	// Room membership maps are only touched under o.mu, so the rule check
	// has to happen before the lock is released: Join writes the same maps
	// CanPost reads.
	o.mu.Lock()
	room, ok := o.rooms[cmd.RoomID()]
	if !ok {
		o.mu.Unlock()
		return errors.ErrRoomNotFound
	}
	err := room.CanPost(cmd.Author)
	o.mu.Unlock()
	if err != nil {
		return err
	}

	select {
	case o.commands <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) GetMessages(cmd domain.GetMessageCommand) ([]repositories.DiskMessage, *string, error) {
	return o.repository.GetMessages(cmd.Room, cmd.Cursor)
}
