package rest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"chat-pulse/domain"
	"chat-pulse/domain/event"
	apperrors "chat-pulse/errors"
	"chat-pulse/runtime"
	"chat-pulse/sink"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type StreamHandler struct {
	orchestrator *runtime.Orchestrator
	log          *slog.Logger
	bufferSize   int
	keepAlive    time.Duration
}

func InitRestStream(app fiber.Router, orchestrator *runtime.Orchestrator,
	log *slog.Logger, bufferSize int, keepAlive time.Duration) StreamHandler {
	handler := StreamHandler{
		orchestrator: orchestrator,
		log:          log,
		bufferSize:   bufferSize,
		keepAlive:    keepAlive,
	}

	app.Get("/message/stream", handler.StreamMessages)

	return handler
}

// streamMessage is the wire shape of one server-sent event.
type streamMessage struct {
	ID      string    `json:"id"`
	Room    int       `json:"room"`
	Author  string    `json:"author"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// StreamMessages joins the caller to a room with a live sink and delivers
// stored messages over server-sent events until the client disconnects.
// This is the delivery half of the ingest fanout; history stays available
// through /message/list for anything missed while disconnected.
func (h StreamHandler) StreamMessages(c *fiber.Ctx) error {
	room := c.QueryInt("room")
	if room == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "room is required")
	}
	userID, _ := c.Locals("user_id").(string)

	memberSink := sink.NewChannelSink(h.log, h.bufferSize)
	if err := h.orchestrator.JoinRoom(userID, domain.RoomID(room), false, memberSink); err != nil {
		return apperrors.MapToHTTPError(err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	done := c.Context().Done()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.orchestrator.LeaveRoom(userID, domain.RoomID(room))
		h.streamEvents(w, memberSink.Events, done)
	}))
	return nil
}

// streamEvents drains the sink into the response, one SSE data line per
// stored message, with comment lines as keep-alives so idle connections
// are not reaped by intermediaries. A failed flush means the client is
// gone and ends the stream.
func (h StreamHandler) streamEvents(w *bufio.Writer, events <-chan event.DomainEvent, done <-chan struct{}) {
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case e := <-events:
			stored, ok := e.(event.MessageStored)
			if !ok {
				continue
			}
			payload, err := json.Marshal(streamMessage{
				ID:      stored.ID.String(),
				Room:    stored.Room,
				Author:  stored.Author,
				Content: stored.Content,
				At:      stored.At,
			})
			if err != nil {
				h.log.Error("failed to encode stream event", "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			if err := w.Flush(); err != nil {
				return
			}
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			if err := w.Flush(); err != nil {
				return
			}
		}
	}
}
