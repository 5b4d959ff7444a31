package rest

import (
	"time"

	"chat-pulse/domain"
	apperrors "chat-pulse/errors"
	"chat-pulse/repositories"
	"chat-pulse/runtime"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

var validate = validator.New()

type MessageHandler struct {
	orchestrator     *runtime.Orchestrator
	maxContentLength int
}

func InitRestMessage(app fiber.Router, orchestrator *runtime.Orchestrator, maxContentLength int) MessageHandler {
	handler := MessageHandler{orchestrator: orchestrator, maxContentLength: maxContentLength}

	app.Post("/message/send", handler.SendMessage)
	app.Get("/message/list", handler.ListMessages)
	app.Post("/room/create", handler.CreateRoom)
	app.Post("/room/join", handler.JoinRoom)

	return handler
}

type sendMessageRequest struct {
	RoomID       int    `json:"room_id" validate:"required"`
	Content      string `json:"content" validate:"required"`
	Disappearing bool   `json:"disappearing"`
}

// SendMessage accepts a message intent. Ingestion is asynchronous: the
// message reaches the store and the room's participants through the ingest
// worker, so the reply only acknowledges the handoff.
func (h MessageHandler) SendMessage(c *fiber.Ctx) error {
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if len(req.Content) > h.maxContentLength {
		return fiber.NewError(fiber.StatusBadRequest, "message content too long")
	}

	author, _ := c.Locals("user_id").(string)
	command := domain.PostMessageCommand{
		Room:         req.RoomID,
		Author:       author,
		Content:      req.Content,
		Disappearing: req.Disappearing,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.orchestrator.PostMessage(c.UserContext(), command); err != nil {
		return apperrors.MapToHTTPError(err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"accepted": true}})
}

type messageResponse struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ListMessages returns a room's history, newest first, with cursor
// pagination delegated to the store.
func (h MessageHandler) ListMessages(c *fiber.Ctx) error {
	room := c.QueryInt("room")
	if room == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "room is required")
	}
	var cursor *string
	if raw := c.Query("cursor"); raw != "" {
		cursor = &raw
	}

	messages, next, err := h.orchestrator.GetMessages(domain.GetMessageCommand{Room: room, Cursor: cursor})
	if err != nil {
		return apperrors.MapToHTTPError(err)
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"messages": lo.Map(messages, func(m repositories.DiskMessage, _ int) messageResponse {
			return messageResponse{
				ID:      m.ID.String(),
				Author:  m.Author,
				Content: m.Content,
				At:      m.At,
			}
		}),
		"cursor": next,
	}})
}

type createRoomRequest struct {
	ID              int    `json:"id" validate:"required"`
	Name            string `json:"name"`
	MaxParticipants int    `json:"max_participants"`
	AdminsOnly      bool   `json:"admins_only"`
}

func (h MessageHandler) CreateRoom(c *fiber.Ctx) error {
	var req createRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	creator, _ := c.Locals("user_id").(string)
	room, err := h.orchestrator.CreateRoom(req.ID, req.Name, req.MaxParticipants, req.AdminsOnly, creator)
	if err != nil {
		return apperrors.MapToHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":   int(room.ID),
		"name": room.Name,
	}})
}

type joinRoomRequest struct {
	RoomID int  `json:"room_id" validate:"required"`
	Admin  bool `json:"admin"`
}

func (h MessageHandler) JoinRoom(c *fiber.Ctx) error {
	var req joinRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	userID, _ := c.Locals("user_id").(string)
	if err := h.orchestrator.JoinRoom(userID, domain.RoomID(req.RoomID), req.Admin, nil); err != nil {
		return apperrors.MapToHTTPError(err)
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"joined": true}})
}
