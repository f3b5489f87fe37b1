// Package http exposes the chat core over Fiber: REST endpoints for the
// synchronous operations and a WebSocket for real-time delivery. Caller
// identity arrives pre-authenticated in the X-User-ID header, supplied by the
// authentication collaborator and trusted as-is.
package http

import (
	"chat-core/domain"
	"chat-core/errors"
	"chat-core/infrastructure/storage"
	"chat-core/services"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const identityHeader = "X-User-ID"

type ChatHandler struct {
	log                  *slog.Logger
	chatService          services.IChatService
	users                *storage.UserRepository
	connectionBufferSize int
	deliveryTimeout      time.Duration
}

func NewChatHandler(
	log *slog.Logger,
	chatService services.IChatService,
	users *storage.UserRepository,
	connectionBufferSize int,
	deliveryTimeout time.Duration,
) *ChatHandler {
	return &ChatHandler{
		log:                  log,
		chatService:          chatService,
		users:                users,
		connectionBufferSize: connectionBufferSize,
		deliveryTimeout:      deliveryTimeout,
	}
}

func (h *ChatHandler) Register(app *fiber.App) {
	app.Post("/users", h.registerUser)

	authed := app.Group("", h.requireIdentity)
	authed.Post("/messages", h.sendMessage)
	authed.Post("/rooms", h.createRoom)
	authed.Post("/rooms/:roomID/read", h.readMessages)
	authed.Get("/rooms/:roomID/messages", h.history)
	authed.Get("/rooms/:roomID/search", h.search)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID := c.Get(identityHeader)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing "+identityHeader)
		}
		c.Locals("userID", userID)
		c.Locals("rooms", c.Query("rooms"))
		return c.Next()
	})
	app.Get("/ws", websocket.New(h.connect))
}

// requireIdentity trusts the upstream authentication collaborator: the header
// is an opaque authenticated user id, never re-validated here.
func (h *ChatHandler) requireIdentity(c *fiber.Ctx) error {
	if c.Get(identityHeader) == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing "+identityHeader)
	}
	return c.Next()
}

type registerUserRequest struct {
	ID    string `json:"id"`
	Alias string `json:"alias"`
}

// registerUser lets the external user-management collaborator seed the
// directory the core consults for participant existence.
func (h *ChatHandler) registerUser(c *fiber.Ctx) error {
	var req registerUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.ID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "id is required")
	}
	if err := h.users.Register(storage.User{ID: req.ID, Alias: req.Alias}); err != nil {
		return h.mapError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

type sendMessageRequest struct {
	RequestID   string `json:"request_id"`
	RecipientID string `json:"recipient_id,omitempty"`
	RoomID      string `json:"room_id,omitempty"`
	Content     string `json:"content"`
	Anonymous   bool   `json:"anonymous"`
}

func (h *ChatHandler) sendMessage(c *fiber.Ctx) error {
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	payload, err := h.chatService.Send(c.Context(), domain.SendMessageCommand{
		RequestID:   req.RequestID,
		SenderID:    c.Get(identityHeader),
		RecipientID: req.RecipientID,
		RoomID:      domain.RoomID(req.RoomID),
		Content:     req.Content,
		Anonymous:   req.Anonymous,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payload)
}

type createRoomRequest struct {
	Participants []string `json:"participants"`
}

func (h *ChatHandler) createRoom(c *fiber.Ctx) error {
	var req createRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	room, err := h.chatService.CreateGroupRoom(c.Context(), domain.CreateGroupRoomCommand{
		CreatorID:    c.Get(identityHeader),
		Participants: req.Participants,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

type readMessagesRequest struct {
	MessageIDs []string `json:"message_ids"`
}

func (h *ChatHandler) readMessages(c *fiber.Ctx) error {
	var req readMessagesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	receipt, err := h.chatService.ReadMessages(c.Context(), domain.ReadMessagesCommand{
		ReaderID:   c.Get(identityHeader),
		RoomID:     domain.RoomID(c.Params("roomID")),
		MessageIDs: req.MessageIDs,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(receipt)
}

func (h *ChatHandler) history(c *fiber.Ctx) error {
	var cursor *string
	if raw := c.Query("cursor"); raw != "" {
		cursor = &raw
	}

	views, next, err := h.chatService.History(c.Context(), domain.HistoryCommand{
		CallerID: c.Get(identityHeader),
		RoomID:   domain.RoomID(c.Params("roomID")),
		Cursor:   cursor,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"messages": views, "cursor": next})
}

func (h *ChatHandler) search(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "0"))

	hits, total, err := h.chatService.Search(c.Context(), domain.SearchCommand{
		CallerID: c.Get(identityHeader),
		RoomID:   domain.RoomID(c.Params("roomID")),
		Terms:    c.Query("q"),
		Page:     page,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"hits": hits, "total": total})
}

func (h *ChatHandler) mapError(c *fiber.Ctx, err error) error {
	return c.Status(errors.MapToHTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
}

func parseRooms(raw string) []domain.RoomID {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	rooms := make([]domain.RoomID, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			rooms = append(rooms, domain.RoomID(trimmed))
		}
	}
	return rooms
}
