package http

import (
	"bytes"
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/infrastructure/storage"
	"chat-core/internal/database"
	"chat-core/moderation"
	"chat-core/services"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// syncSessions replaces the running orchestrator: message events feed the
// index inline, everything else is dropped.
type syncSessions struct {
	index storage.IIndexRepository
}

func (s syncSessions) Publish(e event.DomainEvent) {
	if payload, ok := e.(event.ChatMessagePayload); ok {
		_ = s.index.Index(payload.Message)
	}
}

func (syncSessions) Subscribe(string, domain.Channel, contract.EventSink) {}

func (syncSessions) DropConnection(string) {}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	req := require.New(t)

	_, log, db, writer, err := database.Setup()
	req.NoError(err)
	t.Cleanup(func() { database.Cleanup(db, writer) })

	moderator, err := moderation.NewModerator([]string{"badger"}, '*')
	req.NoError(err)

	rooms := storage.NewRoomRepository(db, log)
	messages := storage.NewMessageRepository(db, log, nil)
	index := storage.NewIndexRepository(writer, log, 8, 10)
	users := storage.NewUserRepository(db)

	service := services.NewChatService(log, rooms, messages, index, users, &moderator, syncSessions{index: index}, 512)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	NewChatHandler(log, service, users, 16, time.Second).Register(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, userID string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	request := httptest.NewRequest(method, target, &buf)
	request.Header.Set("Content-Type", "application/json")
	if userID != "" {
		request.Header.Set(identityHeader, userID)
	}
	response, err := app.Test(request, -1)
	require.NoError(t, err)
	return response
}

func registerUsers(t *testing.T, app *fiber.App, ids ...string) {
	t.Helper()
	for _, id := range ids {
		response := doJSON(t, app, fiber.MethodPost, "/users", "", fiber.Map{"id": id})
		require.Equal(t, fiber.StatusCreated, response.StatusCode)
	}
}

func TestChatHandler_RegisterUser(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)

	response := doJSON(t, app, fiber.MethodPost, "/users", "", fiber.Map{"id": "alice"})
	req.Equal(fiber.StatusCreated, response.StatusCode)

	// Duplicate registration conflicts
	response = doJSON(t, app, fiber.MethodPost, "/users", "", fiber.Map{"id": "alice"})
	req.Equal(fiber.StatusConflict, response.StatusCode)

	// Missing id is rejected outright
	response = doJSON(t, app, fiber.MethodPost, "/users", "", fiber.Map{"alias": "Ghost"})
	req.Equal(fiber.StatusBadRequest, response.StatusCode)
}

func TestChatHandler_SendMessageRequiresIdentity(t *testing.T) {
	app := newTestApp(t)

	response := doJSON(t, app, fiber.MethodPost, "/messages", "", fiber.Map{
		"request_id":   "req-1",
		"recipient_id": "bob",
		"content":      "hello",
	})
	require.Equal(t, fiber.StatusUnauthorized, response.StatusCode)
}

func TestChatHandler_SendAndHistoryRoundTrip(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	registerUsers(t, app, "alice", "bob")

	response := doJSON(t, app, fiber.MethodPost, "/messages", "alice", fiber.Map{
		"request_id":   "req-1",
		"recipient_id": "bob",
		"content":      "hello bob",
	})
	req.Equal(fiber.StatusCreated, response.StatusCode)

	var payload event.ChatMessagePayload
	req.NoError(json.NewDecoder(response.Body).Decode(&payload))
	req.Equal("req-1", payload.RequestID)
	req.NotEmpty(payload.RoomID)
	req.Equal("hello bob", payload.Message.Content)

	response = doJSON(t, app, fiber.MethodGet, "/rooms/"+string(payload.RoomID)+"/messages", "bob", nil)
	req.Equal(fiber.StatusOK, response.StatusCode)

	var page struct {
		Messages []domain.MessageView `json:"messages"`
		Cursor   *string              `json:"cursor"`
	}
	req.NoError(json.NewDecoder(response.Body).Decode(&page))
	req.Len(page.Messages, 1)
	req.Equal("hello bob", page.Messages[0].Content)
}

func TestChatHandler_SendToUnknownRecipient(t *testing.T) {
	app := newTestApp(t)
	registerUsers(t, app, "alice")

	response := doJSON(t, app, fiber.MethodPost, "/messages", "alice", fiber.Map{
		"request_id":   "req-1",
		"recipient_id": "ghost",
		"content":      "anyone",
	})
	require.Equal(t, fiber.StatusNotFound, response.StatusCode)
}

func TestChatHandler_GroupRoomAndForbiddenOutsider(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	registerUsers(t, app, "alice", "bob", "mallory")

	response := doJSON(t, app, fiber.MethodPost, "/rooms", "alice", fiber.Map{
		"participants": []string{"bob"},
	})
	req.Equal(fiber.StatusCreated, response.StatusCode)

	var room domain.Room
	req.NoError(json.NewDecoder(response.Body).Decode(&room))
	req.Equal(domain.RoomGroup, room.Type)

	// An outsider cannot post into the group
	response = doJSON(t, app, fiber.MethodPost, "/messages", "mallory", fiber.Map{
		"request_id": "req-1",
		"room_id":    string(room.ID),
		"content":    "let me in",
	})
	req.Equal(fiber.StatusForbidden, response.StatusCode)
}

func TestChatHandler_ReadMessages(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	registerUsers(t, app, "alice", "bob")

	response := doJSON(t, app, fiber.MethodPost, "/messages", "alice", fiber.Map{
		"request_id":   "req-1",
		"recipient_id": "bob",
		"content":      "read me",
	})
	req.Equal(fiber.StatusCreated, response.StatusCode)
	var payload event.ChatMessagePayload
	req.NoError(json.NewDecoder(response.Body).Decode(&payload))

	response = doJSON(t, app, fiber.MethodPost, "/rooms/"+string(payload.RoomID)+"/read", "bob", fiber.Map{
		"message_ids": []string{payload.Message.ID.String()},
	})
	req.Equal(fiber.StatusOK, response.StatusCode)

	var receipt event.MessagesRead
	req.NoError(json.NewDecoder(response.Body).Decode(&receipt))
	req.Equal("bob", receipt.ReaderID)
	req.Equal([]string{payload.Message.ID.String()}, receipt.MessageIDs)
}

func TestChatHandler_Search(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	registerUsers(t, app, "alice", "bob")

	response := doJSON(t, app, fiber.MethodPost, "/messages", "alice", fiber.Map{
		"request_id":   "req-1",
		"recipient_id": "bob",
		"content":      "the mushroom stew",
	})
	req.Equal(fiber.StatusCreated, response.StatusCode)
	var payload event.ChatMessagePayload
	req.NoError(json.NewDecoder(response.Body).Decode(&payload))

	response = doJSON(t, app, fiber.MethodGet,
		"/rooms/"+string(payload.RoomID)+"/search?q=mushroom", "alice", nil)
	req.Equal(fiber.StatusOK, response.StatusCode)

	var result struct {
		Hits  []storage.SearchHit `json:"hits"`
		Total uint64              `json:"total"`
	}
	req.NoError(json.NewDecoder(response.Body).Decode(&result))
	req.Equal(uint64(1), result.Total)
	req.Len(result.Hits, 1)
}

func TestParseRooms(t *testing.T) {
	req := require.New(t)
	req.Nil(parseRooms(""))
	req.Equal([]domain.RoomID{"a", "b"}, parseRooms("a, b"))
	req.Equal([]domain.RoomID{"a"}, parseRooms("a,,"))
}
