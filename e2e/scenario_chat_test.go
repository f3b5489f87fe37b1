package e2e

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testChatScenarioSuite struct {
	BaseHTTPSuite
}

func TestChatScenarioSuite(t *testing.T) {
	suite.Run(t, &testChatScenarioSuite{})
}

// TestDirectConversationFlow walks one full conversation: two fresh users,
// a first-contact direct message, a reply, read receipts, then history and
// search over the resulting room.
func (s *testChatScenarioSuite) TestDirectConversationFlow() {
	// Fresh ids per run so the suite can be re-run against a live server
	alice := "alice-" + uuid.NewString()
	bob := "bob-" + uuid.NewString()

	var roomID string
	var firstMessageID string

	s.Run("Step 1: Register both participants", func() {
		for _, id := range []string{alice, bob} {
			status := s.Call(http.MethodPost, "/users", "", map[string]any{"id": id}, nil)
			s.Require().Equal(http.StatusCreated, status)
		}
		// Re-registering conflicts
		status := s.Call(http.MethodPost, "/users", "", map[string]any{"id": alice}, nil)
		s.Require().Equal(http.StatusConflict, status)
	})

	s.Run("Step 2: First contact creates the direct room", func() {
		var payload struct {
			RoomID    string `json:"room_id"`
			RequestID string `json:"request_id"`
			Message   struct {
				ID      string `json:"id"`
				Content string `json:"content"`
			} `json:"message"`
		}
		status := s.Call(http.MethodPost, "/messages", alice, map[string]any{
			"request_id":   "req-1",
			"recipient_id": bob,
			"content":      "hello bob",
		}, &payload)
		s.Require().Equal(http.StatusCreated, status)
		s.Require().Equal("req-1", payload.RequestID)
		s.Require().NotEmpty(payload.RoomID)
		roomID = payload.RoomID
		firstMessageID = payload.Message.ID
	})

	s.Run("Step 3: The reply lands in the same room", func() {
		var payload struct {
			RoomID string `json:"room_id"`
		}
		status := s.Call(http.MethodPost, "/messages", bob, map[string]any{
			"request_id":   "req-2",
			"recipient_id": alice,
			"content":      "hello alice",
		}, &payload)
		s.Require().Equal(http.StatusCreated, status)
		s.Require().Equal(roomID, payload.RoomID)
	})

	s.Run("Step 4: Bob acknowledges the first message", func() {
		var receipt struct {
			ReaderID   string   `json:"read_by"`
			MessageIDs []string `json:"message_ids"`
		}
		status := s.Call(http.MethodPost, "/rooms/"+roomID+"/read", bob, map[string]any{
			"message_ids": []string{firstMessageID},
		}, &receipt)
		s.Require().Equal(http.StatusOK, status)
		s.Require().Equal(bob, receipt.ReaderID)
		s.Require().Equal([]string{firstMessageID}, receipt.MessageIDs)
	})

	s.Run("Step 5: History shows the conversation in order with the receipt", func() {
		var page struct {
			Messages []struct {
				ID      string   `json:"id"`
				Content string   `json:"content"`
				ReadBy  []string `json:"read_by"`
			} `json:"messages"`
		}
		status := s.Call(http.MethodGet, "/rooms/"+roomID+"/messages", alice, nil, &page)
		s.Require().Equal(http.StatusOK, status)
		s.Require().Len(page.Messages, 2)
		s.Require().Equal("hello bob", page.Messages[0].Content)
		s.Require().Equal("hello alice", page.Messages[1].Content)
		s.Require().Contains(page.Messages[0].ReadBy, bob)
	})

	s.Run("Step 6: Search finds the first message, outsiders are rejected", func() {
		// Indexing rides the async fanout pipeline, poll until it caught up
		s.Require().Eventually(func() bool {
			var result struct {
				Total uint64 `json:"total"`
			}
			status := s.Call(http.MethodGet, "/rooms/"+roomID+"/search?q=hello", alice, nil, &result)
			return status == http.StatusOK && result.Total >= 1
		}, 10*time.Second, 200*time.Millisecond)

		mallory := "mallory-" + uuid.NewString()
		status := s.Call(http.MethodPost, "/users", "", map[string]any{"id": mallory}, nil)
		s.Require().Equal(http.StatusCreated, status)
		status = s.Call(http.MethodGet, "/rooms/"+roomID+"/search?q=hello", mallory, nil, nil)
		s.Require().Equal(http.StatusForbidden, status)
	})
}
