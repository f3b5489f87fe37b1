// Package domain contains core concepts of the chat system.
// This file defines Message records and their recipient-facing views.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a persisted chat event. It is created once and mutated only to
// extend ReadBy, which grows monotonically and never shrinks.
type Message struct {
	ID        uuid.UUID
	Room      RoomID
	SenderID  string
	Content   string
	Anonymous bool
	CreatedAt time.Time
	ReadBy    []string
}

// MarkReadBy records a read receipt for the reader. Re-marking by the same
// reader is a no-op.
func (m *Message) MarkReadBy(readerID string) bool {
	for _, r := range m.ReadBy {
		if r == readerID {
			return false
		}
	}
	m.ReadBy = append(m.ReadBy, readerID)
	return true
}

// MessageView is what recipients see. When the message is anonymous the
// sender identity is withheld here while the stored record keeps it.
type MessageView struct {
	ID        uuid.UUID `json:"id"`
	Room      RoomID    `json:"room_id"`
	SenderID  string    `json:"sender_id,omitempty"`
	Content   string    `json:"content"`
	Anonymous bool      `json:"anonymous"`
	CreatedAt time.Time `json:"created_at"`
	ReadBy    []string  `json:"read_by"`
}

func (m Message) View() MessageView {
	view := MessageView{
		ID:        m.ID,
		Room:      m.Room,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Anonymous: m.Anonymous,
		CreatedAt: m.CreatedAt,
		ReadBy:    m.ReadBy,
	}
	if m.Anonymous {
		view.SenderID = ""
	}
	return view
}
