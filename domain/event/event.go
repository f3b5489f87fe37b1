// Package event defines the domain events published after persistence.
// Events are immutable snapshots; the fanout worker owns their delivery.
package event

import (
	"chat-core/domain"
)

type DomainEvent interface {
	EventRoomID() domain.RoomID
}

// ChatMessagePayload is published once per successful send, to the room
// channel and to every participant inbox. RequestID echoes the correlation id
// supplied by the sender.
type ChatMessagePayload struct {
	Message   domain.MessageView `json:"message"`
	RoomID    domain.RoomID      `json:"room_id"`
	RequestID string             `json:"request_id"`
	// SenderID addresses the error channel on delivery failure. It stays
	// populated for anonymous messages even though the view withholds it.
	SenderID string `json:"-"`
}

func (p ChatMessagePayload) EventRoomID() domain.RoomID { return p.RoomID }

// MessagesRead is published when a reader acknowledges messages of a room.
type MessagesRead struct {
	RoomID     domain.RoomID `json:"room_id"`
	ReaderID   string        `json:"read_by"`
	MessageIDs []string      `json:"message_ids"`
}

func (e MessagesRead) EventRoomID() domain.RoomID { return e.RoomID }

// DeliveryFailure is addressed to the sender's error channel only. It never
// propagates back as a failed send: the send already succeeded once persisted.
type DeliveryFailure struct {
	SenderID string        `json:"-"`
	RoomID   domain.RoomID `json:"room_id"`
	Reason   string        `json:"error"`
}

func (e DeliveryFailure) EventRoomID() domain.RoomID { return e.RoomID }
