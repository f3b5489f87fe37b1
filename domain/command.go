package domain

// SendMessageCommand carries a send intent. Exactly one of RecipientID and
// RoomID is set: direct sends resolve the room lazily from the pair, explicit
// room sends require the sender to be a participant. RequestID is a
// caller-supplied correlation id echoed back in the resulting payload so the
// client can match its acknowledgment.
type SendMessageCommand struct {
	RequestID   string `validate:"required"`
	SenderID    string `validate:"required"`
	RecipientID string `validate:"required_without=RoomID,excluded_with=RoomID"`
	RoomID      RoomID `validate:"required_without=RecipientID"`
	Content     string `validate:"required"`
	Anonymous   bool
}

type ReadMessagesCommand struct {
	ReaderID   string   `validate:"required"`
	RoomID     RoomID   `validate:"required"`
	MessageIDs []string `validate:"required,min=1"`
}

type CreateGroupRoomCommand struct {
	CreatorID    string   `validate:"required"`
	Participants []string `validate:"required,min=1"`
}

type HistoryCommand struct {
	CallerID string `validate:"required"`
	RoomID   RoomID `validate:"required"`
	Cursor   *string
}

type SearchCommand struct {
	CallerID string `validate:"required"`
	RoomID   RoomID `validate:"required"`
	Terms    string `validate:"required"`
	Page     int
}
