package storage

import (
	"chat-core/domain"
	"chat-core/errors"
	"chat-core/internal/database"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_Append_AssignsIdentityAndTimestamp(t *testing.T) {
	req := require.New(t)
	_, log, db, writer, err := database.Setup()
	req.NoError(err)
	defer database.Cleanup(db, writer)

	repository := NewMessageRepository(db, log, nil)

	message, err := repository.Append("room-1", "alice", "hello bob", false)
	req.NoError(err)
	req.NotEqual(uuid.Nil, message.ID)
	req.False(message.CreatedAt.IsZero())
	req.Equal("alice", message.SenderID)
	req.Empty(message.ReadBy)
}

func TestMessageRepository_Append_RejectsEmptyContent(t *testing.T) {
	req := require.New(t)
	_, log, db, writer, err := database.Setup()
	req.NoError(err)
	defer database.Cleanup(db, writer)

	repository := NewMessageRepository(db, log, nil)

	_, err = repository.Append("room-1", "alice", "", false)
	req.ErrorIs(err, errors.ErrEmptyContent)

	messages, _, err := repository.GetMessages("room-1", nil)
	req.NoError(err)
	req.Empty(messages)
}

func TestMessageRepository_GetMessages_PreservesAppendOrder(t *testing.T) {
	req := require.New(t)
	_, log, db, writer, err := database.Setup()
	req.NoError(err)
	defer database.Cleanup(db, writer)

	repository := NewMessageRepository(db, log, nil)

	contents := []string{"first", "second", "third", "fourth"}
	for _, content := range contents {
		_, err := repository.Append("room-1", "alice", content, false)
		req.NoError(err)
	}
	// Messages of another room must stay invisible
	_, err = repository.Append("room-2", "bob", "elsewhere", false)
	req.NoError(err)

	messages, _, err := repository.GetMessages("room-1", nil)
	req.NoError(err)
	req.Equal(contents, lo.Map(messages, func(m domain.Message, _ int) string {
		return m.Content
	}))
}

func TestMessageRepository_GetMessages_PaginatesWithCursor(t *testing.T) {
	req := require.New(t)
	_, log, db, writer, err := database.Setup()
	req.NoError(err)
	defer database.Cleanup(db, writer)

	limit := 2
	repository := NewMessageRepository(db, log, &limit)

	for _, content := range []string{"one", "two", "three"} {
		_, err := repository.Append("room-1", "alice", content, false)
		req.NoError(err)
	}

	// First page
	page, cursor, err := repository.GetMessages("room-1", nil)
	req.NoError(err)
	req.Len(page, 2)
	req.Equal("one", page[0].Content)
	req.Equal("two", page[1].Content)
	req.NotNil(cursor)

	// Second page resumes after the cursor
	page, _, err = repository.GetMessages("room-1", cursor)
	req.NoError(err)
	req.Len(page, 1)
	req.Equal("three", page[0].Content)
}

func TestMessageRepository_GetMessages_EmptyScanReturnsNoCursor(t *testing.T) {
	req := require.New(t)
	_, log, db, writer, err := database.Setup()
	req.NoError(err)
	defer database.Cleanup(db, writer)

	repository := NewMessageRepository(db, log, nil)

	// Polling an empty room must not hand out a resumable position
	messages, cursor, err := repository.GetMessages("room-1", nil)
	req.NoError(err)
	req.Empty(messages)
	req.Nil(cursor)

	// A client resuming from that poll still sees everything written since
	_, err = repository.Append("room-1", "alice", "first", false)
	req.NoError(err)
	_, err = repository.Append("room-1", "alice", "second", false)
	req.NoError(err)

	messages, cursor, err = repository.GetMessages("room-1", cursor)
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal("first", messages[0].Content)
	req.NotNil(cursor)

	// Draining past the end yields an empty page and no cursor again
	messages, cursor, err = repository.GetMessages("room-1", cursor)
	req.NoError(err)
	req.Empty(messages)
	req.Nil(cursor)
}

func TestMessageRepository_MarkRead_RecordsReceiptOnce(t *testing.T) {
	req := require.New(t)
	_, log, db, writer, err := database.Setup()
	req.NoError(err)
	defer database.Cleanup(db, writer)

	repository := NewMessageRepository(db, log, nil)

	message, err := repository.Append("room-1", "alice", "read me", false)
	req.NoError(err)

	updated, err := repository.MarkRead("room-1", []string{message.ID.String()}, "bob")
	req.NoError(err)
	req.Len(updated, 1)
	req.Equal([]string{"bob"}, updated[0].ReadBy)

	// Re-acknowledging the same message is a no-op
	updated, err = repository.MarkRead("room-1", []string{message.ID.String()}, "bob")
	req.NoError(err)
	req.Len(updated, 1)
	req.Equal([]string{"bob"}, updated[0].ReadBy)

	// The receipt survives the round trip through storage
	stored, _, err := repository.GetMessages("room-1", nil)
	req.NoError(err)
	req.Len(stored, 1)
	req.Equal([]string{"bob"}, stored[0].ReadBy)
}

func TestMessageRepository_MarkRead_SkipsUnknownAndForeignIds(t *testing.T) {
	req := require.New(t)
	_, log, db, writer, err := database.Setup()
	req.NoError(err)
	defer database.Cleanup(db, writer)

	repository := NewMessageRepository(db, log, nil)

	mine, err := repository.Append("room-1", "alice", "mine", false)
	req.NoError(err)
	foreign, err := repository.Append("room-2", "clara", "not yours", false)
	req.NoError(err)

	updated, err := repository.MarkRead("room-1", []string{
		mine.ID.String(),
		foreign.ID.String(),    // belongs to another room
		uuid.NewString(),       // never persisted
		"not-a-uuid-at-all",    // malformed
	}, "bob")
	req.NoError(err)
	req.Len(updated, 1)
	req.Equal(mine.ID, updated[0].ID)

	// The foreign room message stays untouched
	stored, _, err := repository.GetMessages("room-2", nil)
	req.NoError(err)
	req.Len(stored, 1)
	req.Empty(stored[0].ReadBy)
}
