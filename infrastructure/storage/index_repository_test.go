package storage

import (
	"chat-core/domain"
	"testing"
	"time"

	"chat-core/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func indexedView(roomID domain.RoomID, sender, content string) domain.MessageView {
	return domain.MessageView{
		ID:        uuid.New(),
		Room:      roomID,
		SenderID:  sender,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

func TestIndexRepository_SearchIsScopedToRoom(t *testing.T) {
	req := require.New(t)
	ctx, log, db, writer, err := database.Setup()
	req.NoError(err)
	defer database.Cleanup(db, writer)

	repository := NewIndexRepository(writer, log, 64, 10)

	target := indexedView("room-1", "alice", "the badger sleeps under the oak")
	req.NoError(repository.Index(target))
	req.NoError(repository.Index(indexedView("room-1", "bob", "nothing to see here")))
	// Same content in another room must not leak into room-1 results
	req.NoError(repository.Index(indexedView("room-2", "clara", "the badger sleeps elsewhere")))

	hits, total, err := repository.SearchPaginated(ctx, "badger", "room-1", 0)
	req.NoError(err)
	req.Equal(uint64(1), total)
	req.Len(hits, 1)
	req.Equal(target.ID.String(), hits[0].MessageID)
	req.Equal(domain.RoomID("room-1"), hits[0].RoomID)
	req.Equal("alice", hits[0].Sender)
	req.Equal(target.Content, hits[0].Content)
}

func TestIndexRepository_SearchPaginates(t *testing.T) {
	req := require.New(t)
	ctx, log, db, writer, err := database.Setup()
	req.NoError(err)
	defer database.Cleanup(db, writer)

	repository := NewIndexRepository(writer, log, 64, 2)

	for i := 0; i < 5; i++ {
		req.NoError(repository.Index(indexedView("room-1", "alice", "mushroom soup again")))
	}

	hits, total, err := repository.SearchPaginated(ctx, "mushroom", "room-1", 0)
	req.NoError(err)
	req.Equal(uint64(5), total)
	req.Len(hits, 2)

	hits, _, err = repository.SearchPaginated(ctx, "mushroom", "room-1", 2)
	req.NoError(err)
	req.Len(hits, 1)
}

func TestIndexRepository_FlushOnBatchFull(t *testing.T) {
	req := require.New(t)
	ctx, log, db, writer, err := database.Setup()
	req.NoError(err)
	defer database.Cleanup(db, writer)

	// Batch of 2: the second Index call must apply the batch on its own
	repository := NewIndexRepository(writer, log, 2, 10)

	req.NoError(repository.Index(indexedView("room-1", "alice", "snake in the grass")))
	req.NoError(repository.Index(indexedView("room-1", "bob", "snake again")))

	hits, total, err := repository.SearchPaginated(ctx, "snake", "room-1", 0)
	req.NoError(err)
	req.Equal(uint64(2), total)
	req.Len(hits, 2)
}
