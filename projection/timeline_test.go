package projection

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTimeline_CollectsMessagesInArrivalOrder(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("alice")
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		err := timeline.Consume(ctx, event.ChatMessagePayload{
			Message: domain.MessageView{
				ID:        uuid.New(),
				Room:      "room-1",
				SenderID:  "bob",
				Content:   content,
				CreatedAt: time.Now().UTC(),
			},
			RoomID: "room-1",
		})
		req.NoError(err)
	}

	snapshot := timeline.Snapshot()
	req.Len(snapshot, 3)
	req.Equal("one", snapshot[0].Content)
	req.Equal("three", snapshot[2].Content)
}

func TestTimeline_IgnoresNonMessageEvents(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("alice")

	err := timeline.Consume(context.Background(), event.MessagesRead{
		RoomID:   "room-1",
		ReaderID: "bob",
	})
	req.NoError(err)
	req.Empty(timeline.Snapshot())
}

func TestTimeline_SnapshotIsACopy(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("alice")

	err := timeline.Consume(context.Background(), event.ChatMessagePayload{
		Message: domain.MessageView{ID: uuid.New(), Content: "original"},
		RoomID:  "room-1",
	})
	req.NoError(err)

	snapshot := timeline.Snapshot()
	snapshot[0].Content = "mutated"
	req.Equal("original", timeline.Snapshot()[0].Content)
}
