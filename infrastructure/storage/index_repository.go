package storage

import (
	"chat-core/domain"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/blugelabs/bluge/index"
)

type IIndexRepository interface {
	Index(view domain.MessageView) error
	Flush() error
	SearchPaginated(ctx context.Context, terms string, roomID domain.RoomID, page int) ([]SearchHit, uint64, error)
}

// SearchHit is one full-text match. Sender is empty for anonymous messages:
// the index only ever sees recipient-facing views.
type SearchHit struct {
	MessageID string        `json:"message_id"`
	RoomID    domain.RoomID `json:"room_id"`
	Sender    string        `json:"sender,omitempty"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
}

// IndexRepository maintains a Bluge full-text index over message content.
// Writes are buffered in a batch and applied once batchSize documents
// accumulate, or on an explicit Flush.
type IndexRepository struct {
	mu        sync.Mutex
	writer    *bluge.Writer
	log       *slog.Logger
	batch     *index.Batch
	pending   int
	batchSize int
	pageSize  int
}

func NewIndexRepository(writer *bluge.Writer, log *slog.Logger, batchSize, pageSize int) *IndexRepository {
	return &IndexRepository{
		writer:    writer,
		log:       log,
		batch:     bluge.NewBatch(),
		batchSize: batchSize,
		pageSize:  pageSize,
	}
}

func (i *IndexRepository) Index(view domain.MessageView) error {
	doc := bluge.NewDocument(view.ID.String()).
		AddField(bluge.NewKeywordField("room", string(view.Room)).StoreValue()).
		AddField(bluge.NewKeywordField("sender", view.SenderID).StoreValue()).
		AddField(bluge.NewTextField("content", view.Content).StoreValue()).
		AddField(bluge.NewKeywordField("created_at", view.CreatedAt.UTC().Format(time.RFC3339Nano)).StoreValue())

	i.mu.Lock()
	i.batch.Update(doc.ID(), doc)
	i.pending++
	isFull := i.pending >= i.batchSize
	i.mu.Unlock()

	if isFull {
		return i.Flush()
	}
	return nil
}

// Flush applies the buffered batch. Safe to call with an empty buffer.
func (i *IndexRepository) Flush() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.pending == 0 {
		return nil
	}
	if err := i.writer.Batch(i.batch); err != nil {
		return err
	}
	i.batch.Reset()
	i.pending = 0
	return nil
}

// SearchPaginated runs a room-scoped match query over message content.
// It returns one page of hits plus the total match count.
func (i *IndexRepository) SearchPaginated(ctx context.Context, terms string, roomID domain.RoomID, page int) ([]SearchHit, uint64, error) {
	if err := i.Flush(); err != nil {
		return nil, 0, err
	}

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Failed to close index reader", "error", err)
		}
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("content")).
		AddMust(bluge.NewTermQuery(string(roomID)).SetField("room"))

	if page < 0 {
		page = 0
	}
	request := bluge.NewTopNSearch(i.pageSize, query).
		SetFrom(page * i.pageSize).
		WithStandardAggregations()

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, err
	}

	var hits []SearchHit
	match, err := iterator.Next()
	for err == nil && match != nil {
		var hit SearchHit
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "room":
				hit.RoomID = domain.RoomID(value)
			case "sender":
				hit.Sender = string(value)
			case "content":
				hit.Content = string(value)
			case "created_at":
				if at, parseErr := time.Parse(time.RFC3339Nano, string(value)); parseErr == nil {
					hit.CreatedAt = at
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, 0, visitErr
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, 0, err
	}

	return hits, iterator.Aggregations().Count(), nil
}
