package sink

import (
	"chat-core/domain/event"
	"chat-core/infrastructure/storage"
	"context"
	"log/slog"
)

// IndexSink feeds persisted messages into the full-text index. It is wired as
// a permanent fanout sink so indexing lag never delays the sender.
type IndexSink struct {
	repository storage.IIndexRepository
	log        *slog.Logger
}

func NewIndexSink(repository storage.IIndexRepository, log *slog.Logger) IndexSink {
	return IndexSink{repository: repository, log: log}
}

func (d IndexSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.ChatMessagePayload:
		return d.repository.Index(evt.Message)
	default:
		// Receipts and failure notices are not searchable content.
		return nil
	}
}
