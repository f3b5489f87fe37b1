package sink

import (
	"chat-core/domain/event"
	"context"
	"log/slog"
)

// ClientSink bridges the fanout worker to one live connection. Consume only
// parks the event on a buffered channel; the transport writer drains it.
type ClientSink struct {
	ConnectedUserEvent chan event.DomainEvent
	log                *slog.Logger
}

func NewClientSink(log *slog.Logger, bufferSize int) *ClientSink {
	return &ClientSink{
		ConnectedUserEvent: make(chan event.DomainEvent, bufferSize),
		log:                log,
	}
}

// Consume is called by fanout. A full buffer means the consumer lags; the
// event is dropped for this connection rather than stalling the pipeline
// (history replay covers the gap), and the drop is always logged.
func (s *ClientSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.ConnectedUserEvent <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.log.Warn("Client buffer full, dropping event",
			"room_id", e.EventRoomID(),
			"capacity", cap(s.ConnectedUserEvent))
		return nil
	}
}
