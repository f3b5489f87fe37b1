// Package projection builds local timelines from observed events.
// Handles ordering and projections. Does not emit events or interact with
// transport directly.
package projection

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"context"
	"sync"
)

// Timeline holds a simple local timeline of message views in arrival order.
type Timeline struct {
	mu       sync.Mutex
	Owner    string
	Messages []domain.MessageView
}

func NewTimeline(owner string) *Timeline {
	return &Timeline{Owner: owner}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.ChatMessagePayload:
		t.mu.Lock()
		t.Messages = append(t.Messages, evt.Message)
		t.mu.Unlock()
	}
	return nil
}

// Snapshot returns a copy of the observed messages.
func (t *Timeline) Snapshot() []domain.MessageView {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.MessageView, len(t.Messages))
	copy(out, t.Messages)
	return out
}
