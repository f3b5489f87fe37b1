//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives one delivery attempt per published event. Consume must
// honor ctx: the fanout worker bounds every delivery with a short timeout so
// one slow consumer cannot starve the others.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry tracks which live connections are subscribed to which channels.
// There is no backlog: a connection subscribing after publish sees nothing,
// replay is satisfied by fetching persisted history instead.
type IRegistry interface {
	Subscribe(connectionID string, channel domain.Channel, sink EventSink)
	Unsubscribe(connectionID string, channel domain.Channel)
	UnsubscribeAll(connectionID string)
	Sinks(channel domain.Channel) []EventSink
}

// IUserDirectory is the external user-existence collaborator. The core
// consults it for recipient validity and nothing else.
type IUserDirectory interface {
	Exists(userID string) (bool, error)
}

// IPublisher hands a persisted event to the fanout pipeline. Publishing is
// fire-and-forget with respect to the caller; the pipeline owns its own
// failure handling and never re-throws into the persistence path.
type IPublisher interface {
	Publish(e event.DomainEvent)
}
