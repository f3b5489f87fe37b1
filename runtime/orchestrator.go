package runtime

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/infrastructure/storage"
	"chat-core/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"time"
)

var _ contract.IPublisher = (*Orchestrator)(nil)

// Orchestrator owns the published-event queue, the session registry, and the
// supervised workers behind them. Persistence happens before Publish is
// called; from here on everything is best-effort delivery.
type Orchestrator struct {
	log            *slog.Logger
	supervisor     contract.ISupervisor
	registry       contract.IRegistry
	rooms          storage.IRoomRepository
	events         chan event.DomainEvent
	permanentSinks []contract.EventSink
	sinkTimeout    time.Duration
	metricInterval time.Duration
}

func NewOrchestrator(
	log *slog.Logger,
	supervisor *workers.Supervisor,
	registry *Registry,
	rooms storage.IRoomRepository,
	bufferSize int,
	sinkTimeout, metricInterval time.Duration,
) *Orchestrator {
	return &Orchestrator{
		log:            log,
		supervisor:     supervisor,
		registry:       registry,
		rooms:          rooms,
		events:         make(chan event.DomainEvent, bufferSize),
		sinkTimeout:    sinkTimeout,
		metricInterval: metricInterval,
	}
}

// Add registers permanent sinks receiving every published event.
// Must be called before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// Publish enqueues a persisted event for fanout. It never blocks the caller:
// when the queue is full the event is dropped with a warning, never silently.
func (o *Orchestrator) Publish(e event.DomainEvent) {
	select {
	case o.events <- e:
	default:
		o.log.Warn(fmt.Sprintf("Event queue full for Room %s, dropping event", e.EventRoomID()))
	}
}

// Subscribe attaches a connection's sink to a channel.
func (o *Orchestrator) Subscribe(connectionID string, channel domain.Channel, sink contract.EventSink) {
	o.registry.Subscribe(connectionID, channel, sink)
}

func (o *Orchestrator) Unsubscribe(connectionID string, channel domain.Channel) {
	o.registry.Unsubscribe(connectionID, channel)
}

// DropConnection removes every subscription of a terminated connection.
func (o *Orchestrator) DropConnection(connectionID string) {
	o.registry.UnsubscribeAll(connectionID)
}

// Start registers the pipeline workers and runs the supervisor. It blocks
// until the context is canceled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) error {
	fanout := workers.NewFanoutWorker(o.log, o.registry, o.rooms, o.events, o.sinkTimeout).
		Add(o.permanentSinks...)
	capacity := workers.NewChannelCapacityWorker(o.log,
		[]workers.NamedChannel{{Name: "events", Channel: o.events}},
		o.metricInterval)

	o.supervisor.Add(fanout)
	o.supervisor.Add(capacity)

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// Stop initiates a graceful shutdown by canceling the supervision context.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
