package workers

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/infrastructure/storage"
	"context"
	"log/slog"
	"sync"
	"time"
)

var _ contract.Worker = (*FanoutWorker)(nil)

// FanoutWorker delivers each published event to every destination it owns:
// the room's broadcast channel, each participant's personal inbox, and the
// permanent sinks (index, projections). Destinations run in parallel with no
// ordering guarantee relative to each other, but all deliveries of one event
// complete before the next event is taken, so every destination observes the
// same per-room order.
//
// Delivery is best-effort. Each destination is bounded by sinkTimeout and a
// failed destination never aborts delivery to the others; failures are logged
// and redirected to the sender's error channel.
type FanoutWorker struct {
	log            *slog.Logger
	registry       contract.IRegistry
	rooms          storage.IRoomRepository
	events         chan event.DomainEvent
	permanentSinks []contract.EventSink
	sinkTimeout    time.Duration
}

func NewFanoutWorker(
	log *slog.Logger,
	registry contract.IRegistry,
	rooms storage.IRoomRepository,
	events chan event.DomainEvent,
	sinkTimeout time.Duration,
) *FanoutWorker {
	return &FanoutWorker{
		log:         log,
		registry:    registry,
		rooms:       rooms,
		events:      events,
		sinkTimeout: sinkTimeout,
	}
}

// Add registers sinks that receive every event regardless of subscriptions.
func (w *FanoutWorker) Add(sinks ...contract.EventSink) *FanoutWorker {
	w.permanentSinks = append(w.permanentSinks, sinks...)
	return w
}

func (w *FanoutWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event channel closed")
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

type delivery struct {
	sink    contract.EventSink
	channel domain.Channel
}

// Fanout resolves the destinations of one event and attempts them all.
func (w *FanoutWorker) Fanout(ctx context.Context, evt event.DomainEvent) {
	deliveries := w.resolve(evt)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed []domain.Channel

	for _, d := range deliveries {
		wg.Add(1)
		go func(d delivery) {
			defer wg.Done()
			if err := w.consume(ctx, d.sink, evt); err != nil {
				w.log.Warn("Delivery failed",
					"channel", d.channel,
					"error", err)
				mu.Lock()
				failed = append(failed, d.channel)
				mu.Unlock()
			}
		}(d)
	}
	wg.Wait()

	if len(failed) > 0 {
		w.notifySender(ctx, evt, len(failed))
	}
}

func (w *FanoutWorker) consume(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) error {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	return sink.Consume(sinkCtx, evt)
}

// resolve maps an event to its destinations. Message and receipt events go to
// the room channel plus every participant inbox; failure notices go to the
// sender's error channel only.
func (w *FanoutWorker) resolve(evt event.DomainEvent) []delivery {
	if failure, ok := evt.(event.DeliveryFailure); ok {
		return w.channelDeliveries(domain.ErrorChannel(failure.SenderID))
	}

	roomID := evt.EventRoomID()
	deliveries := w.channelDeliveries(domain.RoomChannel(roomID))

	room, err := w.rooms.GetRoom(roomID)
	if err != nil {
		w.log.Error("Cannot resolve room participants for fanout",
			"room_id", roomID, "error", err)
	} else {
		for _, participant := range room.Participants {
			deliveries = append(deliveries, w.channelDeliveries(domain.InboxChannel(participant))...)
		}
	}

	for _, sink := range w.permanentSinks {
		deliveries = append(deliveries, delivery{sink: sink, channel: "permanent"})
	}
	return deliveries
}

func (w *FanoutWorker) channelDeliveries(channel domain.Channel) []delivery {
	sinks := w.registry.Sinks(channel)
	deliveries := make([]delivery, 0, len(sinks))
	for _, sink := range sinks {
		deliveries = append(deliveries, delivery{sink: sink, channel: channel})
	}
	return deliveries
}

// notifySender redirects a processing failure to the sender's error channel.
// The send itself already succeeded once persisted, so nothing propagates
// back to the persistence path. Failures of failure notices are only logged.
func (w *FanoutWorker) notifySender(ctx context.Context, evt event.DomainEvent, failedCount int) {
	var senderID string
	switch e := evt.(type) {
	case event.ChatMessagePayload:
		senderID = e.SenderID
	case event.MessagesRead:
		senderID = e.ReaderID
	default:
		return
	}

	notice := event.DeliveryFailure{
		SenderID: senderID,
		RoomID:   evt.EventRoomID(),
		Reason:   "delivery failed for some destinations",
	}
	for _, d := range w.channelDeliveries(domain.ErrorChannel(senderID)) {
		if err := w.consume(ctx, d.sink, notice); err != nil {
			w.log.Debug("Error notice lost", "sender_id", senderID, "error", err)
		}
	}
	w.log.Debug("Sender notified of delivery failures",
		"sender_id", senderID, "failed", failedCount)
}
