package runtime

import (
	"chat-core/contract"
	"chat-core/domain"
	"sync"
)

type channelEntry struct {
	mu    sync.Mutex
	sinks map[string]contract.EventSink // connection id -> sink
}

// Registry tracks which live connections are subscribed to which channels.
// The subscriber set of a channel is mutated under that channel's own lock;
// the outer RWMutex only guards entry lookup and the per-connection index,
// so traffic on unrelated channels never contends.
type Registry struct {
	mu          sync.RWMutex
	channels    map[domain.Channel]*channelEntry
	connections map[string]map[domain.Channel]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		channels:    make(map[domain.Channel]*channelEntry),
		connections: make(map[string]map[domain.Channel]struct{}),
	}
}

func (r *Registry) Subscribe(connectionID string, channel domain.Channel, sink contract.EventSink) {
	r.mu.Lock()
	entry, ok := r.channels[channel]
	if !ok {
		entry = &channelEntry{sinks: make(map[string]contract.EventSink)}
		r.channels[channel] = entry
	}
	if _, ok := r.connections[connectionID]; !ok {
		r.connections[connectionID] = make(map[domain.Channel]struct{})
	}
	r.connections[connectionID][channel] = struct{}{}
	r.mu.Unlock()

	entry.mu.Lock()
	entry.sinks[connectionID] = sink
	entry.mu.Unlock()
}

func (r *Registry) Unsubscribe(connectionID string, channel domain.Channel) {
	r.mu.RLock()
	entry, ok := r.channels[channel]
	r.mu.RUnlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	delete(entry.sinks, connectionID)
	empty := len(entry.sinks) == 0
	entry.mu.Unlock()

	r.mu.Lock()
	if channels, ok := r.connections[connectionID]; ok {
		delete(channels, channel)
		if len(channels) == 0 {
			delete(r.connections, connectionID)
		}
	}
	// No one left on the channel, drop the entry to avoid leaking over time.
	if empty {
		if entry, ok := r.channels[channel]; ok {
			entry.mu.Lock()
			if len(entry.sinks) == 0 {
				delete(r.channels, channel)
			}
			entry.mu.Unlock()
		}
	}
	r.mu.Unlock()
}

// UnsubscribeAll removes every subscription of a connection. Callers defer it
// on every disconnect path, including abnormal termination.
func (r *Registry) UnsubscribeAll(connectionID string) {
	r.mu.RLock()
	channels := make([]domain.Channel, 0, len(r.connections[connectionID]))
	for channel := range r.connections[connectionID] {
		channels = append(channels, channel)
	}
	r.mu.RUnlock()

	for _, channel := range channels {
		r.Unsubscribe(connectionID, channel)
	}
}

// Sinks returns the sinks currently subscribed to a channel. Connections
// subscribing after a publish see nothing; replay is served by persisted
// history, not by the registry.
func (r *Registry) Sinks(channel domain.Channel) []contract.EventSink {
	r.mu.RLock()
	entry, ok := r.channels[channel]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	sinks := make([]contract.EventSink, 0, len(entry.sinks))
	for _, sink := range entry.sinks {
		sinks = append(sinks, sink)
	}
	return sinks
}
