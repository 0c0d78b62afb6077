package querycache

import (
	"sync"
	"sync/atomic"
)

const subscriberBufSize = 64

// Event notifies subscribers of an entry status transition.
type Event struct {
	Key    Key    `json:"key"`
	Status Status `json:"status"`
}

// broker fans out entry status events to all subscribers. Channels are
// buffered; slow consumers have events dropped rather than blocking cache
// mutations.
type broker struct {
	mu          sync.RWMutex
	subscribers map[int64]chan Event
	nextID      atomic.Int64
}

func newBroker() *broker {
	return &broker{subscribers: make(map[int64]chan Event)}
}

func (b *broker) subscribe() (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *broker) unsubscribe(id int64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()
}

func (b *broker) publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (b *broker) close() {
	b.mu.Lock()
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()
}
