package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultSubscriberBuffer = 32

// Broadcaster fans events out to live subscribers. It is an owned,
// per-instance registry: tests construct isolated broadcasters without
// cross-test leakage. Delivery is best-effort with no persistence or
// replay; a subscriber connecting after an event fires never sees it.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[string]chan Event
	buffer int

	keepAliveEvery time.Duration
	stopKeepAlive  chan struct{}
	closed         bool

	logger *zap.Logger
}

// NewBroadcaster constructs a broadcaster. keepAliveEvery <= 0 disables the
// keep-alive ticker.
func NewBroadcaster(keepAliveEvery time.Duration, buffer int, logger *zap.Logger) *Broadcaster {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		subs:           make(map[string]chan Event),
		buffer:         buffer,
		keepAliveEvery: keepAliveEvery,
		logger:         logger,
	}
}

// Subscribe registers a new subscriber and returns its id and delivery
// channel. The channel is closed when the subscriber is removed, whether by
// Unsubscribe, by a stalled delivery, or by Close.
func (b *Broadcaster) Subscribe() (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subs[id] = ch
	if len(b.subs) == 1 {
		b.startKeepAliveLocked()
	}
	return id, ch
}

// Unsubscribe removes a subscriber. Unknown ids are a no-op.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(id)
}

// Publish fans the event out to every registered subscriber. A subscriber
// whose buffer is full is treated as dead and removed; delivery to the
// others is unaffected. Publish never blocks.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Debug("dropping stalled subscriber", zap.String("subscriber_id", id))
			b.removeLocked(id)
		}
	}
}

// SubscriberCount returns the current registry size.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close removes all subscribers and stops the keep-alive ticker. Further
// subscriptions receive an already-closed channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id := range b.subs {
		b.removeLocked(id)
	}
	b.closed = true
}

// removeLocked deletes the subscriber and closes its channel. Stopping the
// keep-alive when the last subscriber leaves happens here so every removal
// path tears it down. Caller holds b.mu.
func (b *Broadcaster) removeLocked(id string) {
	ch, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(ch)
	if len(b.subs) == 0 {
		b.stopKeepAliveLocked()
	}
}

func (b *Broadcaster) startKeepAliveLocked() {
	if b.keepAliveEvery <= 0 || b.stopKeepAlive != nil {
		return
	}
	stop := make(chan struct{})
	b.stopKeepAlive = stop
	go func() {
		ticker := time.NewTicker(b.keepAliveEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.Publish(Event{Kind: KindKeepAlive})
			case <-stop:
				return
			}
		}
	}()
}

func (b *Broadcaster) stopKeepAliveLocked() {
	if b.stopKeepAlive == nil {
		return
	}
	close(b.stopKeepAlive)
	b.stopKeepAlive = nil
}
