package events

import "sync"

// Topics published on a session bus
const (
	TopicKeyDown = "keydown"
)

// KeyEscape is the key name of the escape key as reported by the browser
const KeyEscape = "Escape"

// Handler receives a published payload
type Handler func(payload any)

// Bus is a small scoped publish/subscribe hub. Each plot session owns one, so
// listeners never outlive the session that registered them.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[uint64]Handler)}
}

// Subscription is the handle returned by Subscribe
type Subscription struct {
	once  sync.Once
	bus   *Bus
	topic string
	id    uint64
}

// Subscribe registers h for topic
func (b *Bus) Subscribe(topic string, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[uint64]Handler)
	}
	b.subs[topic][b.nextID] = h
	return &Subscription{bus: b, topic: topic, id: b.nextID}
}

// Unsubscribe removes the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		delete(s.bus.subs[s.topic], s.id)
		if len(s.bus.subs[s.topic]) == 0 {
			delete(s.bus.subs, s.topic)
		}
	})
}

// Publish calls every handler of topic. Handlers run on the caller's goroutine
// and may unsubscribe themselves.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(payload)
	}
}

// Count returns the number of handlers registered for topic
func (b *Bus) Count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}
