// Package event carries UI boundary signals between otherwise independent
// components, such as the search panel learning that focus moved elsewhere.
package event

import (
	"sync"
)

// Kind identifies a boundary event.
type Kind string

const (
	// FocusLost is published when input focus leaves a panel (esc, click-away).
	FocusLost Kind = "focus-lost"
	// ThemeChanged is published after the theme toggles.
	ThemeChanged Kind = "theme-changed"
)

// Event is a published signal with an optional payload.
type Event struct {
	Kind    Kind
	Payload any
}

// Handler receives published events. It runs on the publisher's goroutine.
type Handler func(Event)

type subscription struct {
	id uint64
	fn Handler
}

// Bus is a synchronous, in-process publish/subscribe hub.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Kind][]subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Kind][]subscription)}
}

// Subscribe registers fn for kind and returns a function that removes it.
// The returned function is safe to call more than once.
func (b *Bus) Subscribe(kind Kind, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[kind] = append(b.subs[kind], subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(kind, id) })
	}
}

func (b *Bus) remove(kind Kind, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[kind]
	for i, s := range subs {
		if s.id == id {
			b.subs[kind] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[kind]) == 0 {
		delete(b.subs, kind)
	}
}

// Publish delivers ev to every handler subscribed to ev.Kind.
// Handlers are snapshotted first, so they may subscribe or unsubscribe.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[ev.Kind]))
	for _, s := range b.subs[ev.Kind] {
		handlers = append(handlers, s.fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

// Subscribers returns the number of handlers registered for kind.
func (b *Bus) Subscribers(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[kind])
}
