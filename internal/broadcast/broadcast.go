// internal/broadcast/broadcast.go

// Package broadcast fans published values out to any number of subscribers.
// Each subscriber owns a bounded mailbox; when it is full the oldest queued
// value is discarded, so a slow reader never stalls the publisher.
package broadcast

import (
	"sync"
	"sync/atomic"
)

// Broadcaster delivers every published value to every current subscriber,
// preserving publish order per subscriber.
type Broadcaster[T any] struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription[T]
	nextID uint64
	closed bool
}

// New returns an open Broadcaster with no subscribers.
func New[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[uint64]*Subscription[T])}
}

// Subscription is one subscriber's mailbox.
type Subscription[T any] struct {
	b       *Broadcaster[T]
	id      uint64
	ch      chan T
	dropped atomic.Uint64
	once    sync.Once
}

// Subscribe registers a mailbox holding up to size values (minimum 1).
// Subscribing to a closed Broadcaster yields an already-closed mailbox.
func (b *Broadcaster[T]) Subscribe(size int) *Subscription[T] {
	if size < 1 {
		size = 1
	}
	s := &Subscription[T]{b: b, ch: make(chan T, size)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		s.once.Do(func() { close(s.ch) })
		return s
	}
	s.id = b.nextID
	b.nextID++
	b.subs[s.id] = s
	return s
}

// Publish enqueues vs, in order, into every mailbox. It never blocks on a
// subscriber.
func (b *Broadcaster[T]) Publish(vs ...T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		for _, v := range vs {
			s.deliver(v)
		}
	}
}

// deliver must be called with b.mu held; the subscriber side only ever
// receives, so evicting one value always makes room.
func (s *Subscription[T]) deliver(v T) {
	for {
		select {
		case s.ch <- v:
			return
		default:
		}
		select {
		case <-s.ch:
			s.dropped.Add(1)
		default:
		}
	}
}

// Len reports the number of live subscriptions.
func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every mailbox. Later publishes are ignored.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		s.once.Do(func() { close(s.ch) })
		delete(b.subs, id)
	}
}

// C is the receive side of the mailbox. It is closed when the subscription
// or the Broadcaster is closed.
func (s *Subscription[T]) C() <-chan T { return s.ch }

// Dropped counts values evicted from this mailbox because it was full.
func (s *Subscription[T]) Dropped() uint64 { return s.dropped.Load() }

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription[T]) Close() {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if cur, ok := s.b.subs[s.id]; ok && cur == s {
		delete(s.b.subs, s.id)
	}
	s.once.Do(func() { close(s.ch) })
}
