package bus

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the per-subscriber buffer size used when none is given.
const DefaultBuffer = 64

// Logger is the logging interface used to report handler panics.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Topic fans items of type T out to its subscribers.
//
// Thread Safety: all methods are safe for concurrent use.
type Topic[T any] struct {
	name   string
	buffer int
	logger Logger

	mu     sync.RWMutex
	subs   map[uint64]*Subscription[T]
	nextID uint64
	closed bool
}

// NewTopic creates a standalone topic. Most callers obtain topics from a
// Registry instead.
func NewTopic[T any](name string, buffer int, logger Logger) *Topic[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Topic[T]{
		name:   name,
		buffer: buffer,
		logger: logger,
		subs:   make(map[uint64]*Subscription[T]),
	}
}

// Name returns the topic name.
func (t *Topic[T]) Name() string { return t.name }

// Publish offers item to every current subscriber without blocking.
func (t *Topic[T]) Publish(item T) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return fmt.Errorf("%w: %s", ErrClosed, t.name)
	}
	for _, s := range t.subs {
		s.offer(item)
	}
	return nil
}

// Subscribe registers handler. Items are delivered in publish order on a
// goroutine owned by the subscription. A panicking handler is recovered and
// logged; delivery continues with the next item.
func (t *Topic[T]) Subscribe(handler func(T)) (*Subscription[T], error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, fmt.Errorf("%w: %s", ErrClosed, t.name)
	}

	t.nextID++
	s := &Subscription[T]{
		id:      t.nextID,
		topic:   t,
		items:   make(chan T, t.buffer),
		done:    make(chan struct{}),
		handler: handler,
	}
	t.subs[s.id] = s
	go s.deliver()
	return s, nil
}

// Subscribers returns the number of active subscriptions.
func (t *Topic[T]) Subscribers() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

// Close detaches every subscriber and rejects further use.
func (t *Topic[T]) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	for id, s := range t.subs {
		s.stop()
		delete(t.subs, id)
	}
}

func (t *Topic[T]) remove(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.subs[id]; ok {
		s.stop()
		delete(t.subs, id)
	}
}

// Subscription is one subscriber's view of a topic.
type Subscription[T any] struct {
	id      uint64
	topic   *Topic[T]
	handler func(T)

	mu      sync.Mutex // serialises offer against stop
	items   chan T
	stopped bool
	done    chan struct{}
	dropped atomic.Uint64
}

// offer enqueues item, discarding the oldest queued item when full.
func (s *Subscription[T]) offer(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	for {
		select {
		case s.items <- item:
			return
		default:
		}
		select {
		case <-s.items:
			s.dropped.Add(1)
		default:
		}
	}
}

func (s *Subscription[T]) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.stopped = true
		close(s.items)
	}
}

func (s *Subscription[T]) deliver() {
	defer close(s.done)
	for item := range s.items {
		s.call(item)
	}
}

func (s *Subscription[T]) call(item T) {
	defer func() {
		if r := recover(); r != nil {
			s.topic.logger.Error("bus handler panic recovered",
				"topic", s.topic.name,
				"panic", r,
			)
		}
	}()
	s.handler(item)
}

// Unsubscribe stops delivery. Items still buffered are delivered before
// the delivery goroutine exits; Done is closed after that.
func (s *Subscription[T]) Unsubscribe() {
	s.topic.remove(s.id)
}

// Done is closed once the delivery goroutine has exited.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Dropped returns how many items were discarded because the buffer was full.
func (s *Subscription[T]) Dropped() uint64 { return s.dropped.Load() }
