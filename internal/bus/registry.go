package bus

import (
	"fmt"
	"sync"
)

// Key names a topic and fixes its payload type.
type Key[T any] struct {
	name string
}

// NewKey creates a typed topic key.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the topic name.
func (k Key[T]) Name() string { return k.name }

type closer interface {
	Close()
}

// Registry holds every topic of a process, keyed by name.
type Registry struct {
	buffer int
	logger Logger

	mu     sync.Mutex
	topics map[string]closer
}

// NewRegistry creates an empty registry. buffer is the per-subscriber
// buffer size for topics created through it.
func NewRegistry(buffer int, logger Logger) *Registry {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Registry{
		buffer: buffer,
		logger: logger,
		topics: make(map[string]closer),
	}
}

// Get returns the topic for key, creating it on first use.
func Get[T any](r *Registry, key Key[T]) (*Topic[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.topics[key.name]; ok {
		topic, ok := existing.(*Topic[T])
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTopicType, key.name)
		}
		return topic, nil
	}

	topic := NewTopic[T](key.name, r.buffer, r.logger)
	r.topics[key.name] = topic
	return topic, nil
}

// Publish is shorthand for Get followed by Topic.Publish.
func Publish[T any](r *Registry, key Key[T], item T) error {
	topic, err := Get(r, key)
	if err != nil {
		return err
	}
	return topic.Publish(item)
}

// Subscribe is shorthand for Get followed by Topic.Subscribe.
func Subscribe[T any](r *Registry, key Key[T], handler func(T)) (*Subscription[T], error) {
	topic, err := Get(r, key)
	if err != nil {
		return nil, err
	}
	return topic.Subscribe(handler)
}

// Close closes every topic.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, t := range r.topics {
		t.Close()
		delete(r.topics, name)
	}
}
