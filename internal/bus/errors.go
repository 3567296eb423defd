package bus

import "errors"

var (
	// ErrTopicType is returned when a topic name is already registered with
	// a different payload type.
	ErrTopicType = errors.New("bus: topic registered with a different type")

	// ErrClosed is returned when publishing or subscribing on a closed topic.
	ErrClosed = errors.New("bus: topic closed")
)
