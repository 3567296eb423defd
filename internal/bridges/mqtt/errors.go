package mqtt

import "errors"

// Domain errors for the MQTT bridge package.
var (
	// ErrInvalidPayload is returned when a command payload is not valid JSON.
	ErrInvalidPayload = errors.New("mqtt bridge: invalid command payload")

	// ErrUnknownTopic is returned for messages on topics the bridge does not handle.
	ErrUnknownTopic = errors.New("mqtt bridge: unknown topic")

	// ErrInvalidName is returned when a topic carries an empty name.
	ErrInvalidName = errors.New("mqtt bridge: invalid name in topic")
)
