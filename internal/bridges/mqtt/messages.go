package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/rig"
)

// DefaultSource is recorded on runs requested over MQTT without a source.
const DefaultSource = "mqtt"

// CommandMessage is the optional payload of a command topic.
type CommandMessage struct {
	// Source identifies the requester (panel, automation, button). Empty
	// means DefaultSource.
	Source string `json:"source,omitempty"`
}

// StatusMessage is the retained payload of graymotion/status.
type StatusMessage struct {
	rig.Status
	Timestamp time.Time `json:"timestamp"`
}

// parseCommand decodes an optional command payload.
func parseCommand(payload []byte) (CommandMessage, error) {
	var cmd CommandMessage
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return CommandMessage{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
	}
	if cmd.Source == "" {
		cmd.Source = DefaultSource
	}
	return cmd, nil
}
