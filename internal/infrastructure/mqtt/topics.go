package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the Gray Motion topic tree:
//
//	graymotion/command/{kind}/{name}   inbound requests
//	graymotion/trigger/{name}          external trigger edges
//	graymotion/event/{kind}/{name}     lifecycle events
//	graymotion/status                  retained executor status
//	graymotion/system/status           online/offline (LWT)
const (
	TopicPrefix        = "graymotion"
	TopicPrefixCommand = TopicPrefix + "/command"
	TopicPrefixEvent   = TopicPrefix + "/event"
	TopicPrefixTrigger = TopicPrefix + "/trigger"
	TopicPrefixSystem  = TopicPrefix + "/system"
)

// Topics provides builders for Gray Motion MQTT topics.
//
//	topic := mqtt.Topics{}.SequenceCommand("wave")
//	// "graymotion/command/sequence/wave"
type Topics struct{}

// SequenceCommand returns the topic that requests a named sequence.
func (Topics) SequenceCommand(name string) string {
	return fmt.Sprintf("%s/sequence/%s", TopicPrefixCommand, name)
}

// SceneCommand returns the topic that plays a named smooth scene.
func (Topics) SceneCommand(name string) string {
	return fmt.Sprintf("%s/scene/%s", TopicPrefixCommand, name)
}

// StopCommand returns the emergency stop topic.
func (Topics) StopCommand() string {
	return TopicPrefixCommand + "/stop"
}

// Trigger returns the topic that fires a named trigger.
func (Topics) Trigger(name string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixTrigger, name)
}

// SequenceEvent returns the topic carrying lifecycle events for a sequence.
func (Topics) SequenceEvent(name string) string {
	return fmt.Sprintf("%s/sequence/%s", TopicPrefixEvent, name)
}

// SceneEvent returns the topic carrying scene completion events.
func (Topics) SceneEvent(name string) string {
	return fmt.Sprintf("%s/scene/%s", TopicPrefixEvent, name)
}

// Status returns the retained executor status topic.
func (Topics) Status() string {
	return TopicPrefix + "/status"
}

// SystemStatus returns the online/offline topic used for the LWT.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllSequenceCommands matches every sequence command.
func (Topics) AllSequenceCommands() string {
	return TopicPrefixCommand + "/sequence/+"
}

// AllSceneCommands matches every scene command.
func (Topics) AllSceneCommands() string {
	return TopicPrefixCommand + "/scene/+"
}

// AllTriggers matches every trigger topic.
func (Topics) AllTriggers() string {
	return TopicPrefixTrigger + "/+"
}

// AllEvents matches every lifecycle event.
func (Topics) AllEvents() string {
	return TopicPrefixEvent + "/#"
}

// LastSegment returns the final level of a topic, which carries the
// sequence, scene or trigger name for every wildcard subscription above.
// It returns "" for an empty topic or one ending in "/".
func LastSegment(topic string) string {
	i := strings.LastIndexByte(topic, '/')
	return topic[i+1:]
}

// ValidName reports whether name can be used as a single topic level:
// non-empty and free of '/', '+' and '#'.
func ValidName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "/+#")
}
