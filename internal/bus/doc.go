// Package bus is a small in-process publish/subscribe layer with strongly
// typed topics.
//
// Each subscriber has its own bounded buffer and delivery goroutine, so a
// slow consumer never blocks a publisher. When a buffer is full the oldest
// queued item is discarded to make room (drop-oldest). Delivery is
// best-effort: the bus is meant for lifecycle events, telemetry and inbound
// requests, not for data that must never be lost.
//
// Topics are looked up through a Registry using typed keys, so the payload
// type of a topic is fixed at compile time:
//
//	var Events = bus.NewKey[executor.SequenceEvent]("sequence.events")
//
//	topic, err := bus.Get(reg, Events)
//	sub := topic.Subscribe(func(ev executor.SequenceEvent) { ... })
//	defer sub.Unsubscribe()
package bus
