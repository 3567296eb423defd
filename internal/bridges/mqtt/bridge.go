package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/bus"
	"github.com/nerrad567/gray-motion-core/internal/executor"
	mqttclient "github.com/nerrad567/gray-motion-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-motion-core/internal/rig"
	"github.com/nerrad567/gray-motion-core/internal/smooth"
)

// defaultStatusInterval is how often the retained status is refreshed.
const defaultStatusInterval = 30 * time.Second

var topics = mqttclient.Topics{}

// Client is the MQTT surface the bridge needs. *mqttclient.Client
// satisfies it.
type Client interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqttclient.MessageHandler) error
	Unsubscribe(topic string) error
	IsConnected() bool
	QoS() byte
}

// Controller executes commands. *rig.Controller satisfies it.
type Controller interface {
	RunSequence(name, source string) (string, error)
	Stop(source string) (string, error)
	PlayScene(name, source string) (*smooth.Scene, error)
	FireTrigger(name string) error
	Status() rig.Status
}

// Logger defines the logging interface used by the bridge.
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

// Options holds the bridge's collaborators.
type Options struct {
	// Client is the connected MQTT client.
	Client Client

	// Controller runs the commands received.
	Controller Controller

	// Registry carries executor and scene events to publish. Optional.
	Registry *bus.Registry

	// StatusInterval is how often the retained status is refreshed.
	// Default: 30 seconds.
	StatusInterval time.Duration

	// Logger is an optional structured logger.
	Logger Logger
}

// Metrics counts bridge traffic.
type Metrics struct {
	CommandsReceived uint64 `json:"commands_received"`
	CommandsFailed   uint64 `json:"commands_failed"`
	EventsPublished  uint64 `json:"events_published"`
	PublishFailures  uint64 `json:"publish_failures"`
}

// Bridge translates between MQTT topics and the rig controller.
type Bridge struct {
	client   Client
	ctrl     Controller
	registry *bus.Registry
	interval time.Duration
	logger   Logger

	commandsReceived atomic.Uint64
	commandsFailed   atomic.Uint64
	eventsPublished  atomic.Uint64
	publishFailures  atomic.Uint64

	mu         sync.Mutex
	subscribed []string
	seqSub     *bus.Subscription[executor.SequenceEvent]
	sceneSub   *bus.Subscription[rig.SceneEvent]

	done     chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
	stopOnce sync.Once
}

// NewBridge creates a bridge. Call Start to begin operation.
func NewBridge(opts Options) (*Bridge, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.Controller == nil {
		return nil, fmt.Errorf("controller is required")
	}
	interval := opts.StatusInterval
	if interval <= 0 {
		interval = defaultStatusInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Bridge{
		client:   opts.Client,
		ctrl:     opts.Controller,
		registry: opts.Registry,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Start subscribes to the command topics, starts forwarding events and
// begins status reporting.
func (b *Bridge) Start(ctx context.Context) error {
	if !b.started.CompareAndSwap(false, true) {
		return nil
	}

	for _, topic := range []string{
		topics.StopCommand(),
		topics.AllSequenceCommands(),
		topics.AllSceneCommands(),
		topics.AllTriggers(),
	} {
		if err := b.client.Subscribe(topic, b.client.QoS(), b.HandleMessage); err != nil {
			return fmt.Errorf("subscribe to %s: %w", topic, err)
		}
		b.mu.Lock()
		b.subscribed = append(b.subscribed, topic)
		b.mu.Unlock()
		b.logger.Debug("subscribed", "topic", topic)
	}

	if b.registry != nil {
		if err := b.forwardEvents(); err != nil {
			return err
		}
	}

	b.wg.Add(1)
	go b.statusLoop(ctx)

	b.logger.Info("mqtt bridge started", "subscriptions", len(b.subscribed))
	return nil
}

func (b *Bridge) forwardEvents() error {
	seqSub, err := bus.Subscribe(b.registry, executor.EventsKey, b.publishSequenceEvent)
	if err != nil {
		return fmt.Errorf("subscribe to sequence events: %w", err)
	}
	sceneSub, err := bus.Subscribe(b.registry, rig.SceneEventsKey, b.publishSceneEvent)
	if err != nil {
		seqSub.Unsubscribe()
		return fmt.Errorf("subscribe to scene events: %w", err)
	}

	b.mu.Lock()
	b.seqSub, b.sceneSub = seqSub, sceneSub
	b.mu.Unlock()
	return nil
}

// Stop unsubscribes from everything and publishes a final status.
// Safe to call multiple times.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.wg.Wait()

		b.mu.Lock()
		seqSub, sceneSub := b.seqSub, b.sceneSub
		subscribed := b.subscribed
		b.seqSub, b.sceneSub, b.subscribed = nil, nil, nil
		b.mu.Unlock()

		// Buffered events are still delivered before Done closes.
		if seqSub != nil {
			seqSub.Unsubscribe()
			<-seqSub.Done()
		}
		if sceneSub != nil {
			sceneSub.Unsubscribe()
			<-sceneSub.Done()
		}

		for _, topic := range subscribed {
			if err := b.client.Unsubscribe(topic); err != nil {
				b.logger.Debug("unsubscribe failed", "topic", topic, "error", err)
			}
		}

		b.PublishStatus()
		b.logger.Info("mqtt bridge stopped")
	})
}

// HandleMessage routes one inbound message. It is the handler registered
// for every command topic; the returned error is logged by the client.
func (b *Bridge) HandleMessage(topic string, payload []byte) error {
	b.commandsReceived.Add(1)
	if err := b.route(topic, payload); err != nil {
		b.commandsFailed.Add(1)
		b.logger.Warn("mqtt command failed", "topic", topic, "error", err)
		return err
	}
	return nil
}

func (b *Bridge) route(topic string, payload []byte) error {
	if topic == topics.StopCommand() {
		return b.handleStop(payload)
	}

	name := mqttclient.LastSegment(topic)
	prefix := strings.TrimSuffix(topic, name)
	if !mqttclient.ValidName(name) {
		return fmt.Errorf("%w: %s", ErrInvalidName, topic)
	}

	switch prefix {
	case mqttclient.TopicPrefixCommand + "/sequence/":
		return b.handleSequence(name, payload)
	case mqttclient.TopicPrefixCommand + "/scene/":
		return b.handleScene(name, payload)
	case mqttclient.TopicPrefixTrigger + "/":
		return b.ctrl.FireTrigger(name)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
}

func (b *Bridge) handleSequence(name string, payload []byte) error {
	cmd, err := parseCommand(payload)
	if err != nil {
		return err
	}
	runID, err := b.ctrl.RunSequence(name, cmd.Source)
	if err != nil {
		return err
	}
	b.logger.Info("sequence requested", "sequence", name, "run_id", runID, "source", cmd.Source)
	return nil
}

func (b *Bridge) handleStop(payload []byte) error {
	cmd, err := parseCommand(payload)
	if err != nil {
		// A malformed stop must still stop.
		b.logger.Warn("stop payload ignored", "error", err)
		cmd.Source = DefaultSource
	}
	runID, err := b.ctrl.Stop(cmd.Source)
	if err != nil {
		return err
	}
	b.logger.Warn("emergency stop requested", "run_id", runID, "source", cmd.Source)
	return nil
}

func (b *Bridge) handleScene(name string, payload []byte) error {
	cmd, err := parseCommand(payload)
	if err != nil {
		return err
	}
	if _, err := b.ctrl.PlayScene(name, cmd.Source); err != nil {
		return err
	}
	b.logger.Info("scene requested", "scene", name, "source", cmd.Source)
	return nil
}

func (b *Bridge) publishSequenceEvent(ev executor.SequenceEvent) {
	b.publishJSON(topics.SequenceEvent(ev.SequenceID), ev, false)
	b.PublishStatus()
}

func (b *Bridge) publishSceneEvent(ev rig.SceneEvent) {
	b.publishJSON(topics.SceneEvent(ev.Scene), ev, false)
}

// PublishStatus publishes the retained status snapshot now.
func (b *Bridge) PublishStatus() {
	b.publishJSON(topics.Status(), StatusMessage{
		Status:    b.ctrl.Status(),
		Timestamp: time.Now().UTC(),
	}, true)
}

func (b *Bridge) publishJSON(topic string, v any, retained bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		b.publishFailures.Add(1)
		b.logger.Error("marshalling mqtt payload", "topic", topic, "error", err)
		return
	}
	if err := b.client.Publish(topic, payload, b.client.QoS(), retained); err != nil {
		b.publishFailures.Add(1)
		b.logger.Warn("mqtt publish failed", "topic", topic, "error", err)
		return
	}
	b.eventsPublished.Add(1)
}

func (b *Bridge) statusLoop(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	b.PublishStatus()
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case <-ticker.C:
			if b.client.IsConnected() {
				b.PublishStatus()
			}
		}
	}
}

// Metrics returns the traffic counters.
func (b *Bridge) Metrics() Metrics {
	return Metrics{
		CommandsReceived: b.commandsReceived.Load(),
		CommandsFailed:   b.commandsFailed.Load(),
		EventsPublished:  b.eventsPublished.Load(),
		PublishFailures:  b.publishFailures.Load(),
	}
}
