package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-motion-core/internal/infrastructure/logging"
)

// Event channels a client can follow.
const (
	ChannelSequenceEvents = "sequence.event"
	ChannelSceneEvents    = "scene.event"
	ChannelStatus         = "status"
)

// Frame types on the event stream.
const (
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
	FramePing        = "ping"
	FramePong        = "pong"
	FrameAck         = "ack"
	FrameEvent       = "event"
	FrameError       = "error"
)

// streamBuffer is the per-client outbound frame buffer.
const streamBuffer = 64

// Frame is one message on the event stream, in either direction.
//
// Clients send subscribe, unsubscribe and ping frames. The server answers
// with ack, pong or error frames carrying the same ID, and pushes event
// frames for every channel the client follows.
type Frame struct {
	Type     string   `json:"type"`
	ID       string   `json:"id,omitempty"`
	Channel  string   `json:"channel,omitempty"`
	Channels []string `json:"channels,omitempty"`
	At       string   `json:"at,omitempty"`
	Payload  any      `json:"payload,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func knownChannel(ch string) bool {
	switch ch {
	case ChannelSequenceEvents, ChannelSceneEvents, ChannelStatus:
		return true
	}
	return false
}

// streamClient is one connected event stream.
type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

// eventHub fans rig events out to stream clients.
//
// The hub owns every client's channel set and send channel. Sends happen
// under the read lock and closes under the write lock, so a frame is never
// sent on a closed channel.
type eventHub struct {
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*streamClient]map[string]bool
	closed  bool
}

func newEventHub(logger *logging.Logger) *eventHub {
	return &eventHub{
		logger:  logger,
		clients: make(map[*streamClient]map[string]bool),
	}
}

// add registers c. It returns false once the hub has shut down.
func (h *eventHub) add(c *streamClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = make(map[string]bool)
	h.logger.Debug("event stream opened", "clients", len(h.clients))
	return true
}

// remove forgets c and closes its send channel. Safe to call twice.
func (h *eventHub) remove(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.logger.Debug("event stream closed", "clients", len(h.clients))
}

// follow adds or drops channels for c.
func (h *eventHub) follow(c *streamClient, channels []string, on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c]
	if !ok {
		return
	}
	for _, ch := range channels {
		if on {
			set[ch] = true
		} else {
			delete(set, ch)
		}
	}
}

// publish pushes payload to every client following channel. A client whose
// buffer is full misses the frame.
func (h *eventHub) publish(channel string, payload any) {
	data, err := json.Marshal(Frame{
		Type:    FrameEvent,
		Channel: channel,
		At:      time.Now().UTC().Format(time.RFC3339Nano),
		Payload: payload,
	})
	if err != nil {
		h.logger.Error("encoding event frame", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	dropped := 0
	for c, set := range h.clients {
		if !set[channel] {
			continue
		}
		select {
		case c.send <- data:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("event stream clients lagging", "channel", channel, "dropped", dropped)
	}
}

// reply queues f for c alone.
func (h *eventHub) reply(c *streamClient, f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *eventHub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// shutdown disconnects every client and refuses new ones.
func (h *eventHub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		if c.conn != nil {
			c.conn.Close()
		}
	}
}

// handleWebSocket upgrades to an event stream.
//
// Browsers must present an Origin allowed by the CORS configuration;
// non-browser clients without an Origin header are accepted.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.isAllowedOrigin(origin)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &streamClient{conn: conn, send: make(chan []byte, streamBuffer)}
	if !s.hub.add(c) {
		conn.Close()
		return
	}
	go s.writeStream(c)
	go s.readStream(c)
}

// readStream handles client frames until the connection drops.
func (s *Server) readStream(c *streamClient) {
	defer func() {
		s.hub.remove(c)
		c.conn.Close()
	}()

	keepalive := s.wsKeepalive()
	c.conn.SetReadLimit(int64(s.wsCfg.MaxMessageSize))
	//nolint:errcheck // A failed deadline surfaces as a read error
	c.conn.SetReadDeadline(time.Now().Add(keepalive))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(keepalive))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("event stream read failed", "error", err)
			}
			return
		}
		// Browsers may not answer protocol pings; any frame counts.
		//nolint:errcheck // A failed deadline surfaces as a read error
		c.conn.SetReadDeadline(time.Now().Add(keepalive))
		s.hub.reply(c, s.answer(c, data))
	}
}

// answer applies one client frame and builds the reply.
func (s *Server) answer(c *streamClient, data []byte) Frame {
	var in Frame
	if err := json.Unmarshal(data, &in); err != nil {
		return Frame{Type: FrameError, Error: "invalid JSON frame"}
	}

	switch in.Type {
	case FramePing:
		return Frame{Type: FramePong, ID: in.ID}
	case FrameSubscribe:
		for _, ch := range in.Channels {
			if !knownChannel(ch) {
				return Frame{Type: FrameError, ID: in.ID, Error: "unknown channel: " + ch}
			}
		}
		s.hub.follow(c, in.Channels, true)
	case FrameUnsubscribe:
		s.hub.follow(c, in.Channels, false)
	default:
		return Frame{Type: FrameError, ID: in.ID, Error: "unknown frame type: " + in.Type}
	}
	return Frame{Type: FrameAck, ID: in.ID, Channels: in.Channels}
}

// writeStream drains c.send and keeps the connection alive with pings.
func (s *Server) writeStream(c *streamClient) {
	ping := time.NewTicker(time.Duration(s.wsCfg.PingInterval) * time.Second)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()
	wait := time.Duration(s.wsCfg.PongTimeout) * time.Second

	for {
		kind, data := websocket.TextMessage, []byte(nil)
		select {
		case msg, ok := <-c.send:
			if !ok {
				//nolint:errcheck // Connection is going away
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			data = msg
		case <-ping.C:
			kind = websocket.PingMessage
		}
		//nolint:errcheck // A failed deadline surfaces as a write error
		c.conn.SetWriteDeadline(time.Now().Add(wait))
		if err := c.conn.WriteMessage(kind, data); err != nil {
			return
		}
	}
}

func (s *Server) wsKeepalive() time.Duration {
	return time.Duration(s.wsCfg.PingInterval+s.wsCfg.PongTimeout) * time.Second
}
