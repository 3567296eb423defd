package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/audit"
	"github.com/nerrad567/gray-motion-core/internal/auth"
	"github.com/nerrad567/gray-motion-core/internal/bus"
	"github.com/nerrad567/gray-motion-core/internal/executor"
	"github.com/nerrad567/gray-motion-core/internal/history"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/config"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/database"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/logging"
	"github.com/nerrad567/gray-motion-core/internal/rig"
	"github.com/nerrad567/gray-motion-core/internal/smooth"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Controller executes commands. *rig.Controller satisfies it.
type Controller interface {
	RunSequence(name, source string) (string, error)
	Stop(source string) (string, error)
	PlayScene(name, source string) (*smooth.Scene, error)
	FireTrigger(name string) error
	SetEnabled(on bool)
	Status() rig.Status
}

// Library describes what can be run. *rig.Rig satisfies it.
type Library interface {
	Sequences() []rig.SequenceInfo
	SceneNames() []string
}

// ConnectionChecker reports whether an optional backend is connected.
type ConnectionChecker interface {
	IsConnected() bool
}

// Authenticator checks operator logins. *auth.Authenticator satisfies it.
type Authenticator interface {
	Login(password string) (*auth.Token, error)
	Verify(raw string) (*auth.Claims, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Logger     *logging.Logger
	Controller Controller
	Library    Library
	History    history.Repository // Optional: /runs answers 503 without it
	Audit      audit.Repository   // Optional: /audit answers 503 without it
	Events     *bus.Registry      // Optional: WebSocket relay is disabled without it
	DB         *database.DB       // Optional: database pool metrics
	MQTT       ConnectionChecker  // Optional: MQTT connection metric
	Panel      http.Handler       // Optional: operator console under /panel/
	Auth       Authenticator      // Optional: commands are open without it
	Version    string
}

// Server is the HTTP API server for the motion rig.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	ctrl      Controller
	library   Library
	history   history.Repository
	audit     audit.Repository
	events    *bus.Registry
	db        *database.DB
	mqtt      ConnectionChecker
	panel     http.Handler
	auth      Authenticator
	version   string
	startTime time.Time

	server   *http.Server
	listener net.Listener
	hub      *eventHub
	cancel   context.CancelFunc

	relayMu  sync.Mutex
	seqRelay *bus.Subscription[executor.SequenceEvent]
	scnRelay *bus.Subscription[rig.SceneEvent]
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Controller == nil {
		return nil, fmt.Errorf("controller is required")
	}
	if deps.Library == nil {
		return nil, fmt.Errorf("library is required")
	}

	return &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		ctrl:      deps.Controller,
		library:   deps.Library,
		history:   deps.History,
		audit:     deps.Audit,
		events:    deps.Events,
		db:        deps.DB,
		mqtt:      deps.MQTT,
		panel:     deps.Panel,
		auth:      deps.Auth,
		version:   deps.Version,
		startTime: time.Now(),
		hub:       newEventHub(deps.Logger),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It starts the event hub, relays bus events to it, binds the listener
// and serves in a background goroutine. The server can be stopped with
// Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go func() {
		<-srvCtx.Done()
		s.hub.shutdown()
	}()

	if err := s.relayEvents(); err != nil {
		s.logger.Warn("failed to relay events to WebSocket", "error", err)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	s.listener = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// relayEvents forwards sequence and scene events to WebSocket clients.
func (s *Server) relayEvents() error {
	if s.events == nil {
		return nil
	}

	seq, err := bus.Subscribe(s.events, executor.EventsKey, func(ev executor.SequenceEvent) {
		s.hub.publish(ChannelSequenceEvents, ev)
		s.hub.publish(ChannelStatus, s.ctrl.Status())
	})
	if err != nil {
		return err
	}
	scn, err := bus.Subscribe(s.events, rig.SceneEventsKey, func(ev rig.SceneEvent) {
		s.hub.publish(ChannelSceneEvents, ev)
	})
	if err != nil {
		seq.Unsubscribe()
		return err
	}

	s.relayMu.Lock()
	s.seqRelay, s.scnRelay = seq, scn
	s.relayMu.Unlock()
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	s.relayMu.Lock()
	if s.seqRelay != nil {
		s.seqRelay.Unsubscribe()
	}
	if s.scnRelay != nil {
		s.scnRelay.Unsubscribe()
	}
	s.seqRelay, s.scnRelay = nil, nil
	s.relayMu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
