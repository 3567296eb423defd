package audit

import (
	"context"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/rig"
	"github.com/nerrad567/gray-motion-core/internal/smooth"
)

// writeTimeout bounds one audit insert on the command path.
const writeTimeout = 2 * time.Second

// Commander is the rig command surface. *rig.Controller satisfies it.
type Commander interface {
	RunSequence(name, source string) (string, error)
	Stop(source string) (string, error)
	PlayScene(name, source string) (*smooth.Scene, error)
	FireTrigger(name string) error
	SetEnabled(on bool)
	Status() rig.Status
}

// Logger defines the logging interface used by the controller.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Controller records every command passed to the wrapped Commander.
// Audit failures are logged and never fail the command.
type Controller struct {
	inner  Commander
	repo   Repository
	logger Logger
}

// WrapController audits commands sent to inner.
func WrapController(inner Commander, repo Repository, logger Logger) *Controller {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Controller{inner: inner, repo: repo, logger: logger}
}

// RunSequence runs a library sequence.
func (c *Controller) RunSequence(name, source string) (string, error) {
	runID, err := c.inner.RunSequence(name, source)
	c.record(Entry{Action: ActionRunSequence, Target: name, Source: source, RunID: runID}, err)
	return runID, err
}

// Stop raises the emergency stop.
func (c *Controller) Stop(source string) (string, error) {
	runID, err := c.inner.Stop(source)
	c.record(Entry{Action: ActionStop, Source: source, RunID: runID}, err)
	return runID, err
}

// PlayScene starts a smooth scene.
func (c *Controller) PlayScene(name, source string) (*smooth.Scene, error) {
	scene, err := c.inner.PlayScene(name, source)
	c.record(Entry{Action: ActionPlayScene, Target: name, Source: source}, err)
	return scene, err
}

// FireTrigger fires a named trigger. Triggers carry no source of their own.
func (c *Controller) FireTrigger(name string) error {
	err := c.inner.FireTrigger(name)
	c.record(Entry{Action: ActionFireTrigger, Target: name}, err)
	return err
}

// SetEnabled switches the rig mode.
func (c *Controller) SetEnabled(on bool) {
	c.inner.SetEnabled(on)
	c.record(Entry{Action: ActionSetMode, Details: map[string]any{"enabled": on}}, nil)
}

// Status passes through unaudited.
func (c *Controller) Status() rig.Status { return c.inner.Status() }

func (c *Controller) record(e Entry, cmdErr error) {
	e.Result = ResultAccepted
	if cmdErr != nil {
		e.Result = ResultRejected
		e.Error = cmdErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := c.repo.Create(ctx, &e); err != nil {
		c.logger.Warn("audit write failed", "action", e.Action, "target", e.Target, "error", err)
	}
}
