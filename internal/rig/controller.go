package rig

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/bus"
	"github.com/nerrad567/gray-motion-core/internal/executor"
	"github.com/nerrad567/gray-motion-core/internal/smooth"
)

// SceneEventsKey carries a SceneEvent for every scene that finished.
var SceneEventsKey = bus.NewKey[SceneEvent]("scene.events")

// SceneEvent announces the end of a smooth scene.
type SceneEvent struct {
	Scene      string         `json:"scene"`
	Outcome    smooth.Outcome `json:"outcome"`
	Source     string         `json:"source,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMS int64          `json:"duration_ms"`
	Rotators   []RotatorEnd   `json:"rotators"`
}

// RotatorEnd is where one scene participant ended up.
type RotatorEnd struct {
	Rotator string         `json:"rotator"`
	Outcome smooth.Outcome `json:"outcome"`
	Angle   float64        `json:"angle"`
	Error   string         `json:"error,omitempty"`
}

// Submitter queues executor requests. *executor.Executor satisfies it.
type Submitter interface {
	Submit(req executor.Request) (string, error)
	Status() executor.Status
}

// Status is a snapshot of the rig and its executor.
type Status struct {
	Rig         string          `json:"rig"`
	Enabled     bool            `json:"enabled"`
	Killed      bool            `json:"killed"`
	ActiveMoves int             `json:"active_moves"`
	Executor    executor.Status `json:"executor"`
}

// Controller is the command surface shared by every transport: run a
// library sequence, stop, play a scene, fire a trigger, switch mode.
//
// Thread Safety: All methods are safe for concurrent use.
type Controller struct {
	rig   *Rig
	exec  Submitter
	sched *smooth.Scheduler
	reg   *bus.Registry

	wg sync.WaitGroup
}

// NewController wires the rig to its executor and smooth scheduler. Scene
// completions are published on reg under SceneEventsKey; reg may be nil.
func NewController(r *Rig, exec Submitter, sched *smooth.Scheduler, reg *bus.Registry) *Controller {
	return &Controller{rig: r, exec: exec, sched: sched, reg: reg}
}

// Rig returns the controlled rig.
func (c *Controller) Rig() *Rig { return c.rig }

// RunSequence queues a library sequence and returns its run ID.
func (c *Controller) RunSequence(name, source string) (string, error) {
	req, err := c.rig.Request(name, source)
	if err != nil {
		return "", err
	}
	return c.exec.Submit(req)
}

// Stop kills every smooth move and queues the stop sequence. When the
// library has no stop sequence the kill is all that happens and the
// returned run ID is empty.
func (c *Controller) Stop(source string) (string, error) {
	req, err := c.rig.Stop(source)
	if err != nil {
		return "", err
	}
	return c.exec.Submit(req)
}

// PlayScene starts a library scene. A SceneEvent is published when the
// last participant finishes.
func (c *Controller) PlayScene(name, source string) (*smooth.Scene, error) {
	if !c.rig.Enabled() {
		return nil, ErrDisabled
	}
	started := time.Now()
	scene, err := c.rig.PlayScene(c.sched, name)
	if err != nil {
		return nil, err
	}
	c.rig.logger.Info("scene started", "scene", name, "source", source)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-scene.Done()
		c.sceneFinished(scene, source, started)
	}()
	return scene, nil
}

func (c *Controller) sceneFinished(scene *smooth.Scene, source string, started time.Time) {
	ev := SceneEvent{
		Scene:      scene.Name(),
		Outcome:    smooth.OutcomeCompleted,
		Source:     source,
		StartedAt:  started,
		DurationMS: time.Since(started).Milliseconds(),
	}
	// Done is already closed, so Wait returns at once.
	results, _ := scene.Wait(context.Background())
	for _, r := range results {
		end := RotatorEnd{Rotator: r.Rotator, Outcome: r.Outcome, Angle: r.Angle}
		if r.Err != nil {
			end.Error = r.Err.Error()
		}
		ev.Rotators = append(ev.Rotators, end)
		if r.Outcome != smooth.OutcomeCompleted && ev.Outcome != smooth.OutcomeFailed {
			ev.Outcome = r.Outcome
		}
	}

	c.rig.logger.Info("scene finished", "scene", ev.Scene, "outcome", ev.Outcome)
	if c.reg == nil {
		return
	}
	if err := bus.Publish(c.reg, SceneEventsKey, ev); err != nil {
		c.rig.logger.Warn("publishing scene event", "scene", ev.Scene, "error", err)
	}
}

// FireTrigger fires a declared trigger.
func (c *Controller) FireTrigger(name string) error {
	if err := c.rig.Triggers().Fire(name); err != nil {
		return err
	}
	c.rig.logger.Debug("trigger fired", "trigger", name)
	return nil
}

// SetEnabled switches the rig mode.
func (c *Controller) SetEnabled(on bool) { c.rig.SetEnabled(on) }

// Status returns a snapshot of the rig and executor.
func (c *Controller) Status() Status {
	st := Status{
		Rig:      c.rig.ID(),
		Enabled:  c.rig.Enabled(),
		Killed:   c.rig.Killed(),
		Executor: c.exec.Status(),
	}
	if c.sched != nil {
		st.ActiveMoves = c.sched.Active()
	}
	return st
}

// Wait blocks until every scene started through the controller has been
// reported.
func (c *Controller) Wait() { c.wg.Wait() }
