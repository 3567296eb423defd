// Package motion provides the declarative motion DSL and the Action Stepper.
//
// A Movement is an immutable intent for one actuator: a target, whether it
// is relative to the actuator's position, and an optional stop predicate.
// An Action pairs actuators with Movements that run concurrently; a Sequence
// is an ordered list of Actions that run one after another.
//
// Builders capture configuration, not results. ActionBuilder.Build
// re-evaluates every captured movement function, so the same builder can be
// replayed with different live values:
//
//	seq := motion.NewSequence("wave").
//	    Then(motion.NewAction("raise").WithSpeed(motion.SpeedFast).
//	        RotateTo(shoulder, 90).
//	        ExtendTo(gripper, 100)).
//	    Then(motion.NewAction("seek").
//	        ForwardUntil(pan, limitSwitch.Fired)).
//	    Build()
//
// # Stepping
//
// Stepper advances every pair of an Action by one increment per tick, in
// insertion order, until all pairs report completion. It is single-threaded
// by construction so actuators sharing a bus are never driven in parallel.
package motion
