// Package rig assembles a motion rig from configuration.
//
// A Rig opens the drivers named in the config (simulated, feetech serial
// servos, GPIO step/dir steppers), wraps them in actuators and smooth
// rotators, declares the triggers that end trigger-bound moves, and turns
// the YAML sequence and scene library into motion sequences and smooth
// moves on demand.
//
// The Rig also serves as the executor's hooks: it gates requests on the
// rig mode, relaxes actuators after each run and logs abandoned runs.
//
//	r, err := rig.New(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer r.Close(ctx)
//
//	exec := executor.New(r.ExecutorConfig(), r.Actuators(),
//	    executor.WithHooks(r), executor.WithAbandonHandler(r))
//	req, err := r.Request("wave", "cli")
package rig
