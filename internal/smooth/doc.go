// Package smooth drives servos along time-based motion profiles.
//
// Unlike the step-until-done rotators in package actuator, a smooth move has
// a fixed duration. A Scheduler owns every in-flight Task and advances them
// all from one periodic tick source, computing each intermediate angle from
// a SoftLanding profile that decelerates near the endpoint.
//
// Each tick polls the scheduler's kill switch and each task's own cancel
// flag. When either is set the task stops where it is, the servo is
// released and the task finishes as killed.
//
// A Scene groups tasks started together; Scene.Wait returns once every
// participant has finished.
package smooth
