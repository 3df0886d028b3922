// Package timeparam assigns time stamps to joint trajectories so that they
// respect per-joint velocity and acceleration limits.
//
// The Solver interface is what pipeline tasks depend on. TOTG is the
// implementation shipped with planflow: it treats the trajectory as a
// piecewise-linear path in joint space, limits the speed at each corner by a
// blend whose deviation is bounded by the path tolerance, and times every
// segment with a trapezoidal speed profile. Its output is a flat sequence of
// moves carrying state waypoints, optionally resampled at a fixed interval.
package timeparam
