// Package totg is the time-optimal trajectory generation stage of the
// pipeline. It flattens a segmented program, times it with a
// timeparam.Solver, splits the result back into the original segments and,
// when segments carry their own profiles, rescales each segment's timing.
package totg
