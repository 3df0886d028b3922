// Package instruction defines the robot program data model: waypoints, the
// move, plan and composite instructions built on them, and helpers to flatten
// a nested program into its leaves.
//
// Both Waypoint and Instruction are closed sets. Code that needs a specific
// variant uses a type switch or one of the As* helpers, which report
// ErrWrongVariant instead of panicking.
package instruction
