// Package profile resolves the configuration a pipeline task should use for
// one instruction.
//
// Each task owns a Registry of its own profile type, seeded with a
// "DEFAULT" entry. A requested profile name is first passed through the
// request's Remapping for the task, then resolved with this precedence:
// the instruction's per-task override, the registry entry for the name, the
// registry's "DEFAULT" entry, and finally the caller's fallback.
package profile
