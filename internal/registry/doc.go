// Package registry is the glue between compiled pipeline stages and the
// names that configuration and requests refer to them by.
//
// Modules register their tasks and generators at startup. Pipelines
// declared in configuration are then assembled from those names, profiles
// are routed to the task that owns them, and the registry is validated so
// that a remap or pipeline pointing at something that does not exist fails
// before any request runs.
package registry
