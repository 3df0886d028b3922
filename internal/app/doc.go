// Package app wires configuration, task modules and the planning server into
// one runnable application, decoupled from any specific entrypoint like a
// CLI or server.
package app
