// Package cli builds the planflow command tree. It maps flags and positional
// arguments onto app.Config and reports usage mistakes as an ExitError with
// code 2, distinct from planning failures.
package cli
