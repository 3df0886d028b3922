/*
Package taskflow builds and runs dependency graphs of planning work.

A Graph holds named tasks and the edges between them. Generators build one
graph each and composite generators Embed the graphs of their children, so
a whole pipeline is a single flat DAG by the time it runs. Embedded nodes
keep unique ids by prefixing their nodeid.Address with the embedding site.

The Executor runs a graph on a fixed pool of workers. A node starts only
after every predecessor succeeded. The first failure cancels the run's
context and every transitive dependent of the failed node is skipped.

Outcome is the single-fire completion signal a generator settles when its
graph finishes or fails.
*/
package taskflow
