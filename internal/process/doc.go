// Package process defines the contracts between pipeline stages: the Input
// every task reads and mutates, the Info record it leaves behind, leaf Tasks,
// and Generators that turn an Input into a taskflow.Graph.
//
// SequentialGenerator chains leaf tasks. RasterGenerator validates a raster
// program and composes the graphs of three child generators into one.
package process
