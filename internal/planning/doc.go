// Package planning is the front door of the pipeline: a Request names a
// registered generator and carries the program to plan, and a Server turns
// it into a running task graph whose completion is observed through a
// Future. Requests round-trip through YAML.
package planning
