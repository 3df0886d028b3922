package integration_tests

import (
	"fmt"
	"strings"
)

// rasterRequest builds a request for generator with one composite per
// description, each moving the joint by half a radian.
func rasterRequest(generator string, descriptions ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\ninstructions:\n  kind: composite\n  manipulator: {name: arm}\n  children:\n", generator)
	for i, d := range descriptions {
		fmt.Fprintf(&b, "    - kind: composite\n      description: %s\n      manipulator: {name: arm}\n      children:\n", d)
		for _, pos := range []float64{float64(i) / 2, float64(i+1) / 2} {
			fmt.Fprintf(&b, "        - {kind: move, waypoint: {kind: joint, names: [j1], position: [%g]}}\n", pos)
		}
	}
	return b.String()
}

const armHCL = `
manipulator "arm" {
  joint "j1" {
    max_velocity     = 1
    max_acceleration = 1
  }
}
`
