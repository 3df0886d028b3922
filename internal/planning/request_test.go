package planning

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/profile"
)

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o600)
}

func TestRequestEqual(t *testing.T) {
	base := func() *Request {
		return &Request{
			Name:                 "raster",
			Instructions:         sampleProgram(),
			Profile:              "FAST",
			PlanProfileRemapping: profile.Remapping{"TOTG": {"A": "B"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(r *Request)
		equal  bool
	}{
		{"identical", func(*Request) {}, true},
		{"env state ignored", func(r *Request) { r.EnvState = map[string]float64{"j1": 1} }, true},
		{"commands ignored", func(r *Request) { r.Commands = []string{"reset"} }, true},
		{"nil and empty remap", func(r *Request) { r.CompositeProfileRemapping = profile.Remapping{} }, true},
		{"name", func(r *Request) { r.Name = "freespace" }, false},
		{"profile", func(r *Request) { r.Profile = "SLOW" }, false},
		{"remap", func(r *Request) { r.PlanProfileRemapping.Set("TOTG", "A", "C") }, false},
		{"seed", func(r *Request) { r.Seed = instruction.NewComposite() }, false},
		{"instructions", func(r *Request) { r.Instructions.Description = "changed" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := base(), base()
			tt.mutate(b)
			assert.Equal(t, tt.equal, a.Equal(b))
			assert.Equal(t, tt.equal, b.Equal(a))
		})
	}

	var nilReq *Request
	assert.True(t, nilReq.Equal(nil))
	assert.False(t, base().Equal(nil))
}
