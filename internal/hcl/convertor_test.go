package hcl

import (
	"context"
	"math"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProfile struct {
	Scaling   float64 `planflow:"scaling"`
	Steps     int     `planflow:"steps"`
	Enabled   bool    `planflow:"enabled"`
	Name      string  `planflow:"name,omitempty"`
	Untagged  float64
	unexposed float64 `planflow:"hidden"`
}

func parseArgs(t *testing.T, src string) map[string]hcl.Expression {
	t.Helper()
	file, diags := hclsyntax.ParseConfig([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	attrs, diags := file.Body.JustAttributes()
	require.False(t, diags.HasErrors(), diags.Error())
	args := make(map[string]hcl.Expression)
	for name, attr := range attrs {
		args[name] = attr.Expr
	}
	return args
}

func TestDecodeBody(t *testing.T) {
	target := &testProfile{Scaling: 1, Steps: 3, Enabled: true, Untagged: 7}
	args := parseArgs(t, `
scaling = pi / 4
steps   = "12"
enabled = false
`)

	require.NoError(t, NewConverter(NewEvalContext()).DecodeBody(context.Background(), target, args))

	assert.InDelta(t, math.Pi/4, target.Scaling, 1e-12)
	assert.Equal(t, 12, target.Steps, "strings convert to numbers")
	assert.False(t, target.Enabled)
	assert.Equal(t, "", target.Name, "fields without an argument keep their value")
	assert.Equal(t, 7.0, target.Untagged)
}

func TestDecodeBodyFunctions(t *testing.T) {
	target := &testProfile{}
	args := parseArgs(t, `
scaling = min(0.5, abs(-0.25), max(1, 2))
steps   = floor(2.7) + ceil(0.2)
`)
	require.NoError(t, NewConverter(NewEvalContext()).DecodeBody(context.Background(), target, args))
	assert.Equal(t, 0.25, target.Scaling)
	assert.Equal(t, 3, target.Steps)
}

func TestDecodeBodyErrors(t *testing.T) {
	conv := NewConverter(NewEvalContext())
	tests := []struct {
		name    string
		target  any
		src     string
		wantErr string
	}{
		{"unknown argument", &testProfile{}, `speed = 1`, `unsupported argument "speed"`},
		{"unexported field", &testProfile{}, `hidden = 1`, `unsupported argument "hidden"`},
		{"wrong type", &testProfile{}, `enabled = "maybe"`, "failed to decode argument 'enabled'"},
		{"fraction into int", &testProfile{}, `steps = 1.5`, "failed to decode argument 'steps'"},
		{"null", &testProfile{}, `scaling = null`, "must not be null"},
		{"unknown variable", &testProfile{}, `scaling = tau`, "Unknown variable"},
		{"not a pointer", testProfile{}, ``, "non-nil pointer"},
		{"not a struct", new(float64), ``, "non-nil pointer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := conv.DecodeBody(context.Background(), tt.target, parseArgs(t, tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
