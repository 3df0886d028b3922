package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter binds raw configuration bodies to Go structs. It is the bridge
// between a profile block and the profile type of the task that owns it.
type Converter interface {
	// DecodeBody evaluates args and stores each one in the field of target
	// whose `planflow` tag matches its name. Fields without a matching
	// argument keep their value, so target should hold the defaults.
	// Arguments that match no field are an error.
	DecodeBody(ctx context.Context, target any, args map[string]hcl.Expression) error
}
