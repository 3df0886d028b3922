package app

import (
	"github.com/vk/planflow/internal/process"
	"github.com/vk/planflow/internal/registry"
	"github.com/vk/planflow/internal/totg"
)

const (
	// CheckInputTaskName is the name the input check task is registered under.
	CheckInputTaskName = "check_input"
	// FreespacePipeline and RasterPipeline are registered unless the
	// configuration defines generators with the same names.
	FreespacePipeline = "freespace"
	RasterPipeline    = "raster"
)

// CheckInputModule registers the input check task under CheckInputTaskName.
type CheckInputModule struct{}

func (CheckInputModule) Register(r *registry.Registry) {
	r.RegisterTask(process.NewCheckInputTask(CheckInputTaskName))
}

// coreModules is the definitive list of all modules that are compiled into
// the planflow binary.
var coreModules = []registry.Module{
	CheckInputModule{},
	&totg.Module{},
}
