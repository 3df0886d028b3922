package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Manipulators []*manipulatorBlock `hcl:"manipulator,block"`
	Profiles     []*profileBlock     `hcl:"profile,block"`
	Remaps       []*remapBlock       `hcl:"remap,block"`
	Pipelines    []*pipelineBlock    `hcl:"pipeline,block"`
	Rasters      []*rasterBlock      `hcl:"raster_pipeline,block"`
}

type manipulatorBlock struct {
	Name     string        `hcl:"name,label"`
	Joints   []*jointBlock `hcl:"joint,block"`
	DefRange hcl.Range     `hcl:",def_range"`
}

type jointBlock struct {
	Name            string  `hcl:"name,label"`
	MaxVelocity     float64 `hcl:"max_velocity"`
	MaxAcceleration float64 `hcl:"max_acceleration"`
}

// profileBlock keeps its body undecoded; the owning task's profile type
// decides which attributes are valid.
type profileBlock struct {
	Task     string    `hcl:"task,label"`
	Name     string    `hcl:"name,label"`
	Body     hcl.Body  `hcl:",remain"`
	DefRange hcl.Range `hcl:",def_range"`
}

type remapBlock struct {
	Kind     string    `hcl:"kind,label"`
	Task     string    `hcl:"task,label"`
	Body     hcl.Body  `hcl:",remain"`
	DefRange hcl.Range `hcl:",def_range"`
}

type pipelineBlock struct {
	Name     string    `hcl:"name,label"`
	Tasks    []string  `hcl:"tasks"`
	DefRange hcl.Range `hcl:",def_range"`
}

type rasterBlock struct {
	Name       string    `hcl:"name,label"`
	Freespace  string    `hcl:"freespace"`
	Transition string    `hcl:"transition"`
	Raster     string    `hcl:"raster"`
	DefRange   hcl.Range `hcl:",def_range"`
}
