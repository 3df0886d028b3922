package hcl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/planflow/internal/config"
	"github.com/vk/planflow/internal/ctxlog"
	"github.com/vk/planflow/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	evalCtx *hcl.EvalContext
}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{evalCtx: NewEvalContext()}
}

// Load parses every .hcl file under paths and merges all blocks into one
// model. Names must be unique across files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := config.NewModel()
	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	defined := make(map[string]hcl.Range)

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, l.evalCtx, &root)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if err := l.merge(model, &root, defined); err != nil {
			return nil, nil, fmt.Errorf("in HCL file %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.",
		"manipulators", len(model.Manipulators),
		"profiles", len(model.Profiles),
		"remaps", len(model.Remaps),
		"pipelines", len(model.Pipelines),
		"rasters", len(model.Rasters),
	)
	return model, NewConverter(l.evalCtx), nil
}

// merge translates the blocks of one file into the model. defined records
// where each named block was first declared.
func (l *Loader) merge(model *config.Model, root *fileRoot, defined map[string]hcl.Range) error {
	unique := func(kind, name string, at hcl.Range) error {
		key := kind + " " + name
		if prev, ok := defined[key]; ok {
			return duplicate(kind, name, prev, at)
		}
		defined[key] = at
		return nil
	}

	for _, m := range root.Manipulators {
		if err := unique("manipulator", m.Name, m.DefRange); err != nil {
			return err
		}
		model.Manipulators[m.Name] = translateManipulator(m)
	}
	for _, p := range root.Profiles {
		if err := unique("profile", p.Task+"."+p.Name, p.DefRange); err != nil {
			return err
		}
		def, err := translateProfile(p)
		if err != nil {
			return err
		}
		model.Profiles = append(model.Profiles, def)
	}
	for _, r := range root.Remaps {
		remap, err := l.translateRemap(r)
		if err != nil {
			return err
		}
		model.Remaps = append(model.Remaps, remap)
	}
	for _, p := range root.Pipelines {
		if err := unique("pipeline", p.Name, p.DefRange); err != nil {
			return err
		}
		model.Pipelines[p.Name] = &config.Pipeline{Name: p.Name, Tasks: slices.Clone(p.Tasks)}
	}
	for _, r := range root.Rasters {
		if err := unique("pipeline", r.Name, r.DefRange); err != nil {
			return err
		}
		model.Rasters[r.Name] = &config.RasterPipeline{
			Name:       r.Name,
			Freespace:  r.Freespace,
			Transition: r.Transition,
			Raster:     r.Raster,
		}
	}
	return nil
}

func duplicate(kind, name string, prev, at hcl.Range) error {
	return hcl.Diagnostics{&hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  fmt.Sprintf("Duplicate %s %q", kind, name),
		Detail:   fmt.Sprintf("A %s named %q was already declared at %s.", kind, name, prev.String()),
		Subject:  at.Ptr(),
	}}
}

func translateManipulator(m *manipulatorBlock) *config.Manipulator {
	out := &config.Manipulator{Name: m.Name}
	for _, j := range m.Joints {
		out.Joints = append(out.Joints, &config.Joint{
			Name:            j.Name,
			MaxVelocity:     j.MaxVelocity,
			MaxAcceleration: j.MaxAcceleration,
		})
	}
	return out
}

func translateProfile(p *profileBlock) (*config.ProfileDefinition, error) {
	attrs, diags := p.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("profile %q %q: %w", p.Task, p.Name, diags)
	}
	args := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		args[name] = attr.Expr
	}
	return &config.ProfileDefinition{Task: p.Task, Name: p.Name, Arguments: args}, nil
}

func (l *Loader) translateRemap(r *remapBlock) (*config.Remap, error) {
	kind, err := config.ParseRemapKind(r.Kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.DefRange.String(), err)
	}
	attrs, diags := r.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("remap %q %q: %w", r.Kind, r.Task, diags)
	}
	names := make(map[string]string, len(attrs))
	for from, attr := range attrs {
		val, diags := attr.Expr.Value(l.evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("remap %q %q: %w", r.Kind, r.Task, diags)
		}
		if val.IsNull() || !val.Type().Equals(cty.String) {
			return nil, fmt.Errorf("remap %q %q: %s must be a string, got %s", r.Kind, r.Task, from, val.Type().FriendlyName())
		}
		names[from] = val.AsString()
	}
	return &config.Remap{Kind: kind, Task: r.Task, Names: names}, nil
}

// findAllHCLFiles walks all given paths and returns a flat, de-duplicated
// list of all .hcl files found. Every path must exist.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config path %s does not exist", path)
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		files, err := fsutil.FindFiles(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if _, wasSeen := seen[f]; !wasSeen {
				allFiles = append(allFiles, f)
				seen[f] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
