package registry

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/vk/planflow/internal/config"
	"github.com/vk/planflow/internal/ctxlog"
)

// PopulateFromModel decodes the model's profiles into the registries of the
// tasks that own them and assembles the configured pipelines. Sequential
// pipelines are built before raster pipelines so rasters can use them.
func (r *Registry) PopulateFromModel(ctx context.Context, model *config.Model, conv config.Converter) error {
	logger := ctxlog.FromContext(ctx)

	for _, def := range model.Profiles {
		owner, err := r.profileOwner(def.Task)
		if err != nil {
			return fmt.Errorf("profile %q: %w", def.Name, err)
		}
		p := owner.NewProfile()
		if err := conv.DecodeBody(ctx, p, def.Arguments); err != nil {
			return fmt.Errorf("task %q, profile %q: %w", def.Task, def.Name, err)
		}
		if err := r.RegisterProfile(def.Task, def.Name, p); err != nil {
			return err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(model.Pipelines)) {
		if _, exists := r.generators[name]; exists {
			return fmt.Errorf("pipeline %q: a generator with that name is already registered", name)
		}
		g, err := r.Sequential(name, model.Pipelines[name].Tasks...)
		if err != nil {
			return err
		}
		r.RegisterGenerator(g)
	}
	for _, name := range slices.Sorted(maps.Keys(model.Rasters)) {
		if _, exists := r.generators[name]; exists {
			return fmt.Errorf("raster pipeline %q: a generator with that name is already registered", name)
		}
		def := model.Rasters[name]
		g, err := r.Raster(name, def.Freespace, def.Transition, def.Raster)
		if err != nil {
			return err
		}
		r.RegisterGenerator(g)
	}

	logger.Debug("Registry populated from config model.",
		"profiles", len(model.Profiles),
		"pipelines", len(model.Pipelines),
		"rasters", len(model.Rasters),
	)
	return nil
}

// ValidateRegistry checks that every remap in the model points at a task
// that owns profiles and at a profile that task has.
func (r *Registry) ValidateRegistry(ctx context.Context, model *config.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, remap := range model.Remaps {
		owner, err := r.profileOwner(remap.Task)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s remap: %v", remap.Kind, err))
			continue
		}
		known := owner.ProfileNames()
		for _, from := range slices.Sorted(maps.Keys(remap.Names)) {
			to := remap.Names[from]
			if from == to {
				logger.Warn("Remap maps a profile onto itself.", "kind", remap.Kind, "task", remap.Task, "profile", from)
			}
			if !slices.Contains(known, to) {
				errs = append(errs, fmt.Sprintf("%s remap for task '%s': '%s' maps to unknown profile '%s'", remap.Kind, remap.Task, from, to))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
