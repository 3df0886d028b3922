package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/vk/planflow/internal/config"
	"github.com/vk/planflow/internal/ctxlog"
	"github.com/vk/planflow/internal/env"
	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/planning"
	"github.com/vk/planflow/internal/registry"
	"github.com/vk/planflow/internal/totg"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	model    *config.Model
	registry *registry.Registry
	server   *planning.Server
}

// NewApp is the constructor for the main application. Programs are written
// to outW and logs to logW. When no modules are given, the core modules are
// registered.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, converter, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	environment := env.NewStatic()
	for _, name := range slices.Sorted(maps.Keys(model.Manipulators)) {
		if err := environment.AddManipulator(name, model.Manipulators[name].Limits()); err != nil {
			return nil, err
		}
	}

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	if err := registerModules(reg, modules); err != nil {
		return nil, err
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := registerDefaultPipelines(ctx, reg, model, converter); err != nil {
		return nil, err
	}
	if err := reg.ValidateRegistry(ctx, model); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	server := planning.NewServer(environment, cfg.Workers)
	for _, g := range reg.Generators() {
		if err := server.RegisterGenerator(g); err != nil {
			return nil, err
		}
	}
	logger.Info("Planning server ready.",
		"manipulators", environment.Manipulators(),
		"generators", server.GeneratorNames(),
		"workers", cfg.Workers,
	)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		model:    model,
		registry: reg,
		server:   server,
	}, nil
}

// registerModules turns a duplicate-registration panic into an error.
func registerModules(reg *registry.Registry, modules []registry.Module) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("module registration panicked: %v", r)
		}
	}()
	for _, mod := range modules {
		mod.Register(reg)
	}
	return nil
}

// registerDefaultPipelines adds the freespace and raster generators around
// the configured ones. Defaults are skipped when the configuration already
// uses the name or when a task they need is not registered.
func registerDefaultPipelines(ctx context.Context, reg *registry.Registry, model *config.Model, conv config.Converter) error {
	logger := ctxlog.FromContext(ctx)
	taken := func(name string) bool {
		_, p := model.Pipelines[name]
		_, r := model.Rasters[name]
		return p || r
	}

	if !taken(FreespacePipeline) {
		if g, err := reg.Sequential(FreespacePipeline, CheckInputTaskName, totg.DefaultName); err == nil {
			reg.RegisterGenerator(g)
		} else {
			logger.Debug("Default pipeline not registered.", "pipeline", FreespacePipeline, "reason", err)
		}
	}

	if err := reg.PopulateFromModel(ctx, model, conv); err != nil {
		return fmt.Errorf("failed to populate registry: %w", err)
	}

	if !taken(RasterPipeline) {
		if g, err := reg.Raster(RasterPipeline, FreespacePipeline, FreespacePipeline, FreespacePipeline); err == nil {
			reg.RegisterGenerator(g)
		} else {
			logger.Debug("Default pipeline not registered.", "pipeline", RasterPipeline, "reason", err)
		}
	}
	return nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Server returns the planning server requests are run on.
func (a *App) Server() *planning.Server {
	return a.server
}

// RegisterProfile adds a profile to the named task's registry.
func (a *App) RegisterProfile(task, name string, p instruction.Profile) error {
	return a.registry.RegisterProfile(task, name, p)
}

// Profiles returns the profile names of every task that owns profiles.
func (a *App) Profiles() map[string][]string {
	return a.registry.ProfileNames()
}
