package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/planflow/internal/config"
	"github.com/vk/planflow/internal/ctxlog"
	"github.com/vk/planflow/internal/planning"
	"github.com/vk/planflow/internal/profile"
)

// Run plans the request at Config.RequestPath and writes the resulting
// program as YAML.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.RequestPath == "" {
		return errors.New("no planning request given")
	}
	req, err := planning.LoadRequest(a.config.RequestPath)
	if err != nil {
		return err
	}
	if a.config.Pipeline != "" {
		req.Name = a.config.Pipeline
	}
	if req.Name == "" {
		req.Name = FreespacePipeline
	}
	req.PlanProfileRemapping = a.mergeRemapping(config.RemapPlan, req.PlanProfileRemapping)
	req.CompositeProfileRemapping = a.mergeRemapping(config.RemapComposite, req.CompositeProfileRemapping)

	a.logger.Info("🚀 Starting planning...", "pipeline", req.Name, "request", a.config.RequestPath)
	results, err := a.server.Plan(ctx, *req)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}
	a.logger.Info("🏁 Planning finished.", "pipeline", req.Name)

	return planning.WriteProgram(a.outW, results)
}

// mergeRemapping layers the request's remapping over the configured one.
func (a *App) mergeRemapping(kind config.RemapKind, fromRequest profile.Remapping) profile.Remapping {
	out := a.model.Remapping(kind)
	for task, names := range fromRequest {
		for requested, name := range names {
			out.Set(task, requested, name)
		}
	}
	return out
}
