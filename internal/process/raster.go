package process

import (
	"context"
	"fmt"

	"github.com/vk/planflow/internal/ctxlog"
	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/nodeid"
	"github.com/vk/planflow/internal/taskflow"
)

// RasterGenerator plans a raster program:
//
//	[from-start, segment, transition, segment, ..., segment, to-end]
//
// Every child is a composite. The boundary moves are planned by the
// freespace generator, segments by the raster generator and transitions by
// the transition generator.
type RasterGenerator struct {
	name       string
	freespace  Generator
	transition Generator
	raster     Generator
}

func NewRasterGenerator(freespace, transition, raster Generator) *RasterGenerator {
	return &RasterGenerator{name: "raster", freespace: freespace, transition: transition, raster: raster}
}

// WithName returns a copy of g with a different name.
func (g *RasterGenerator) WithName(name string) *RasterGenerator {
	c := *g
	c.name = name
	return &c
}

func (g *RasterGenerator) Name() string { return g.name }

// CheckRasterShape validates the raster layout of input's results.
func CheckRasterShape(input Input) error {
	results, err := instruction.AsComposite(input.Results())
	if err != nil {
		return fmt.Errorf("%w: raster input: %v", ErrInputShape, err)
	}
	n := results.Len()
	// from-start + S segments + (S-1) transitions + to-end is always odd.
	if n < 3 || n%2 == 0 {
		return fmt.Errorf("%w: raster input has %d children, want from-start, segments separated by transitions, to-end", ErrInputShape, n)
	}
	for i, child := range results.Children() {
		if !instruction.IsComposite(child) {
			return fmt.Errorf("%w: raster child %d (%s) is a %s, want composite", ErrInputShape, i, rasterRole(i, n), kindOf(child))
		}
	}
	return nil
}

func kindOf(i instruction.Instruction) string {
	if i == nil {
		return "nil"
	}
	return i.Kind().String()
}

func rasterRole(i, n int) string {
	switch {
	case i == 0:
		return "from-start"
	case i == n-1:
		return "to-end"
	case i%2 == 1:
		return "segment"
	default:
		return "transition"
	}
}

func (g *RasterGenerator) GenerateTaskflow(input Input, out *taskflow.Outcome) *taskflow.Graph {
	graph := taskflow.New(g.name)

	if err := CheckRasterShape(input); err != nil {
		out.Reject(err)
		graph.AddNamedTask("invalid_input", func(ctx context.Context) error {
			ctxlog.FromContext(ctx).Error("Raster input rejected.", "generator", g.name, "error", err)
			return err
		})
		return graph
	}

	n := input.Len()
	nSegments := (n - 1) / 2
	segments := make([]taskflow.Segment, 0, nSegments)
	transitions := make([]taskflow.Segment, 0, nSegments-1)

	embed := func(gen Generator, seg nodeid.PathSegment, idx int) taskflow.Segment {
		// Shape was checked above, so Child cannot fail.
		child, _ := input.Child(idx)
		return graph.Embed(seg, gen.GenerateTaskflow(child, out.Child()))
	}

	for k := 0; k < nSegments; k++ {
		segments = append(segments, embed(g.raster, nodeid.NewPathSegmentWithIndex("segment", k), 2*k+1))
	}
	for k := 0; k < nSegments-1; k++ {
		transitions = append(transitions, embed(g.transition, nodeid.NewPathSegmentWithIndex("transition", k), 2*k+2))
	}
	fromStart := embed(g.freespace, nodeid.NewPathSegment("from_start"), 0)
	toEnd := embed(g.freespace, nodeid.NewPathSegment("to_end"), n-1)

	for k, tr := range transitions {
		mustPrecede(graph, segments[k], tr)
		mustPrecede(graph, tr, segments[k+1])
	}
	mustPrecede(graph, segments[0], fromStart)
	mustPrecede(graph, segments[nSegments-1], toEnd)

	sinks := graph.Sinks()
	done := graph.AddNamedTask("done", func(ctx context.Context) error {
		ctxlog.FromContext(ctx).Debug("Raster finished.", "generator", g.name, "segments", nSegments)
		out.Resolve()
		return nil
	})
	for _, sink := range sinks {
		mustPrecede(graph, sink, done)
	}
	return graph
}
