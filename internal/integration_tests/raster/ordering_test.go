package integration_tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/testutil"
)

// TestRaster_DependencyOrder validates that raster parts run in dependency
// order: transitions between their segments, from-start after the first
// segment and to-end after the last one.
func TestRaster_DependencyOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	recorder := testutil.NewRecorderModule("recorder", 50*time.Millisecond)
	pipelinesHCL := `
		pipeline "record" {
			tasks = ["recorder"]
		}
		raster_pipeline "recorded_raster" {
			freespace  = "record"
			transition = "record"
			raster     = "record"
		}
	`
	files := map[string]string{"arm.hcl": armHCL, "pipelines.hcl": pipelinesHCL}
	request := rasterRequest("recorded_raster", "from_start", "seg0", "tr0", "seg1", "tr1", "seg2", "to_end")

	// --- Act ---
	result := testutil.RunPlan(t, files, request, testutil.CoreModules(recorder)...)

	// --- Assert ---
	require.NoError(t, result.Err)
	records := recorder.Records()
	require.Len(t, records, 7)

	testutil.RequireAfter(t, records, "seg0", "tr0")
	testutil.RequireAfter(t, records, "tr0", "seg1")
	testutil.RequireAfter(t, records, "seg1", "tr1")
	testutil.RequireAfter(t, records, "tr1", "seg2")
	testutil.RequireAfter(t, records, "seg0", "from_start")
	testutil.RequireAfter(t, records, "seg2", "to_end")

	// from_start and tr0 only wait for seg0, so they overlap.
	assert.True(t, records["from_start"].Start.Before(records["tr0"].End), "from_start should run alongside tr0")

	require.NotNil(t, result.Program)
	assert.Equal(t, 7, result.Program.Len(), "recording leaves the program untouched")
}

// TestRaster_TimesEveryPart runs the default raster pipeline, which times
// each part on its own with the freespace pipeline.
func TestRaster_TimesEveryPart(t *testing.T) {
	t.Parallel()

	request := rasterRequest("raster", "from_start", "seg0", "tr0", "seg1", "to_end")
	result := testutil.RunPlan(t, map[string]string{"arm.hcl": armHCL}, request)

	require.NoError(t, result.Err)
	require.Equal(t, 5, result.Program.Len())
	assert.Contains(t, result.LogOutput, "Raster finished.")
	for i, child := range result.Program.Children() {
		part, err := instruction.AsComposite(child)
		require.NoError(t, err, "child %d", i)
		states := testutil.RequireTimed(t, part)
		assert.Greater(t, states[len(states)-1].Time, 0.0, "part %s", part.Description)
	}
}
