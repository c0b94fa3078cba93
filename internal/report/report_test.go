package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/stackup/internal/model"
)

// readyReport builds a fully-up three-tier report.
func readyReport() *model.StackReport {
	return &model.StackReport{
		Project: "appstack",
		Phase:   model.PhaseReady,
		Services: []model.ServiceStatus{
			{Name: "database", State: model.StateRunning, Health: "healthy", ContainerName: "appstack-database-1"},
			{Name: "backend", State: model.StateRunning, ContainerName: "appstack-backend-1"},
			{Name: "frontend", State: model.StateRunning, ContainerName: "appstack-frontend-1"},
		},
		Ticks:   3,
		Elapsed: 12 * time.Second,
	}
}

// TestRender_ReadyPrintsUpPerService verifies each up service gets an "Up"
// line and the header reflects readiness.
func TestRender_ReadyPrintsUpPerService(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, readyReport()))
	out := buf.String()

	assert.Contains(t, out, `"appstack"`)
	assert.Contains(t, out, "ready")
	assert.Contains(t, out, "database")
	assert.Contains(t, out, "backend")
	assert.Contains(t, out, "frontend")
	assert.Equal(t, 3, strings.Count(out, "Up"), "one Up label per service")
}

// TestRender_TimedOutNamesTheLaggard verifies a timed-out report shows the
// per-service breakdown so the failing tier is identifiable.
func TestRender_TimedOutNamesTheLaggard(t *testing.T) {
	r := &model.StackReport{
		Project: "appstack",
		Phase:   model.PhaseTimedOut,
		Services: []model.ServiceStatus{
			{Name: "database", State: model.StateRunning, Health: "healthy"},
			{Name: "backend", State: model.StateExited},
			{Name: "frontend", State: model.StateMissing},
		},
		Ticks: 12,
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "timed out")
	assert.Contains(t, out, "Exited")
	assert.Contains(t, out, "Missing")
	assert.Contains(t, out, "12 poll(s)")
}

// TestRender_Warnings verifies smoke-check warnings appear in the output.
func TestRender_Warnings(t *testing.T) {
	r := readyReport()
	r.Warnings = []string{"frontend smoke check failed: connection refused"}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))
	assert.Contains(t, buf.String(), "smoke check failed")
}

// TestRender_UnhealthyShowsVerdict verifies a running-but-unhealthy
// service shows its healthcheck verdict rather than a bare Up.
func TestRender_UnhealthyShowsVerdict(t *testing.T) {
	r := &model.StackReport{
		Project: "appstack",
		Phase:   model.PhaseTimedOut,
		Services: []model.ServiceStatus{
			{Name: "database", State: model.StateRunning, Health: "unhealthy"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))
	assert.Contains(t, buf.String(), "Up (unhealthy)")
}

// TestRenderJSON_RoundTrips verifies the JSON form decodes back into an
// equivalent report, which is the contract scripted consumers rely on.
func TestRenderJSON_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, readyReport()))

	var decoded model.StackReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "appstack", decoded.Project)
	assert.Equal(t, model.PhaseReady, decoded.Phase)
	assert.Len(t, decoded.Services, 3)
	assert.Equal(t, 3, decoded.Ticks)
}
