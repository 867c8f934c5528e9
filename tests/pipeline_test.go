package tests

import (
	"context"
	"sync"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	workflow "github.com/Datatamer/tamr-toolbox-sub000"
	"github.com/Datatamer/tamr-toolbox-sub000/runtime"
	"github.com/Datatamer/tamr-toolbox-sub000/types"
)

/**
 * catalog mimics an external system that knows which datasets feed
 * which: the pipeline is discovered from it instead of being spelled
 * out edge by edge.
 */
type catalog struct {
	upstreams map[string][]string
}

func (c *catalog) upstreamOf(ctx context.Context, node string) ([]string, error) {
	return c.upstreams[node], nil
}

func newMasteringCatalog() *catalog {
	return &catalog{upstreams: map[string][]string{
		"minimal_mastering":      {"minimal_schema_mapping"},
		"minimal_golden_records": {"minimal_mastering"},
		"minimal_categorization": {"minimal_schema_mapping"},
		"chained_workflow":       {"minimal_golden_records", "minimal_categorization"},
	}}
}

type pipelineRunner struct {
	mu      sync.Mutex
	ran     []string
	failing map[string]bool
}

func (r *pipelineRunner) run(ctx context.Context, node string) error {
	r.mu.Lock()
	r.ran = append(r.ran, node)
	r.mu.Unlock()

	if r.failing[node] {
		return errors.Errorf("refresh of %s failed", node)
	}
	return nil
}

func TestPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()

	g, err := workflow.BuildGraph(ctx, []string{"chained_workflow"}, newMasteringCatalog().upstreamOf)
	require.NoError(t, err)
	assert.Equal(t, 5, len(g.Nodes()))
	assert.Equal(t, 4, g.TierCount())

	p, err := workflow.NewPlanner(g,
		types.SetConcurrencyLevel(2),
		types.WithPlanID("mastering-refresh"),
		types.WithMetadata(types.Data{"trigger": "nightly"}),
		types.EnableSaveState(),
	)
	require.NoError(t, err)

	runner := &pipelineRunner{}
	require.NoError(t, p.Execute(ctx, runner.run))

	status := p.Status()
	assert.True(t, status.AllSucceeded())
	assert.Equal(t, types.PlanSucceeded, status.State())
	assert.Equal(t, 5, len(runner.ran))

	// the persisted state is readable without the planner
	loaded, err := runtime.LoadPlanStatus(ctx, p.Store(), "mastering-refresh")
	require.NoError(t, err)
	assert.Equal(t, status.Statuses(), loaded.Statuses())
	assert.Equal(t, types.PlanSucceeded, loaded.State())

	planIDs, err := runtime.ListPlanIDs(ctx, p.Store())
	require.NoError(t, err)
	assert.Equal(t, []string{"mastering-refresh"}, planIDs)
}

func TestPipelineFailureMidway(t *testing.T) {
	ctx := context.Background()

	g, err := workflow.BuildGraph(ctx, []string{"chained_workflow"}, newMasteringCatalog().upstreamOf)
	require.NoError(t, err)

	p, err := workflow.NewPlanner(g, types.SetConcurrencyLevel(2))
	require.NoError(t, err)

	runner := &pipelineRunner{failing: map[string]bool{"minimal_mastering": true}}
	require.NoError(t, p.Execute(ctx, runner.run))

	status := p.Status()
	assert.False(t, status.AllSucceeded())
	assert.Equal(t, types.PlanFailed, status.State())
	assert.Equal(t, []string{"minimal_mastering"}, status.FailedNodes())
	assert.Equal(t, []string{"chained_workflow", "minimal_golden_records"}, status.BlockedNodes())

	// the sibling branch is unaffected by the failure
	node, exists := status.Node("minimal_categorization")
	require.True(t, exists)
	assert.Equal(t, types.Succeeded, node.Status)
}

func TestPipelineRerunRejected(t *testing.T) {
	ctx := context.Background()

	g, err := workflow.BuildGraph(ctx, []string{"chained_workflow"}, newMasteringCatalog().upstreamOf)
	require.NoError(t, err)

	p, err := workflow.NewPlanner(g)
	require.NoError(t, err)

	runner := &pipelineRunner{}
	require.NoError(t, p.Execute(ctx, runner.run))
	assert.True(t, errors.IsForbidden(p.Execute(ctx, runner.run)))
}
