package runtime

import (
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Datatamer/tamr-toolbox-sub000/graph"
	"github.com/Datatamer/tamr-toolbox-sub000/store/mem"
	"github.com/Datatamer/tamr-toolbox-sub000/types"
)

func TestSaveAndLoadPlanState(t *testing.T) {
	ctx := context.Background()
	g := mustGraph(t, []graph.Edge{
		{Upstream: "a", Downstream: "b"},
		{Upstream: "a", Downstream: "c"},
	})

	opts := newTestOptions(2)
	opts.PlanID = "persisted-plan"
	opts.SaveState = true
	opts.Metadata = types.Data{"requested_by": "ops"}

	s := mem.NewMemStore()
	p, err := FromGraph(g, s, opts)
	require.NoError(t, err)

	run := func(ctx context.Context, node string) error {
		if node == "c" {
			return errors.Errorf("no luck")
		}
		return nil
	}
	require.NoError(t, p.Execute(ctx, run))

	loaded, err := LoadPlanStatus(ctx, s, "persisted-plan")
	require.NoError(t, err)
	assert.Equal(t, "persisted-plan", loaded.PlanID())
	meta := loaded.Metadata()
	requestedBy, exists := meta.GetString("requested_by")
	assert.True(t, exists)
	assert.Equal(t, "ops", requestedBy)
	assert.Equal(t, p.Status().Statuses(), loaded.Statuses())
	assert.Equal(t, types.PlanFailed, loaded.State())
	assert.Equal(t, []string{"c"}, loaded.FailedNodes())

	planIDs, err := ListPlanIDs(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"persisted-plan"}, planIDs)

	require.NoError(t, p.RemoveState(ctx))
	_, err = LoadPlanStatus(ctx, s, "persisted-plan")
	assert.True(t, errors.IsNotFound(err))
}

func TestLoadPlanStatusUnknown(t *testing.T) {
	_, err := LoadPlanStatus(context.Background(), mem.NewMemStore(), "never-saved")
	assert.True(t, errors.IsNotFound(err))
}

func TestExplicitSaveState(t *testing.T) {
	ctx := context.Background()
	g := mustGraph(t, []graph.Edge{{Upstream: "a", Downstream: "b"}})

	opts := newTestOptions(2)
	opts.PlanID = "manual-save"

	s := mem.NewMemStore()
	p, err := FromGraph(g, s, opts)
	require.NoError(t, err)

	// SaveState works standalone, before anything ran
	require.NoError(t, p.SaveState(ctx))

	loaded, err := LoadPlanStatus(ctx, s, "manual-save")
	require.NoError(t, err)
	assert.Equal(t, types.PlanPlanned, loaded.State())
	assert.Equal(t, []string{"a", "b"}, loaded.PendingNodes())
}

func TestExecuteSurfacesStoreFailure(t *testing.T) {
	g := mustGraph(t, []graph.Edge{{Upstream: "a", Downstream: "b"}})

	opts := newTestOptions(2)
	opts.SaveState = true

	storeErr := errors.New("disk is gone")
	s := mem.NewMemStoreWithErrHandler(func() error { return storeErr })
	p, err := FromGraph(g, s, opts)
	require.NoError(t, err)

	noop := func(ctx context.Context, node string) error { return nil }
	err = p.Execute(context.Background(), noop)
	require.Error(t, err)
	assert.Equal(t, storeErr, errors.Cause(err))
}
