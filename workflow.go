package workflow

import (
	"context"

	"github.com/juju/errors"

	"github.com/Datatamer/tamr-toolbox-sub000/graph"
	"github.com/Datatamer/tamr-toolbox-sub000/runtime"
	"github.com/Datatamer/tamr-toolbox-sub000/store"
	"github.com/Datatamer/tamr-toolbox-sub000/store/mem"
	"github.com/Datatamer/tamr-toolbox-sub000/store/postgres"
	"github.com/Datatamer/tamr-toolbox-sub000/types"
)

// NewPlanner creates a planner for the given graph with the given options
func NewPlanner(g *graph.Graph, opts ...types.PlannerOption) (*runtime.Planner, error) {
	options := types.NewPlannerOptions()
	for _, opt := range opts {
		opt(options)
	}

	var s store.Store
	var err error

	// PostgresConfig switches persistence away from the in-memory default
	if options.PostgresConfig != nil {
		pgConfig := &postgres.Config{
			Host:     options.PostgresConfig.Host,
			Port:     options.PostgresConfig.Port,
			User:     options.PostgresConfig.User,
			Password: options.PostgresConfig.Password,
			Database: options.PostgresConfig.Database,
			SSLMode:  options.PostgresConfig.SSLMode,
		}

		s, err = postgres.NewPostgresStore(pgConfig)
		if err != nil {
			return nil, errors.Annotatef(err, "failed to create PostgreSQL store")
		}
	} else {
		s = mem.NewMemStore()
	}

	return runtime.FromGraph(g, s, options)
}

/**
 * BuildGraph discovers the dependency graph behind the given target
 * nodes: upstreamOf names the direct upstreams of a node, and discovery
 * walks until the most upstream sources are reached.
 */
func BuildGraph(ctx context.Context, targets []string, upstreamOf types.UpstreamFunc) (*graph.Graph, error) {
	g, err := graph.FromNodeList(ctx, targets, upstreamOf)
	return g, errors.Trace(err)
}
