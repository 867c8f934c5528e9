package graph

import (
	"context"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Datatamer/tamr-toolbox-sub000/types"
)

/**
 * FromNodeList discovers the dependency graph sitting upstream of the
 * target nodes. Discovery is a breadth-first walk with a visited set:
 * each node is looked up exactly once no matter how many downstream
 * paths reach it, and the walk terminates even when the callback reports
 * edges that would form a cycle. The cycle itself still fails graph
 * validation afterwards.
 *
 * Targets with no dependencies are kept as singleton nodes.
 */
func FromNodeList(ctx context.Context, targets []string, upstreamOf types.UpstreamFunc) (*Graph, error) {
	if upstreamOf == nil {
		return nil, errors.BadRequestf("upstream discovery callback is nil")
	}

	nodes := make(map[string]bool, len(targets))
	edges := make(map[Edge]bool)
	visited := make(map[string]bool)

	frontier := append([]string(nil), targets...)
	for len(frontier) > 0 {
		node := frontier[0]
		frontier = frontier[1:]
		if visited[node] {
			continue
		}
		visited[node] = true
		nodes[node] = true

		upstream, err := upstreamOf(ctx, node)
		if err != nil {
			return nil, errors.Annotatef(err, "discover upstream of %q", node)
		}
		log.Debugf("discovered %d upstream dependencies of %s", len(upstream), node)

		for _, up := range upstream {
			edges[Edge{Upstream: up, Downstream: node}] = true
			if !visited[up] {
				frontier = append(frontier, up)
			}
		}
	}

	g, err := build(edges, nodes)
	return g, errors.Trace(err)
}
