package graph

import (
	"sort"

	"github.com/juju/errors"

	"github.com/Datatamer/tamr-toolbox-sub000/types"
	"github.com/Datatamer/tamr-toolbox-sub000/utils"
)

/**
 * Edge is one directed dependency: Upstream must reach a terminal status
 * before Downstream may start.
 */
type Edge struct {
	Upstream   string `json:",omitempty"`
	Downstream string `json:",omitempty"`
}

/**
 * Graph is a dependency graph over named nodes. It is immutable once
 * built, so every worker can read it without locking. Structural queries
 * on unknown nodes return empty results instead of failing.
 */
type Graph struct {
	nodes map[string]bool
	edges map[Edge]bool

	forward map[string]map[string]bool
	reverse map[string]map[string]bool

	// tier index -> sorted node names, see TiersByIndex
	tiers [][]string
}

/**
 * FromEdges builds a graph whose node set is the union of all edge
 * endpoints. Self edges are rejected immediately, cycles are rejected
 * with a types.CycleError naming one offending cycle.
 */
func FromEdges(edges []Edge) (*Graph, error) {
	edgeSet := make(map[Edge]bool, len(edges))
	for _, e := range edges {
		edgeSet[e] = true
	}
	g, err := build(edgeSet, nil)
	return g, errors.Trace(err)
}

/**
 * AddEdges returns a new graph over the union of the current edge set
 * and newEdges. The node set carries over, so nodes without edges
 * survive the merge. Acyclicity is re-validated from scratch.
 */
func (g *Graph) AddEdges(newEdges []Edge) (*Graph, error) {
	edgeSet := utils.CloneMap(g.edges)
	for _, e := range newEdges {
		edgeSet[e] = true
	}
	merged, err := build(edgeSet, utils.CloneMap(g.nodes))
	return merged, errors.Trace(err)
}

func build(edgeSet map[Edge]bool, nodeSet map[string]bool) (*Graph, error) {
	if nodeSet == nil {
		nodeSet = make(map[string]bool)
	}

	g := &Graph{
		nodes:   nodeSet,
		edges:   edgeSet,
		forward: make(map[string]map[string]bool),
		reverse: make(map[string]map[string]bool),
	}

	for e := range edgeSet {
		if e.Upstream == e.Downstream {
			return nil, errors.BadRequestf("self edge on node %q", e.Upstream)
		}
		g.nodes[e.Upstream] = true
		g.nodes[e.Downstream] = true

		if g.forward[e.Upstream] == nil {
			g.forward[e.Upstream] = make(map[string]bool)
		}
		g.forward[e.Upstream][e.Downstream] = true

		if g.reverse[e.Downstream] == nil {
			g.reverse[e.Downstream] = make(map[string]bool)
		}
		g.reverse[e.Downstream][e.Upstream] = true
	}

	if err := g.assignTiers(); err != nil {
		return nil, errors.Trace(err)
	}
	return g, nil
}

/**
 * assignTiers peels the graph layer by layer (Kahn's algorithm). A node
 * only enters a tier once every predecessor has been peeled, so its tier
 * is one more than the maximum predecessor tier: the length of the
 * longest dependency chain reaching it. Sorting each frontier keeps the
 * assignment reproducible run to run.
 */
func (g *Graph) assignTiers() error {
	indegree := make(map[string]int, len(g.nodes))
	for n := range g.nodes {
		indegree[n] = len(g.reverse[n])
	}

	queue := make([]string, 0)
	for n, deg := range indegree {
		if deg == 0 {
			queue = append(queue, n)
		}
	}
	sort.Strings(queue)

	assigned := make(map[string]bool, len(g.nodes))
	for len(queue) > 0 {
		tier := append([]string(nil), queue...)
		g.tiers = append(g.tiers, tier)

		next := make([]string, 0)
		for _, n := range tier {
			assigned[n] = true
			for succ := range g.forward[n] {
				if indegree[succ]--; indegree[succ] == 0 {
					next = append(next, succ)
				}
			}
		}
		sort.Strings(next)
		queue = next
	}

	if len(assigned) != len(g.nodes) {
		return errors.Trace(types.NewCycleError(g.findCycle(assigned)))
	}
	return nil
}

/**
 * findCycle names one cycle among the nodes Kahn's algorithm could not
 * peel. Every such node has a predecessor in the leftover set, so
 * walking predecessors from any of them must revisit a node.
 */
func (g *Graph) findCycle(assigned map[string]bool) []string {
	remaining := make(map[string]bool)
	for n := range g.nodes {
		if !assigned[n] {
			remaining[n] = true
		}
	}

	start := utils.SortedKeys(remaining)[0]

	path := []string{}
	index := map[string]int{}
	current := start
	for {
		if at, seen := index[current]; seen {
			// the walk followed reverse edges, flip to edge order
			cycle := append([]string(nil), path[at:]...)
			for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
				cycle[i], cycle[j] = cycle[j], cycle[i]
			}
			return cycle
		}
		index[current] = len(path)
		path = append(path, current)

		// pick the first leftover predecessor, any walk works
		next := ""
		for pred := range g.reverse[current] {
			if !remaining[pred] {
				continue
			}
			if next == "" || pred < next {
				next = pred
			}
		}
		current = next
	}
}

func (g *Graph) HasNode(node string) bool {
	return g.nodes[node]
}

func (g *Graph) Nodes() []string {
	return utils.SortedKeys(g.nodes)
}

func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edges))
	for e := range g.edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Upstream != edges[j].Upstream {
			return edges[i].Upstream < edges[j].Upstream
		}
		return edges[i].Downstream < edges[j].Downstream
	})
	return edges
}

// Successors gives the direct downstream neighbors of a node.
func (g *Graph) Successors(node string) map[string]bool {
	return utils.CloneMap(g.forward[node])
}

// Predecessors gives the direct upstream neighbors of a node.
func (g *Graph) Predecessors(node string) map[string]bool {
	return utils.CloneMap(g.reverse[node])
}

/**
 * AllDownstreamNodes gives the transitive closure of successors,
 * excluding the node itself. This is the set that becomes Blocked when
 * the node fails.
 */
func (g *Graph) AllDownstreamNodes(node string) map[string]bool {
	downstream := make(map[string]bool)
	frontier := []string{node}
	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		for succ := range g.forward[current] {
			if downstream[succ] {
				continue
			}
			downstream[succ] = true
			frontier = append(frontier, succ)
		}
	}
	delete(downstream, node)
	return downstream
}

// SourceNodes gives all nodes without predecessors.
func (g *Graph) SourceNodes() map[string]bool {
	sources := make(map[string]bool)
	for n := range g.nodes {
		if len(g.reverse[n]) == 0 {
			sources[n] = true
		}
	}
	return sources
}

// EndNodes gives all nodes without successors, in deterministic order.
func (g *Graph) EndNodes() []string {
	ends := make([]string, 0)
	for n := range g.nodes {
		if len(g.forward[n]) == 0 {
			ends = append(ends, n)
		}
	}
	sort.Strings(ends)
	return ends
}

func (g *Graph) TierCount() int {
	return len(g.tiers)
}

// TierNodes gives the sorted nodes at one tier, empty if out of range.
func (g *Graph) TierNodes(tier int) []string {
	if tier < 0 || tier >= len(g.tiers) {
		return nil
	}
	return append([]string(nil), g.tiers[tier]...)
}

/**
 * TiersByIndex partitions every node into exactly one tier. Tier 0 holds
 * the source nodes; a node with predecessors sits one tier above its
 * highest predecessor, reflecting the slowest dependency path.
 */
func (g *Graph) TiersByIndex() map[int]map[string]bool {
	tiers := make(map[int]map[string]bool, len(g.tiers))
	for i, tier := range g.tiers {
		tiers[i] = utils.KeySet(tier)
	}
	return tiers
}
