package runtime

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Datatamer/tamr-toolbox-sub000/graph"
	"github.com/Datatamer/tamr-toolbox-sub000/store"
	"github.com/Datatamer/tamr-toolbox-sub000/types"
)

/**
 * Planner owns one execution of a dependency graph: the graph itself
 * (read-only), the node table with per-node status, and the options the
 * plan was created with. The node table is the only mutable shared
 * state, every access goes through the planner's mutex.
 */
type Planner struct {
	mu sync.Mutex

	graph *graph.Graph
	opts  *types.PlannerOptions
	store store.Store

	nodes    map[string]*types.PlanNode
	executed bool
}

/**
 * FromGraph builds a planner with every node Pending, except nodes on
 * tiers below the starting tier which are Skipped outright. Node
 * priorities encode the deterministic submission order inside a tier.
 */
func FromGraph(g *graph.Graph, s store.Store, opts *types.PlannerOptions) (*Planner, error) {
	if g == nil {
		return nil, errors.BadRequestf("graph is nil")
	}
	if s == nil {
		return nil, errors.BadRequestf("store is nil")
	}
	if opts == nil {
		opts = types.NewPlannerOptions()
	}
	if opts.PlanID == "" {
		opts.PlanID = fmt.Sprintf("plan-%d", time.Now().UnixNano())
	}

	p := &Planner{
		graph: g,
		opts:  opts,
		store: s,
		nodes: make(map[string]*types.PlanNode),
	}

	for tier := 0; tier < g.TierCount(); tier++ {
		for num, name := range g.TierNodes(tier) {
			status := types.Pending
			if tier < opts.StartingTier {
				status = types.Skipped
			}
			p.nodes[name] = &types.PlanNode{
				Name:     name,
				Status:   status,
				Tier:     tier,
				Priority: 100*tier + num,
			}
		}
	}
	return p, nil
}

func (p *Planner) PlanID() string {
	return p.opts.PlanID
}

func (p *Planner) Graph() *graph.Graph {
	return p.graph
}

func (p *Planner) Store() store.Store {
	return p.store
}

func (p *Planner) Metadata() types.Data {
	return p.opts.Metadata
}

/**
 * Execute drives the plan tier by tier. Within a tier the executor runs
 * every still-Pending node under the concurrency bound; the planner
 * then waits for the whole tier, propagates failures by blocking every
 * transitive downstream node, and only then moves on. A node in tier
 * k+1 may depend on several tier-k nodes, so advancing earlier would
 * race the blocking decision.
 *
 * Node failures never surface here, read them from Status(). The errors
 * Execute does return are caller misuse and persistence failures.
 *
 * A nil ctx falls back to the options context.
 */
func (p *Planner) Execute(ctx context.Context, run types.RunFunc) error {
	if run == nil {
		return errors.BadRequestf("run callback is nil")
	}
	if p.opts.ConcurrencyLevel < 1 {
		return errors.BadRequestf("concurrency level %d, want at least 1", p.opts.ConcurrencyLevel)
	}
	if ctx == nil {
		ctx = p.opts.Ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p.mu.Lock()
	if p.executed {
		p.mu.Unlock()
		return errors.Forbiddenf("plan %s has already been executed", p.opts.PlanID)
	}
	p.executed = true
	p.mu.Unlock()

	for tier := 0; tier < p.graph.TierCount(); tier++ {
		runnable := p.runnableNodes(tier)
		log.Infof("plan %s tier %d: running %d of %d nodes",
			p.opts.PlanID, tier, len(runnable), len(p.graph.TierNodes(tier)))

		results := p.runTier(ctx, runnable, run)
		failures := 0
		for _, err := range results {
			if err != nil {
				failures++
			}
		}
		if failures > 0 {
			log.Warnf("plan %s tier %d: %d of %d nodes failed",
				p.opts.PlanID, tier, failures, len(runnable))
		}

		p.blockDownstream(tier)

		if p.opts.SaveState {
			if err := p.saveState(ctx); err != nil {
				return errors.Annotatef(err, "save state of plan %s after tier %d", p.opts.PlanID, tier)
			}
		}
	}

	log.Infof("plan %s finished with state %s", p.opts.PlanID, p.Status().State())
	return nil
}

/**
 * runnableNodes partitions a tier: nodes still Pending get submitted,
 * nodes a prior tier already blocked (or the starting tier skipped)
 * stay untouched. Sorted by priority so submission order is stable.
 */
func (p *Planner) runnableNodes(tier int) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	nodes := make([]*types.PlanNode, 0)
	for _, name := range p.graph.TierNodes(tier) {
		if node := p.nodes[name]; node.Status == types.Pending {
			nodes = append(nodes, node)
		}
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Priority < nodes[j].Priority
	})

	names := make([]string, 0, len(nodes))
	for _, node := range nodes {
		names = append(names, node.Name)
	}
	return names
}

/**
 * blockDownstream marks everything transitively downstream of this
 * tier's failures as Blocked, before the next tier is considered. Nodes
 * already terminal keep their status.
 */
func (p *Planner) blockDownstream(tier int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, name := range p.graph.TierNodes(tier) {
		if p.nodes[name].Status != types.Failed {
			continue
		}
		for downstream := range p.graph.AllDownstreamNodes(name) {
			node := p.nodes[downstream]
			if node.Status.Terminal() {
				continue
			}
			node.Status = types.Blocked
			log.Debugf("plan %s node %s blocked by failure of %s", p.opts.PlanID, downstream, name)
		}
	}
}

func (p *Planner) setStatus(name string, status types.NodeStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nodes[name].Status = status
}
