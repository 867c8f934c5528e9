package runtime

import (
	"context"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Datatamer/tamr-toolbox-sub000/types"
)

/**
 * runTier hands one tier's runnable nodes to a bounded worker pool: at
 * most ConcurrencyLevel run callbacks in flight, the next node starts
 * as soon as a slot frees up. Returns only after every node reached a
 * terminal status. A failing node never cancels its tier mates, only
 * future tiers get pruned through blocking.
 */
func (p *Planner) runTier(ctx context.Context, nodes []string, run types.RunFunc) map[string]error {
	results := make(map[string]error, len(nodes))
	if len(nodes) == 0 {
		return results
	}

	var mu sync.Mutex
	wp := workerpool.New(p.opts.ConcurrencyLevel)
	for _, name := range nodes {
		name := name
		wp.Submit(func() {
			err := p.runNode(ctx, name, run)
			mu.Lock()
			results[name] = err
			mu.Unlock()
		})
	}
	wp.StopWait()

	return results
}

/**
 * runNode runs a single node and records its terminal status. A
 * panicking callback counts as a failure, the worker must not take the
 * whole plan down with it.
 */
func (p *Planner) runNode(ctx context.Context, name string, run types.RunFunc) (retErr error) {
	defer func() {
		if r := recover(); r != nil {
			retErr = errors.Errorf("panic on node %s: %v", name, r)
		}
		if retErr != nil {
			p.setStatus(name, types.Failed)
			log.Errorf("plan %s node %s failed: %v", p.opts.PlanID, name, retErr)
		} else {
			p.setStatus(name, types.Succeeded)
			log.Debugf("plan %s node %s succeeded", p.opts.PlanID, name)
		}
	}()

	p.setStatus(name, types.Running)
	log.Debugf("plan %s running node %s", p.opts.PlanID, name)

	return run(ctx, name)
}
