package types

import "context"

/**
 * RunFunc performs the work behind a single node and blocks until that
 * work reaches a terminal state. A nil return marks the node Succeeded,
 * any error marks it Failed. The callback owns its own timeout, the
 * planner will wait as long as it takes.
 */
type RunFunc func(ctx context.Context, node string) error

/**
 * UpstreamFunc reports the direct upstream dependencies of a node.
 * Invoked exactly once per discovered node while building a graph, so it
 * may hit an external catalog but should return quickly.
 */
type UpstreamFunc func(ctx context.Context, node string) ([]string, error)

// PlanNode is one scheduled unit of a plan.
type PlanNode struct {
	Name   string     `json:",omitempty"`
	Status NodeStatus `json:""`
	Tier   int        `json:""`
	/**
	 * Priority decides the submission order of runnable nodes inside a
	 * tier: 100*tier plus the node's position in the sorted tier. Only
	 * submission order is deterministic, completion order is not.
	 */
	Priority int `json:""`
}
