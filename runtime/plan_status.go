package runtime

import (
	"sort"

	"github.com/Datatamer/tamr-toolbox-sub000/types"
	"github.com/Datatamer/tamr-toolbox-sub000/utils"
)

/**
 * PlanStatus is a point-in-time, read-only copy of a plan's node table.
 * Taking one never disturbs the planner, and two snapshots of an idle
 * planner are equal.
 */
type PlanStatus struct {
	planID   string
	metadata types.Data
	nodes    map[string]types.PlanNode
}

// StatusFromPlanner snapshots the planner's node table.
func StatusFromPlanner(p *Planner) *PlanStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	nodes := make(map[string]types.PlanNode, len(p.nodes))
	for name, node := range p.nodes {
		nodes[name] = *node
	}
	return &PlanStatus{
		planID:   p.opts.PlanID,
		metadata: p.opts.Metadata.Clone(),
		nodes:    nodes,
	}
}

// Status is shorthand for StatusFromPlanner.
func (p *Planner) Status() *PlanStatus {
	return StatusFromPlanner(p)
}

func (s *PlanStatus) PlanID() string {
	return s.planID
}

func (s *PlanStatus) Metadata() types.Data {
	return s.metadata
}

func (s *PlanStatus) Node(name string) (types.PlanNode, bool) {
	node, exists := s.nodes[name]
	return node, exists
}

func (s *PlanStatus) NodeNames() []string {
	return utils.SortedKeys(s.nodes)
}

func (s *PlanStatus) Statuses() map[string]types.NodeStatus {
	statuses := make(map[string]types.NodeStatus, len(s.nodes))
	for name, node := range s.nodes {
		statuses[name] = node.Status
	}
	return statuses
}

/**
 * AllSucceeded reports whether every node's dependency obligation is
 * met: Succeeded everywhere, with Skipped counting as satisfied when a
 * starting tier was used.
 */
func (s *PlanStatus) AllSucceeded() bool {
	for _, node := range s.nodes {
		if !node.Status.Satisfied() {
			return false
		}
	}
	return true
}

func (s *PlanStatus) FailedNodes() []string {
	return s.nodesWith(types.Failed)
}

func (s *PlanStatus) BlockedNodes() []string {
	return s.nodesWith(types.Blocked)
}

// PendingNodes is non-empty only when execution never ran, or was
// interrupted before completion.
func (s *PlanStatus) PendingNodes() []string {
	return s.nodesWith(types.Pending)
}

func (s *PlanStatus) SkippedNodes() []string {
	return s.nodesWith(types.Skipped)
}

func (s *PlanStatus) RunningNodes() []string {
	return s.nodesWith(types.Running)
}

func (s *PlanStatus) nodesWith(status types.NodeStatus) []string {
	names := make([]string, 0)
	for name, node := range s.nodes {
		if node.Status == status {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

/**
 * State folds the node table into one plan-level state: Failed once a
 * failure is in and nothing can still run, Running while any node is in
 * flight, Succeeded when every node is satisfied, Planned otherwise.
 */
func (s *PlanStatus) State() types.PlanState {
	var anyFailed, anyRunning, anyPending bool
	allSatisfied := true
	for _, node := range s.nodes {
		switch node.Status {
		case types.Failed:
			anyFailed = true
		case types.Running:
			anyRunning = true
		case types.Pending:
			anyPending = true
		}
		if !node.Status.Satisfied() {
			allSatisfied = false
		}
	}

	switch {
	case anyFailed && !anyRunning && !anyPending:
		return types.PlanFailed
	case anyRunning:
		return types.PlanRunning
	case allSatisfied:
		return types.PlanSucceeded
	}
	return types.PlanPlanned
}
