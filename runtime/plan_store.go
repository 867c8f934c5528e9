package runtime

import (
	"context"
	"time"

	"github.com/juju/errors"

	"github.com/Datatamer/tamr-toolbox-sub000/store"
	"github.com/Datatamer/tamr-toolbox-sub000/types"
	"github.com/Datatamer/tamr-toolbox-sub000/utils"
)

const (
	PlanStatePath = "/plan_state/"
)

type planRecord struct {
	PlanID   string           `json:",omitempty"`
	State    string           `json:",omitempty"`
	Metadata types.Data       `json:",omitempty"`
	Nodes    []types.PlanNode `json:",omitempty"`
	SavedAt  time.Time        `json:",omitempty"`
}

/**
 * SaveState persists the current node table under the plan ID, so an
 * operator (or another process) can inspect a plan without holding the
 * planner. Called automatically after each tier when the SaveState
 * option is on.
 */
func (p *Planner) SaveState(ctx context.Context) error {
	return errors.Trace(p.saveState(ctx))
}

func (p *Planner) saveState(ctx context.Context) error {
	status := p.Status()

	record := &planRecord{
		PlanID:   status.PlanID(),
		State:    status.State().String(),
		Metadata: status.Metadata(),
		SavedAt:  time.Now(),
	}
	for _, name := range status.NodeNames() {
		node, _ := status.Node(name)
		record.Nodes = append(record.Nodes, node)
	}

	b, err := utils.Serialize(record)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(p.store.Set(ctx, PlanStatePath, p.opts.PlanID, b))
}

// RemoveState drops the persisted state of this plan, if any.
func (p *Planner) RemoveState(ctx context.Context) error {
	return errors.Trace(p.store.Remove(ctx, PlanStatePath, p.opts.PlanID))
}

/**
 * LoadPlanStatus rebuilds a read-only snapshot from persisted plan
 * state. The planner itself is not restored: a plan is never resumed,
 * only inspected.
 */
func LoadPlanStatus(ctx context.Context, s store.Store, planID string) (*PlanStatus, error) {
	b, err := s.Get(ctx, PlanStatePath, planID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if b == nil {
		return nil, errors.NotFoundf("plan state: %s", planID)
	}

	record := &planRecord{}
	if err := utils.Unserialize(b, record); err != nil {
		return nil, errors.Trace(err)
	}

	status := &PlanStatus{
		planID:   record.PlanID,
		metadata: record.Metadata,
		nodes:    make(map[string]types.PlanNode, len(record.Nodes)),
	}
	if status.metadata == nil {
		status.metadata = types.Data{}
	}
	for _, node := range record.Nodes {
		status.nodes[node.Name] = node
	}
	return status, nil
}

// ListPlanIDs reports every plan with persisted state, in key order.
func ListPlanIDs(ctx context.Context, s store.Store) ([]string, error) {
	planIDs := make([]string, 0)
	err := s.List(ctx, PlanStatePath, func(planID string) bool {
		planIDs = append(planIDs, planID)
		return true
	})
	return planIDs, errors.Trace(err)
}
