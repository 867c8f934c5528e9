package types

type NodeStatus int32

const (
	Failed    NodeStatus = -2
	Blocked   NodeStatus = -1
	Pending   NodeStatus = 0
	Skipped   NodeStatus = 1
	Running   NodeStatus = 2
	Succeeded NodeStatus = 3
)

func (s NodeStatus) String() string {
	switch s {
	case Failed:
		return "failed"
	case Blocked:
		return "blocked"
	case Pending:
		return "pending"
	case Skipped:
		return "skipped"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	}
	return "unknown"
}

/**
 * Terminal reports whether the node can never change status again.
 * Running is the only transient non-initial status, it always resolves
 * to Succeeded or Failed.
 */
func (s NodeStatus) Terminal() bool {
	switch s {
	case Succeeded, Failed, Blocked, Skipped:
		return true
	}
	return false
}

/**
 * Satisfied reports whether downstream nodes may treat this dependency
 * as fulfilled. Skipped counts: the caller asked for those tiers not to
 * run this time.
 */
func (s NodeStatus) Satisfied() bool {
	return s == Succeeded || s == Skipped
}

type PlanState int32

const (
	PlanPlanned   PlanState = 0
	PlanRunning   PlanState = 1
	PlanFailed    PlanState = 2
	PlanSucceeded PlanState = 3
)

func (s PlanState) String() string {
	switch s {
	case PlanPlanned:
		return "planned"
	case PlanRunning:
		return "running"
	case PlanFailed:
		return "failed"
	case PlanSucceeded:
		return "succeeded"
	}
	return "unknown"
}
