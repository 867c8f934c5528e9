package runtime

import (
	"fmt"
	"strings"

	"github.com/Datatamer/tamr-toolbox-sub000/graph"
	"github.com/Datatamer/tamr-toolbox-sub000/types"
)

/**
 * RenderDOT draws the dependency graph as Graphviz DOT. With a status
 * snapshot, nodes are filled by their current status so a half-finished
 * plan reads at a glance; with nil status the plain structure is drawn.
 */
func RenderDOT(g *graph.Graph, status *PlanStatus) string {
	r := newPlanRenderer(status)

	r.write("digraph plan {")
	for _, name := range g.Nodes() {
		r.write("%s [label=%s shape=\"record\"%s]", idString(name), quoteString(name), r.calcAttr(name))
	}
	for _, e := range g.Edges() {
		r.write("%s -> %s", idString(e.Upstream), idString(e.Downstream))
	}
	r.write("}")
	return r.sb.String()
}

// RenderDOT draws this plan's graph colored by the current statuses.
func (p *Planner) RenderDOT() string {
	return RenderDOT(p.graph, p.Status())
}

func newPlanRenderer(status *PlanStatus) *planRenderer {
	return &planRenderer{status, &strings.Builder{}}
}

type planRenderer struct {
	status *PlanStatus
	sb     *strings.Builder
}

func (r *planRenderer) calcAttr(name string) string {
	if r.status == nil {
		return ""
	}
	node, exists := r.status.Node(name)
	if !exists {
		return ""
	}

	color := ""
	switch node.Status {
	case types.Pending:
		color = "white"
	case types.Running:
		color = "yellow"
	case types.Succeeded:
		color = "green"
	case types.Failed:
		color = "red"
	case types.Blocked:
		color = "orange"
	case types.Skipped:
		color = "gray"
	}
	return fmt.Sprintf(" style=\"filled\" color=\"%s\" tooltip=\"tier %d: %s\"", color, node.Tier, node.Status)
}

func (r *planRenderer) write(format string, s ...any) {
	r.sb.WriteString(fmt.Sprintf(format+"\n", s...))
}

func quoteString(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

var idleChars = []string{" ", "'", "\"", "(", ")", "*", "&", "^", "%", "$", "#", "@", "!", "?", "<", ">", "[", "]", "{", "}", ".", "-"}

func idString(s string) string {
	for _, ch := range idleChars {
		s = strings.ReplaceAll(s, ch, "_")
	}
	return s
}
