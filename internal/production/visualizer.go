// Package production provides production integrations: transition
// publishing and structure export (Graphviz DOT, YAML documents).
package production

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/comalice/tickfsm/internal/primitives"
)

// DefaultVisualizer renders machine declarations.
type DefaultVisualizer struct{}

// ExportDOT generates Graphviz DOT source for the machine. Regions and
// sub-machines become clusters; states in current are highlighted.
// Sub-machine nodes are qualified as "<state>/<sub state>".
func (v *DefaultVisualizer) ExportDOT(config *primitives.MachineConfig, current []primitives.StateID) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", config.ID)
	buf.WriteString(`  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)
	renderMachine(&buf, config, "", current, "  ")
	buf.WriteString("}\n")
	return buf.String()
}

func renderMachine(buf *bytes.Buffer, config *primitives.MachineConfig, prefix string, current []primitives.StateID, indent string) {
	node := func(id primitives.StateID) string { return prefix + string(id) }

	for r, region := range config.Regions {
		name := region.Name
		if name == "" {
			name = fmt.Sprintf("region %d", r)
		}
		fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+prefix+name)
		fmt.Fprintf(buf, "%s  label=%q;\n", indent, name)

		start := prefix + "__start_" + name
		fmt.Fprintf(buf, "%s  %q [shape=point];\n", indent, start)
		fmt.Fprintf(buf, "%s  %q -> %q;\n", indent, start, node(region.Initial))

		for _, id := range region.States {
			st, err := config.FindState(id)
			if err != nil {
				continue
			}
			style := ""
			if prefix == "" && slices.Contains(current, id) {
				style = " style=filled fillcolor=lightgreen"
			}
			if isInterrupt(region, id) {
				style += " color=red"
			}
			if st.Sub != nil {
				fmt.Fprintf(buf, "%s  %q [label=%q shape=ellipse%s];\n", indent, node(id), string(id), style)
				fmt.Fprintf(buf, "%s  subgraph %q {\n", indent, "cluster_"+node(id)+"_sub")
				fmt.Fprintf(buf, "%s    label=%q;\n", indent, st.Sub.ID)
				renderMachine(buf, st.Sub, node(id)+"/", nil, indent+"    ")
				fmt.Fprintf(buf, "%s  }\n", indent)
				continue
			}
			fmt.Fprintf(buf, "%s  %q [label=%q%s];\n", indent, node(id), string(id), style)
		}
		fmt.Fprintf(buf, "%s}\n", indent)
	}

	for i := range config.Transitions {
		t := &config.Transitions[i]
		label := string(t.Event)
		if t.Event == primitives.NoEventKey {
			label = "ε"
		}
		if t.GuardName != "" {
			label += " [" + t.GuardName + "]"
		}
		if t.ActionName != "" {
			label += " / " + t.ActionName
		}
		attrs := fmt.Sprintf("label=%q", label)
		if t.Kind == primitives.Internal {
			attrs += " style=dashed"
		}
		if t.ShallowHistory {
			attrs += " arrowhead=odot"
		}
		fmt.Fprintf(buf, "%s%q -> %q [%s];\n", indent, node(t.Source), node(t.Target), attrs)
	}
}

func isInterrupt(region primitives.RegionConfig, id primitives.StateID) bool {
	for _, intr := range region.Interrupts {
		if intr.State == id {
			return true
		}
	}
	return false
}
