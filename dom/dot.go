package dom

import (
	"fmt"
	"strings"
)

// Dot renders the dominator tree in the Graphviz DOT format. If df is not
// nil, frontier relations are drawn as dashed edges.
func (t *Tree) Dot(df Frontier) string {
	b := &strings.Builder{}
	b.WriteString("digraph D {\n")
	b.WriteString("  node [shape=circle];\n")
	for _, id := range t.rpo {
		fmt.Fprintf(b, "  block_%d [label=\"%d\"];\n", id, id)
	}
	for _, id := range t.rpo {
		for _, child := range t.children[id] {
			fmt.Fprintf(b, "  block_%d -> block_%d;\n", id, child)
		}
	}
	if df != nil {
		for _, id := range t.rpo {
			for _, y := range df.Of(id) {
				fmt.Fprintf(b, "  block_%d -> block_%d [style=dashed];\n", id, y)
			}
		}
	}
	b.WriteString("}\n")
	return b.String()
}
