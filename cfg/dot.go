package cfg

import (
	"fmt"
	"strings"
)

func dotescape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// Dot renders the live blocks and their edges in the Graphviz DOT format.
// As the blocks are shared with SSA construction, rendering before and
// after construction shows the program before and after renaming.
func (c *CFG) Dot() string {
	b := &strings.Builder{}
	b.WriteString("digraph G {\n")
	b.WriteString("  node [shape=box nojustify=false];\n")
	for _, id := range c.nodes {
		fmt.Fprintf(b, "  block_%d [label=\"block_%d\\l", id, id)
		for _, inst := range c.blocks[id].Instructions {
			fmt.Fprintf(b, "%s\\l", dotescape(inst.String()))
		}
		b.WriteString("\"];\n")
	}
	for _, e := range c.edges {
		switch e.Kind {
		case BK_TRUE, BK_FALSE:
			fmt.Fprintf(b, "  block_%d -> block_%d [label=%s];\n", e.From, e.To, e.Kind)
		default:
			fmt.Fprintf(b, "  block_%d -> block_%d;\n", e.From, e.To)
		}
	}
	b.WriteString("}\n")
	return b.String()
}
