package selector

import (
	"twdefaults/utils/debug"
)

// Dump renders tree structure, one node per line.
func (t *Tree) Dump() string {
	tw := debug.NewTreeWriter()
	t.dump(tw, t.Root(), 0)
	return tw.String()
}

func (t *Tree) dump(tw *debug.TreeWriter, i, depth int) {
	n := &t.nodes[i]
	switch n.Kind {
	case KindRoot, KindSelector:
		tw.Node(depth, n.Kind.String())
	case KindClass, KindID, KindTag:
		raw := n.Raw
		if raw == n.Value {
			raw = ""
		}
		tw.Node(depth, n.Kind.String(), "value", n.Value, "raw", raw)
	case KindPseudo:
		tw.Node(depth, n.Kind.String(), "value", n.Value, "args", n.Args)
	default:
		tw.Node(depth, n.Kind.String(), "value", n.Value)
	}
	for _, c := range n.Children {
		t.dump(tw, c, depth+1)
	}
}
