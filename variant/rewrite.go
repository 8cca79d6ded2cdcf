package variant

import (
	"twdefaults/selector"
)

// Capabilities is handed to RewriteFunc for each class node being rewritten.
type Capabilities struct {
	tree *selector.Tree
	node int
}

// WithPseudo inserts ", " followed by pseudo text (for example
// ":where(.d\:foo)") right after the class node being rewritten and returns
// className unchanged, so it can be returned directly from RewriteFunc.
// ".foo" becomes ".foo, :where(.d\:foo)" which also matches elements that
// only carry the prefixed class.
func (c Capabilities) WithPseudo(className, pseudo string) string {
	c.tree.InsertAfter(c.node, c.tree.NewPseudo(", "+pseudo))
	return className
}

// AppendPseudo attaches pseudo directly to the class node being rewritten,
// ".foo" becomes ".foo:hover", and returns className.
func (c Capabilities) AppendPseudo(className, pseudo string) string {
	c.tree.InsertAfter(c.node, c.tree.NewPseudo(pseudo))
	return className
}

// RewriteFunc receives a decoded class name and returns the class name to
// put in its place.
type RewriteFunc func(className string, caps Capabilities) string

// RewriteClasses parses a single selector, calls fn for every class it
// contains (including classes nested in :is(), :not() and similar) and
// returns the serialized result. Parse errors are returned as is.
func RewriteClasses(sel string, fn RewriteFunc) (string, error) {
	tree, err := selector.Parse(sel)
	if err != nil {
		return "", err
	}
	tree.WalkClasses(func(i int) {
		name := fn(tree.Node(i).Value, Capabilities{tree: tree, node: i})
		tree.SetClass(i, name)
	})
	return tree.String(), nil
}
