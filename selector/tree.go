// Package selector parses CSS selector lists into a flat, index-linked tree
// which can be walked, edited in place and serialized back to text.
package selector

import (
	"strings"
)

// Kind is the type of a node in the selector tree.
type Kind uint8

const (
	KindRoot       Kind = iota // selector list, children are KindSelector
	KindSelector               // single complex selector
	KindClass                  // .name
	KindID                     // #name
	KindTag                    // div, ns|div
	KindUniversal              // *
	KindNesting                // &
	KindAttribute              // [attr=value]
	KindPseudo                 // :hover, ::before, :is(...)
	KindCombinator             // descendant, >, +, ~, ||
	KindComment                // /* ... */
)

var kindNames = [...]string{
	KindRoot:       "root",
	KindSelector:   "selector",
	KindClass:      "class",
	KindID:         "id",
	KindTag:        "tag",
	KindUniversal:  "universal",
	KindNesting:    "nesting",
	KindAttribute:  "attribute",
	KindPseudo:     "pseudo",
	KindCombinator: "combinator",
	KindComment:    "comment",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Node is a single element of the tree. Nodes never hold pointers to each
// other, only indexes into Tree.
type Node struct {
	Kind Kind
	// Value is the decoded value: class, id and tag names are unescaped,
	// pseudo nodes keep their colons (":is", "::before"), combinators keep the
	// operator only (" " for descendant).
	Value string
	// Raw is the source form written back on serialization: escaped names,
	// attribute contents, combinators with surrounding whitespace.
	Raw string
	// Args holds raw arguments of functional pseudo classes which do not
	// take selectors (":nth-child(2n+1)"). Selector arguments are children.
	Args string
	// Functional marks pseudo nodes written with parentheses.
	Functional bool
	// Before and After keep whitespace around KindSelector nodes.
	Before, After string

	Parent   int
	Children []int
}

// Tree owns all nodes produced by Parse. Node 0 is always the root.
type Tree struct {
	nodes []Node
}

// NewTree returns tree containing only empty root.
func NewTree() *Tree {
	return &Tree{nodes: []Node{{Kind: KindRoot, Parent: -1}}}
}

// Root returns index of the root node.
func (t *Tree) Root() int {
	return 0
}

// Len returns number of nodes ever allocated in the tree, including detached ones.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns a pointer to the node at index i. The pointer is valid until
// the next node is added to the tree.
func (t *Tree) Node(i int) *Node {
	return &t.nodes[i]
}

// add allocates a detached node and returns its index.
func (t *Tree) add(n Node) int {
	n.Parent = -1
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

// appendChild allocates node n and attaches it as the last child of parent.
func (t *Tree) appendChild(parent int, n Node) int {
	i := t.add(n)
	t.nodes[i].Parent = parent
	t.nodes[parent].Children = append(t.nodes[parent].Children, i)
	return i
}

// NewPseudo allocates a detached pseudo node which serializes as text verbatim.
func (t *Tree) NewPseudo(text string) int {
	return t.add(Node{Kind: KindPseudo, Value: text, Raw: text})
}

// InsertAfter attaches detached node n to the parent of ref, immediately after ref.
func (t *Tree) InsertAfter(ref, n int) {
	parent := t.nodes[ref].Parent
	if parent < 0 {
		panic("selector: cannot insert sibling of the root node")
	}
	children := t.nodes[parent].Children
	pos := t.indexOf(parent, ref)

	updated := make([]int, 0, len(children)+1)
	updated = append(updated, children[:pos+1]...)
	updated = append(updated, n)
	updated = append(updated, children[pos+1:]...)

	t.nodes[parent].Children = updated
	t.nodes[n].Parent = parent
}

// Remove detaches node i from its parent. The node stays allocated.
func (t *Tree) Remove(i int) {
	parent := t.nodes[i].Parent
	if parent < 0 {
		return
	}
	pos := t.indexOf(parent, i)
	children := t.nodes[parent].Children
	t.nodes[parent].Children = append(children[:pos:pos], children[pos+1:]...)
	t.nodes[i].Parent = -1
}

func (t *Tree) indexOf(parent, child int) int {
	for pos, c := range t.nodes[parent].Children {
		if c == child {
			return pos
		}
	}
	panic("selector: node is not a child of its parent")
}

// Walk visits every attached node depth-first in document order. Children
// inserted after the node being visited are visited as well. Returning false
// from fn stops the walk.
func (t *Tree) Walk(fn func(i int) bool) {
	t.walk(t.Root(), fn)
}

func (t *Tree) walk(i int, fn func(i int) bool) bool {
	if !fn(i) {
		return false
	}
	// children slice may be replaced by insertions while walking
	for pos := 0; pos < len(t.nodes[i].Children); pos++ {
		if !t.walk(t.nodes[i].Children[pos], fn) {
			return false
		}
	}
	return true
}

// WalkClasses calls fn for every class node, including classes nested in
// selector arguments of pseudo classes.
func (t *Tree) WalkClasses(fn func(i int)) {
	t.Walk(func(i int) bool {
		if t.nodes[i].Kind == KindClass {
			fn(i)
		}
		return true
	})
}

// SetClass changes the class name of node i. The escaped form is regenerated
// only when the name actually changes, so original escaping is preserved
// otherwise. Escaped commas in the result are always normalized.
func (t *Tree) SetClass(i int, name string) {
	n := &t.nodes[i]
	if n.Kind != KindClass {
		panic("selector: SetClass on " + n.Kind.String() + " node")
	}
	if name != n.Value {
		n.Value = name
		n.Raw = Escape(name)
	}
	n.Raw = EscapeCommas(n.Raw)
}

// Selectors returns top-level selector nodes.
func (t *Tree) Selectors() []int {
	return t.nodes[t.Root()].Children
}

// String serializes the tree.
func (t *Tree) String() string {
	var sb strings.Builder
	t.write(&sb, t.Root())
	return sb.String()
}

// Text serializes the subtree starting at node i.
func (t *Tree) Text(i int) string {
	var sb strings.Builder
	t.write(&sb, i)
	return sb.String()
}

func (t *Tree) write(sb *strings.Builder, i int) {
	n := &t.nodes[i]
	switch n.Kind {
	case KindRoot:
		t.writeList(sb, n.Children)
	case KindSelector:
		sb.WriteString(n.Before)
		for _, c := range n.Children {
			t.write(sb, c)
		}
		sb.WriteString(n.After)
	case KindClass:
		sb.WriteByte('.')
		sb.WriteString(n.Raw)
	case KindID:
		sb.WriteByte('#')
		sb.WriteString(n.Raw)
	case KindAttribute:
		sb.WriteByte('[')
		sb.WriteString(n.Raw)
		sb.WriteByte(']')
	case KindPseudo:
		sb.WriteString(n.Raw)
		if n.Functional {
			sb.WriteByte('(')
			if len(n.Children) > 0 {
				t.writeList(sb, n.Children)
			} else {
				sb.WriteString(n.Args)
			}
			sb.WriteByte(')')
		}
	default:
		sb.WriteString(n.Raw)
	}
}

func (t *Tree) writeList(sb *strings.Builder, list []int) {
	for k, c := range list {
		if k > 0 {
			sb.WriteByte(',')
		}
		t.write(sb, c)
	}
}
