package css

import (
	"fmt"
	"io"
	"strings"
)

// Node is a single item of a stylesheet tree.
type Node interface {
	// Parent returns container node belongs to or nil for detached nodes.
	Parent() Container
	setParent(Container)
	clone() Node
}

// Container is a node which holds other nodes: Root, AtRule and Rule.
type Container interface {
	Node
	Nodes() []Node
	// Append moves nodes to the end of the container, detaching them from
	// their previous parents.
	Append(nodes ...Node)
	// RemoveAll detaches all child nodes.
	RemoveAll()
	remove(Node)
}

type base struct {
	parent Container
}

func (b *base) Parent() Container {
	return b.parent
}

func (b *base) setParent(c Container) {
	b.parent = c
}

type children struct {
	nodes []Node
}

func (c *children) Nodes() []Node {
	return c.nodes
}

func (c *children) add(self Container, nodes []Node) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if p := n.Parent(); p != nil {
			p.remove(n)
		}
		n.setParent(self)
		c.nodes = append(c.nodes, n)
	}
}

func (c *children) removeAll() {
	for _, n := range c.nodes {
		n.setParent(nil)
	}
	c.nodes = nil
}

func (c *children) remove(n Node) {
	for i, existing := range c.nodes {
		if existing == n {
			c.nodes = append(c.nodes[:i:i], c.nodes[i+1:]...)
			n.setParent(nil)
			return
		}
	}
}

func (c *children) cloneInto(self Container) {
	nodes := c.nodes
	c.nodes = make([]Node, 0, len(nodes))
	for _, n := range nodes {
		cn := n.clone()
		cn.setParent(self)
		c.nodes = append(c.nodes, cn)
	}
}

// Root is the top level of a stylesheet.
type Root struct {
	base
	children
}

// NewRoot creates empty stylesheet.
func NewRoot() *Root {
	return &Root{}
}

func (r *Root) Append(nodes ...Node) { r.add(r, nodes) }
func (r *Root) RemoveAll()           { r.removeAll() }
func (r *Root) remove(n Node)        { r.children.remove(n) }

func (r *Root) clone() Node {
	c := *r
	c.parent = nil
	c.cloneInto(&c)
	return &c
}

// Clone returns deep copy of the stylesheet.
func (r *Root) Clone() *Root {
	return r.clone().(*Root)
}

// AtRule is a rule starting with "@": "@media (...) { ... }" or "@import ...;".
type AtRule struct {
	base
	children
	Name   string // without "@", e.g. "media", "-webkit-keyframes"
	Params string // prelude between the name and the block
	Block  bool   // false for statement at-rules terminated by ";"
	Line   int
}

// NewAtRule creates at-rule with a block.
func NewAtRule(name, params string) *AtRule {
	return &AtRule{Name: name, Params: params, Block: true}
}

func (a *AtRule) Append(nodes ...Node) {
	a.Block = true
	a.add(a, nodes)
}
func (a *AtRule) RemoveAll()    { a.removeAll() }
func (a *AtRule) remove(n Node) { a.children.remove(n) }

func (a *AtRule) clone() Node {
	c := *a
	c.parent = nil
	c.cloneInto(&c)
	return &c
}

// Clone returns detached deep copy of the at-rule.
func (a *AtRule) Clone() *AtRule {
	return a.clone().(*AtRule)
}

// Rule is a qualified rule: selector list followed by a block.
type Rule struct {
	base
	children
	Selector string
	Line     int
}

// NewRule creates empty rule.
func NewRule(selector string) *Rule {
	return &Rule{Selector: selector}
}

func (r *Rule) Append(nodes ...Node) { r.add(r, nodes) }
func (r *Rule) RemoveAll()           { r.removeAll() }
func (r *Rule) remove(n Node)        { r.children.remove(n) }

func (r *Rule) clone() Node {
	c := *r
	c.parent = nil
	c.cloneInto(&c)
	return &c
}

// Clone returns detached deep copy of the rule.
func (r *Rule) Clone() *Rule {
	return r.clone().(*Rule)
}

// Declaration is a single "property: value" pair.
type Declaration struct {
	base
	Prop      string
	Value     string
	Important bool
}

// NewDeclaration creates declaration.
func NewDeclaration(prop, value string) *Declaration {
	return &Declaration{Prop: prop, Value: value}
}

func (d *Declaration) clone() Node {
	c := *d
	c.parent = nil
	return &c
}

// Comment keeps comment text without the /* */ delimiters.
type Comment struct {
	base
	Text string
}

func (c *Comment) clone() Node {
	cc := *c
	cc.parent = nil
	return &cc
}

// Clone returns detached deep copy of any node.
func Clone(n Node) Node {
	return n.clone()
}

// Detach removes node from its parent container, if any.
func Detach(n Node) {
	if p := n.Parent(); p != nil {
		p.remove(n)
	}
}

// WalkRules calls fn for every rule in c, depth first, including rules nested
// in other rules and at-rules. Children are snapshotted before descending, so
// fn may modify the rule it is given. The first error stops the walk.
func WalkRules(c Container, fn func(*Rule) error) error {
	nodes := append([]Node(nil), c.Nodes()...)
	for _, n := range nodes {
		if r, ok := n.(*Rule); ok {
			if err := fn(r); err != nil {
				return err
			}
		}
		if nc, ok := n.(Container); ok {
			if err := WalkRules(nc, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// WalkAtRules calls fn for every at-rule in c, depth first.
func WalkAtRules(c Container, fn func(*AtRule) error) error {
	nodes := append([]Node(nil), c.Nodes()...)
	for _, n := range nodes {
		if a, ok := n.(*AtRule); ok {
			if err := fn(a); err != nil {
				return err
			}
		}
		if nc, ok := n.(Container); ok {
			if err := WalkAtRules(nc, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteTo writes the stylesheet to w, implementing io.WriterTo.
// Top-level items are separated with blank lines.
func (r *Root) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, n := range r.nodes {
		if i > 0 {
			k, err := fmt.Fprint(w, "\n")
			total += int64(k)
			if err != nil {
				return total, err
			}
		}
		k, err := writeNode(w, n, 0)
		total += int64(k)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (r *Root) String() string {
	var sb strings.Builder
	r.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// String returns the CSS text of the rule.
func (r *Rule) String() string {
	var sb strings.Builder
	writeNode(&sb, r, 0) //nolint:errcheck
	return sb.String()
}

func writeNode(w io.Writer, n Node, depth int) (int, error) {
	indent := strings.Repeat("  ", depth)
	switch n := n.(type) {
	case *Rule:
		return writeBlock(w, indent+n.Selector, n.nodes, depth)
	case *AtRule:
		head := indent + "@" + n.Name
		if n.Params != "" {
			head += " " + n.Params
		}
		if !n.Block {
			return fmt.Fprintf(w, "%s;\n", head)
		}
		return writeBlock(w, head, n.nodes, depth)
	case *Declaration:
		if n.Important {
			return fmt.Fprintf(w, "%s%s: %s !important;\n", indent, n.Prop, n.Value)
		}
		return fmt.Fprintf(w, "%s%s: %s;\n", indent, n.Prop, n.Value)
	case *Comment:
		return fmt.Fprintf(w, "%s/*%s*/\n", indent, n.Text)
	case *Root:
		k, err := n.WriteTo(w)
		return int(k), err
	}
	return 0, nil
}

func writeBlock(w io.Writer, head string, nodes []Node, depth int) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s {\n", head)
	total += n
	if err != nil {
		return total, err
	}
	for _, c := range nodes {
		n, err = writeNode(w, c, depth+1)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprintf(w, "%s}\n", strings.Repeat("  ", depth))
	total += n
	return total, err
}
