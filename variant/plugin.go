// Package variant implements the "defaults" variant: rules generated for a
// prefixed utility class (d:foo by default) get their class selectors wrapped
// in :where() so they carry no extra specificity and any plain utility or
// user style overrides them.
package variant

import (
	"strings"

	"twdefaults/css"
	"twdefaults/selector"
)

// DefaultModifier is used when no usable modifier was configured.
const DefaultModifier = "d"

// API is the part of the host the plugin needs.
type API interface {
	// AddVariant registers variant fn under name.
	AddVariant(name string, fn Func)
	// Escape escapes class name for use in a selector.
	Escape(className string) string
	// Separator returns string separating variants from utility name.
	Separator() string
}

// Options configure the plugin. Modifier is deliberately untyped as it comes
// from user supplied configuration: anything but a non-empty string selects
// DefaultModifier.
type Options struct {
	Modifier any
	Strategy Strategy
	// Layer, when not empty, wraps generated rules into "@layer <Layer>".
	Layer string
}

// Plugin registers the variant with a host.
type Plugin struct {
	modifier string
	strategy Strategy
	layer    string
}

// New creates plugin from options.
func New(opts Options) *Plugin {
	modifier := DefaultModifier
	if m, ok := opts.Modifier.(string); ok && m != "" {
		modifier = m
	}
	return &Plugin{modifier: modifier, strategy: opts.Strategy, layer: opts.Layer}
}

// Modifier returns name the variant is registered under.
func (p *Plugin) Modifier() string {
	return p.modifier
}

// Register adds the variant to the host.
func (p *Plugin) Register(api API) {
	var opts TransformOptions
	if p.layer != "" {
		layer := p.layer
		opts.Wrap = func() css.Container {
			return css.NewAtRule("layer", layer)
		}
	}
	api.AddVariant(p.modifier, TransformAllSelectors(p.transform(api), opts))
}

func (p *Plugin) transform(api API) TransformFunc {
	prefix := p.modifier + api.Separator()

	if p.strategy == StrategyWhere {
		return func(sel string) (string, error) {
			return wrapWhere(sel, func(className string, _ Capabilities) string {
				return prefix + className
			})
		}
	}
	return func(sel string) (string, error) {
		return RewriteClasses(sel, func(className string, caps Capabilities) string {
			return caps.WithPseudo(className, ":where(."+api.Escape(prefix+className)+")")
		})
	}
}

// wrapWhere renames classes with fn and wraps the selector in html:where().
// Pseudo elements have to stay outside of :where() to remain valid, so
// trailing ones are moved after it.
func wrapWhere(sel string, fn RewriteFunc) (string, error) {
	tree, err := selector.Parse(sel)
	if err != nil {
		return "", err
	}
	tree.WalkClasses(func(i int) {
		tree.SetClass(i, fn(tree.Node(i).Value, Capabilities{tree: tree, node: i}))
	})

	var out []string
	for _, s := range tree.Selectors() {
		n := tree.Node(s)
		before, after := n.Before, n.After
		n.Before, n.After = "", ""

		var elements strings.Builder
		children := n.Children
		cut := len(children)
		for cut > 0 && strings.HasPrefix(tree.Node(children[cut-1]).Value, "::") {
			cut--
		}
		for _, c := range children[cut:] {
			elements.WriteString(tree.Text(c))
		}
		for _, c := range append([]int(nil), children[cut:]...) {
			tree.Remove(c)
		}

		inner := tree.Text(s)
		if inner == "" {
			out = append(out, before+elements.String()+after)
			continue
		}
		out = append(out, before+"html:where("+inner+")"+elements.String()+after)
	}
	return strings.Join(out, ","), nil
}
