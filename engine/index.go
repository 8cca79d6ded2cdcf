package engine

import (
	"go.uber.org/zap"

	"twdefaults/css"
	"twdefaults/selector"
	"twdefaults/variant"
)

type index struct {
	// utility class name -> top-level nodes defining it, in sheet order
	utilities map[string][]css.Node
	// top-level nodes defining at least one utility
	owners map[css.Node]struct{}
}

func (e *Engine) buildIndex(sheet *css.Root) *index {
	idx := &index{
		utilities: make(map[string][]css.Node),
		owners:    make(map[css.Node]struct{}),
	}

	for _, top := range sheet.Nodes() {
		var classes []string
		switch n := top.(type) {
		case *css.Rule:
			classes = e.classes(n)
		case *css.AtRule:
			_ = css.WalkRules(n, func(r *css.Rule) error {
				if !variant.IsKeyframeRule(r) {
					classes = append(classes, e.classes(r)...)
				}
				return nil
			})
		}
		if len(classes) == 0 {
			continue
		}
		idx.owners[top] = struct{}{}
		for _, c := range classes {
			nodes := idx.utilities[c]
			if len(nodes) > 0 && nodes[len(nodes)-1] == top {
				continue
			}
			idx.utilities[c] = append(nodes, top)
		}
	}

	e.log.Debug("Indexed stylesheet", zap.Int("utilities", len(idx.utilities)))
	return idx
}

// classes returns class names used in the rule selector. Rules with selectors
// which could not be parsed never match anything.
func (e *Engine) classes(rule *css.Rule) []string {
	tree, err := selector.Parse(rule.Selector)
	if err != nil {
		e.log.Warn("Ignoring rule with bad selector", zap.Int("line", rule.Line), zap.Error(err))
		return nil
	}
	var (
		out  []string
		seen = make(map[string]bool)
	)
	tree.WalkClasses(func(i int) {
		if name := tree.Node(i).Value; !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	})
	return out
}

func references(rule *css.Rule, className string) bool {
	tree, err := selector.Parse(rule.Selector)
	if err != nil {
		return false
	}
	found := false
	tree.WalkClasses(func(i int) {
		found = found || tree.Node(i).Value == className
	})
	return found
}

// extract returns detached copy of top-level node with only rules
// referencing className left in it.
func extract(top css.Node, className string) css.Node {
	clone := css.Clone(top)
	at, ok := clone.(*css.AtRule)
	if !ok {
		return clone
	}
	_ = css.WalkRules(at, func(r *css.Rule) error {
		if !variant.IsKeyframeRule(r) && !references(r, className) {
			css.Detach(r)
		}
		return nil
	})
	return at
}
