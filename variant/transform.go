package variant

import (
	"strings"

	"twdefaults/css"
)

// TransformFunc rewrites a single selector (one item of a selector list).
type TransformFunc func(sel string) (string, error)

// Context is passed to variant functions by the host. Container holds the
// rules generated for a utility class, variants modify them in place.
type Context struct {
	Container css.Container
}

// Func is a variant implementation registered with the host.
type Func func(ctx Context) error

// TransformOptions are optional hooks for TransformAllSelectors.
type TransformOptions struct {
	// Wrap, when set, creates a node every container child is moved into
	// after all selectors were transformed.
	Wrap func() css.Container
	// WithRule is called for every rule after its selector was rewritten.
	WithRule func(rule *css.Rule)
}

// IsKeyframeRule reports whether rule is a keyframe selector ("from", "50%")
// inside of @keyframes or a vendor prefixed variant of it.
func IsKeyframeRule(rule *css.Rule) bool {
	at, ok := rule.Parent().(*css.AtRule)
	return ok && strings.HasSuffix(strings.ToLower(at.Name), "keyframes")
}

// TransformAllSelectors returns variant function which applies transform to
// every selector of every rule in the container, keyframe rules excluded.
func TransformAllSelectors(transform TransformFunc, opts TransformOptions) Func {
	return func(ctx Context) error {
		err := css.WalkRules(ctx.Container, func(rule *css.Rule) error {
			if IsKeyframeRule(rule) {
				return nil
			}
			parts := SplitByUnescapedCommas(rule.Selector)
			for i, part := range parts {
				res, err := transform(part)
				if err != nil {
					return err
				}
				parts[i] = res
			}
			rule.Selector = strings.Join(parts, ",")
			if opts.WithRule != nil {
				opts.WithRule(rule)
			}
			return nil
		})
		if err != nil {
			return err
		}

		if opts.Wrap != nil {
			wrapper := opts.Wrap()
			nodes := append([]css.Node(nil), ctx.Container.Nodes()...)
			ctx.Container.RemoveAll()
			wrapper.Append(nodes...)
			ctx.Container.Append(wrapper)
		}
		return nil
	}
}
