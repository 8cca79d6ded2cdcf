package engine

import (
	"twdefaults/variant"
)

var pseudoVariants = map[string]string{
	"hover":         ":hover",
	"focus":         ":focus",
	"focus-within":  ":focus-within",
	"focus-visible": ":focus-visible",
	"active":        ":active",
	"visited":       ":visited",
	"disabled":      ":disabled",
	"checked":       ":checked",
	"first":         ":first-child",
	"last":          ":last-child",
	"odd":           ":nth-child(odd)",
	"even":          ":nth-child(even)",
}

func (e *Engine) registerBuiltins() {
	for name, pseudo := range pseudoVariants {
		e.AddVariant(name, e.pseudoVariant(name, pseudo))
	}
}

// pseudoVariant renames every class to "<name><sep><class>" and appends
// pseudo right after it.
func (e *Engine) pseudoVariant(name, pseudo string) variant.Func {
	prefix := name + e.separator
	return variant.TransformAllSelectors(func(sel string) (string, error) {
		return variant.RewriteClasses(sel, func(className string, caps variant.Capabilities) string {
			return caps.AppendPseudo(prefix+className, pseudo)
		})
	}, variant.TransformOptions{})
}
