// Package engine is a small utility-CSS host. It takes a stylesheet of
// utility classes, a list of class candidates found in content, and emits
// rules for the used classes with registered variants applied.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"twdefaults/css"
	"twdefaults/selector"
	"twdefaults/variant"
)

// DefaultSeparator separates variants from the utility name: "d:hover:p-4".
const DefaultSeparator = ":"

// Plugin is anything which can register variants with the engine.
type Plugin interface {
	Register(api variant.API)
}

// Engine implements variant.API.
type Engine struct {
	log       *zap.Logger
	separator string
	variants  map[string]variant.Func
}

// New creates engine with built-in pseudo-class variants registered.
func New(separator string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if separator == "" {
		separator = DefaultSeparator
	}
	e := &Engine{
		log:       log.Named("engine"),
		separator: separator,
		variants:  make(map[string]variant.Func),
	}
	e.registerBuiltins()
	return e
}

// Use registers plugins, later registrations replace variants with the same name.
func (e *Engine) Use(plugins ...Plugin) *Engine {
	for _, p := range plugins {
		p.Register(e)
	}
	return e
}

func (e *Engine) AddVariant(name string, fn variant.Func) {
	if _, exists := e.variants[name]; exists {
		e.log.Debug("Replacing variant", zap.String("name", name))
	}
	e.variants[name] = fn
}

func (e *Engine) Escape(className string) string {
	return selector.EscapeCommas(selector.Escape(className))
}

func (e *Engine) Separator() string {
	return e.separator
}

// Variant returns variant registered under name.
func (e *Engine) Variant(name string) (variant.Func, bool) {
	fn, ok := e.variants[name]
	return fn, ok
}

// Variants returns names of all registered variants in natural order.
func (e *Engine) Variants() []string {
	names := make([]string, 0, len(e.variants))
	for name := range e.variants {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// Generate produces stylesheet for candidates. Top-level nodes of sheet
// which do not define utilities (@import, @font-face, @keyframes, comments)
// are copied first, followed by rules for every known candidate. Candidates
// referring to unknown utilities or variants are skipped, errors returned by
// variants abort generation.
func (e *Engine) Generate(sheet *css.Root, candidates []string) (*css.Root, error) {
	idx := e.buildIndex(sheet)

	out := css.NewRoot()
	for _, n := range sheet.Nodes() {
		if _, utility := idx.owners[n]; !utility {
			out.Append(css.Clone(n))
		}
	}

	var generated int
	for _, candidate := range normalize(candidates) {
		nodes, err := e.generate(idx, candidate)
		if err != nil {
			return nil, err
		}
		if len(nodes) > 0 {
			generated++
		}
		out.Append(nodes...)
	}

	e.log.Debug("Generated CSS", zap.Int("candidates", len(candidates)), zap.Int("used", generated))
	return out, nil
}

func (e *Engine) generate(idx *index, candidate string) ([]css.Node, error) {
	parts := strings.Split(candidate, e.separator)
	utility, names := parts[len(parts)-1], parts[:len(parts)-1]

	sources := idx.utilities[utility]
	if len(sources) == 0 {
		e.log.Debug("Unknown utility", zap.String("candidate", candidate))
		return nil, nil
	}

	fns := make([]variant.Func, len(names))
	for i, name := range names {
		fn, ok := e.variants[name]
		if !ok {
			e.log.Debug("Unknown variant", zap.String("candidate", candidate), zap.String("variant", name))
			return nil, nil
		}
		fns[i] = fn
	}

	container := css.NewRoot()
	for _, src := range sources {
		container.Append(extract(src, utility))
	}

	// variant closest to the utility name is applied first
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i](variant.Context{Container: container}); err != nil {
			return nil, fmt.Errorf("unable to apply variant %q to %q: %w", names[i], candidate, err)
		}
	}
	return append([]css.Node(nil), container.Nodes()...), nil
}

// normalize removes duplicates and orders candidates naturally so output does
// not depend on content scanning order.
func normalize(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Sort(natural.StringSlice(out))
	return out
}
