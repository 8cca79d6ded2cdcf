package engine_test

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"twdefaults/css"
	"twdefaults/engine"
	"twdefaults/variant"
)

const utilities = `
@import "base.css";
.foo { color: red }
.p-4 { padding: 1rem }
@media (min-width: 640px) { .foo { color: blue } .other { top: 0 } }
@keyframes spin { to { transform: rotate(360deg) } }
`

func parse(t *testing.T, text string) *css.Root {
	t.Helper()
	root, err := css.NewParser(zap.NewNop()).Parse([]byte(text))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return root
}

func TestGenerate(t *testing.T) {
	sheet := parse(t, utilities)
	before := sheet.String()

	e := engine.New("", zap.NewNop()).Use(variant.New(variant.Options{}))
	out, err := e.Generate(sheet, []string{"foo", "unknown", "x:foo", "d:foo", "foo"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := `@import "base.css";

@keyframes spin {
  to {
    transform: rotate(360deg);
  }
}

.foo, :where(.d\:foo) {
  color: red;
}

@media (min-width: 640px) {
  .foo, :where(.d\:foo) {
    color: blue;
  }
}

.foo {
  color: red;
}

@media (min-width: 640px) {
  .foo {
    color: blue;
  }
}
`
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
	}
	if sheet.String() != before {
		t.Error("Generate() modified source stylesheet")
	}
}

func TestGenerate_VariantOrder(t *testing.T) {
	sheet := parse(t, ".p-4 { padding: 1rem }")

	e := engine.New(":", nil).Use(variant.New(variant.Options{}))
	out, err := e.Generate(sheet, []string{"d:hover:p-4"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	rule := out.Nodes()[0].(*css.Rule)
	if want := `.hover\:p-4, :where(.d\:hover\:p-4):hover`; rule.Selector != want {
		t.Errorf("selector = %q, want %q", rule.Selector, want)
	}
}

func TestGenerate_CustomSeparator(t *testing.T) {
	sheet := parse(t, ".p-4 { padding: 1rem }")

	e := engine.New("_", nil).Use(variant.New(variant.Options{Modifier: "def"}))
	out, err := e.Generate(sheet, []string{"def_p-4", "d_p-4"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(out.Nodes()) != 1 {
		t.Fatalf("expected single rule, got %d nodes", len(out.Nodes()))
	}
	rule := out.Nodes()[0].(*css.Rule)
	if want := `.p-4, :where(.def_p-4)`; rule.Selector != want {
		t.Errorf("selector = %q, want %q", rule.Selector, want)
	}
}

// whereRe unwraps :where(), goquery matcher does not support it.
var whereRe = regexp.MustCompile(`:where\(([^()]*)\)`)

func TestGenerate_MatchesPrefixedClass(t *testing.T) {
	sheet := parse(t, ".foo { color: red }")

	out, err := engine.New("", nil).Use(variant.New(variant.Options{})).Generate(sheet, []string{"d:foo"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(out.Nodes()) != 1 {
		t.Fatalf("expected single rule, got %d nodes", len(out.Nodes()))
	}
	sel := out.Nodes()[0].(*css.Rule).Selector
	if want := `.foo, :where(.d\:foo)`; sel != want {
		t.Fatalf("selector = %q, want %q", sel, want)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div id="prefixed" class="d:foo"></div><div id="plain" class="foo"></div><div id="other" class="bar"></div>`))
	if err != nil {
		t.Fatalf("NewDocumentFromReader() error = %v", err)
	}

	var matched []string
	doc.Find(whereRe.ReplaceAllString(sel, "$1")).Each(func(_ int, s *goquery.Selection) {
		matched = append(matched, s.AttrOr("id", ""))
	})
	if diff := cmp.Diff([]string{"prefixed", "plain"}, matched); diff != "" {
		t.Errorf("matched elements mismatch (-want +got):\n%s", diff)
	}
}

type failing struct{ err error }

func (f failing) Register(api variant.API) {
	api.AddVariant("boom", func(variant.Context) error { return f.err })
}

func TestGenerate_VariantError(t *testing.T) {
	sheet := parse(t, ".p-4 { padding: 1rem }")
	boom := errors.New("boom")

	e := engine.New("", nil).Use(failing{err: boom})
	if _, err := e.Generate(sheet, []string{"boom:p-4"}); !errors.Is(err, boom) {
		t.Fatalf("Generate() error = %v, want %v", err, boom)
	}
}

func TestGenerate_BadSourceSelector(t *testing.T) {
	sheet := css.NewRoot()
	sheet.Append(css.NewRule(".a >"), css.NewRule(".b"))

	out, err := engine.New("", nil).Generate(sheet, []string{"a", "b"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var got []string
	for _, n := range out.Nodes() {
		got = append(got, n.(*css.Rule).Selector)
	}
	// unparsable rule is not a utility and is copied as is
	if diff := cmp.Diff([]string{".a >", ".b"}, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_API(t *testing.T) {
	e := engine.New("", nil).Use(variant.New(variant.Options{Modifier: "def"}))

	if got := e.Separator(); got != ":" {
		t.Errorf("Separator() = %q", got)
	}
	if got := e.Escape("a,b:c"); got != `a\2c b\:c` {
		t.Errorf("Escape() = %q", got)
	}

	names := e.Variants()
	if !slices.Contains(names, "def") || !slices.Contains(names, "hover") {
		t.Errorf("Variants() = %v", names)
	}
	if !slices.IsSorted(names) {
		t.Errorf("Variants() not sorted: %v", names)
	}
}
