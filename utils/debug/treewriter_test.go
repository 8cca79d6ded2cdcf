package debug

import (
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{
			name:   "no depth",
			depth:  0,
			format: "root",
			want:   "root\n",
		},
		{
			name:   "depth 2",
			depth:  2,
			format: "double indent",
			want:   "    double indent\n",
		},
		{
			name:   "with formatting",
			depth:  1,
			format: "%s = %d",
			args:   []any{"count", 5},
			want:   "  count = 5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Node(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		label string
		attrs []string
		want  string
	}{
		{
			name:  "label only",
			label: "selector",
			want:  "selector\n",
		},
		{
			name:  "attributes",
			depth: 1,
			label: "class",
			attrs: []string{"value", "d:foo", "raw", `d\:foo`},
			want:  "  class value=\"d:foo\" raw=\"d\\\\:foo\"\n",
		},
		{
			name:  "empty attribute skipped",
			label: "pseudo",
			attrs: []string{"value", ":hover", "args", ""},
			want:  "pseudo value=\":hover\"\n",
		},
		{
			name:  "odd attribute ignored",
			label: "tag",
			attrs: []string{"value"},
			want:  "tag\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Node(tt.depth, tt.label, tt.attrs...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Node() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "hello", want: `"hello"`},
		{input: `say "hi"`, want: `"say \"hi\""`},
		{input: `d\:foo`, want: `"d\\:foo"`},
	}

	for _, tt := range tests {
		if got := encodeText(tt.input); got != tt.want {
			t.Errorf("encodeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
