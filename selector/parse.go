package selector

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ErrSyntax is returned (wrapped) for selectors which cannot be parsed.
var ErrSyntax = errors.New("selector syntax error")

// pseudo classes whose arguments are selector lists, all other functional
// pseudo classes keep arguments as raw text
var selectorArgs = map[string]bool{
	":is":           true,
	":where":        true,
	":not":          true,
	":has":          true,
	":matches":      true,
	":any":          true,
	":-webkit-any":  true,
	":-moz-any":     true,
	":host":         true,
	":host-context": true,
	"::slotted":     true,
	":global":       true,
	":local":        true,
}

type token struct {
	tt   css.TokenType
	text string
	off  int
}

type parser struct {
	text string
	toks []token
	pos  int
	tree *Tree
}

// Parse parses a selector list. Whitespace and comments are preserved so
// that serializing an unmodified tree returns the original text.
func Parse(text string) (*Tree, error) {
	p := &parser{text: text, tree: NewTree()}
	if err := p.tokenize(); err != nil {
		return nil, err
	}
	if err := p.parseList(p.tree.Root(), false); err != nil {
		return nil, err
	}
	return p.tree, nil
}

func (p *parser) tokenize() error {
	l := css.NewLexer(parse.NewInputString(p.text))
	off := 0
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: %w", ErrSyntax, err)
			}
			return nil
		}
		p.toks = append(p.toks, token{tt: tt, text: string(data), off: off})
		off += len(data)
	}
}

func (p *parser) peek() token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return token{tt: css.ErrorToken, off: len(p.text)}
}

func (p *parser) next() token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrSyntax, fmt.Sprintf(format, args...), t.off, p.text)
}

func (p *parser) whitespace() string {
	var sb strings.Builder
	for p.peek().tt == css.WhitespaceToken {
		sb.WriteString(p.next().text)
	}
	return sb.String()
}

func atListEnd(t token) bool {
	return t.tt == css.CommaToken || t.tt == css.RightParenthesisToken || t.tt == css.ErrorToken
}

func isCombinator(t token) bool {
	if t.tt == css.ColumnToken {
		return true
	}
	return t.tt == css.DelimToken && (t.text == ">" || t.text == "+" || t.text == "~")
}

// parseList parses comma separated selectors as children of parent. Nested
// lists (pseudo class arguments) stop before the closing parenthesis.
func (p *parser) parseList(parent int, nested bool) error {
	for {
		sel := p.tree.appendChild(parent, Node{Kind: KindSelector})
		if err := p.parseSelector(sel); err != nil {
			return err
		}
		t := p.peek()
		switch t.tt {
		case css.CommaToken:
			p.next()
		case css.RightParenthesisToken:
			if nested {
				return nil
			}
			return p.errorf(t, "unexpected %q", t.text)
		default:
			if nested {
				return p.errorf(t, "unclosed pseudo-class arguments")
			}
			return nil
		}
	}
}

func (p *parser) parseSelector(sel int) error {
	p.tree.nodes[sel].Before = p.whitespace()
	for {
		t := p.peek()
		switch {
		case atListEnd(t):
			return p.checkDangling(sel, t)

		case t.tt == css.WhitespaceToken:
			ws := p.whitespace()
			nt := p.peek()
			switch {
			case atListEnd(nt):
				p.tree.nodes[sel].After = ws
				return p.checkDangling(sel, nt)
			case isCombinator(nt):
				p.next()
				p.tree.appendChild(sel, Node{Kind: KindCombinator, Value: nt.text, Raw: ws + nt.text + p.whitespace()})
			default:
				p.tree.appendChild(sel, Node{Kind: KindCombinator, Value: " ", Raw: ws})
			}

		case isCombinator(t):
			p.next()
			p.tree.appendChild(sel, Node{Kind: KindCombinator, Value: t.text, Raw: t.text + p.whitespace()})

		default:
			if err := p.parseSimple(sel); err != nil {
				return err
			}
		}
	}
}

func (p *parser) checkDangling(sel int, at token) error {
	children := p.tree.nodes[sel].Children
	if len(children) == 0 {
		return nil
	}
	if last := p.tree.nodes[children[len(children)-1]]; last.Kind == KindCombinator {
		return p.errorf(at, "expected selector after combinator %q", last.Value)
	}
	return nil
}

func (p *parser) parseSimple(sel int) error {
	t := p.next()
	switch t.tt {
	case css.DelimToken:
		switch t.text {
		case ".":
			nt := p.peek()
			if nt.tt != css.IdentToken {
				return p.errorf(nt, "expected class name after %q", ".")
			}
			p.next()
			p.tree.appendChild(sel, Node{Kind: KindClass, Value: Unescape(nt.text), Raw: nt.text})
		case "*":
			p.tree.appendChild(sel, Node{Kind: KindUniversal, Value: "*", Raw: "*" + p.namespaced()})
		case "&":
			p.tree.appendChild(sel, Node{Kind: KindNesting, Value: "&", Raw: "&"})
		case "|":
			nt := p.next()
			if nt.tt != css.IdentToken && !(nt.tt == css.DelimToken && nt.text == "*") {
				return p.errorf(nt, "expected element name after %q", "|")
			}
			p.tree.appendChild(sel, Node{Kind: KindTag, Value: Unescape(nt.text), Raw: "|" + nt.text})
		default:
			return p.errorf(t, "unexpected %q", t.text)
		}

	case css.IdentToken:
		p.tree.appendChild(sel, Node{Kind: KindTag, Value: Unescape(t.text), Raw: t.text + p.namespaced()})

	case css.HashToken:
		p.tree.appendChild(sel, Node{Kind: KindID, Value: Unescape(t.text[1:]), Raw: t.text[1:]})

	case css.LeftBracketToken:
		var sb strings.Builder
		for {
			nt := p.next()
			if nt.tt == css.RightBracketToken {
				break
			}
			if nt.tt == css.ErrorToken {
				return p.errorf(nt, "unclosed attribute selector")
			}
			sb.WriteString(nt.text)
		}
		raw := sb.String()
		p.tree.appendChild(sel, Node{Kind: KindAttribute, Value: strings.TrimSpace(raw), Raw: raw})

	case css.ColonToken:
		return p.parsePseudo(sel)

	case css.CommentToken:
		p.tree.appendChild(sel, Node{Kind: KindComment, Value: t.text, Raw: t.text})

	default:
		return p.errorf(t, "unexpected %q", t.text)
	}
	return nil
}

// namespaced consumes "|name" following a namespace prefix.
func (p *parser) namespaced() string {
	if t := p.peek(); t.tt != css.DelimToken || t.text != "|" {
		return ""
	}
	if p.pos+1 >= len(p.toks) {
		return ""
	}
	nt := p.toks[p.pos+1]
	if nt.tt != css.IdentToken && !(nt.tt == css.DelimToken && nt.text == "*") {
		return ""
	}
	p.pos += 2
	return "|" + nt.text
}

func (p *parser) parsePseudo(sel int) error {
	colons := ":"
	if p.peek().tt == css.ColonToken {
		p.next()
		colons = "::"
	}

	t := p.next()
	switch t.tt {
	case css.IdentToken:
		p.tree.appendChild(sel, Node{
			Kind:  KindPseudo,
			Value: colons + strings.ToLower(Unescape(t.text)),
			Raw:   colons + t.text,
		})
		return nil

	case css.FunctionToken:
		name := strings.TrimSuffix(t.text, "(")
		value := colons + strings.ToLower(Unescape(name))
		n := p.tree.appendChild(sel, Node{Kind: KindPseudo, Value: value, Raw: colons + name, Functional: true})

		if selectorArgs[value] {
			if err := p.parseList(n, true); err != nil {
				return err
			}
		} else {
			args, err := p.rawArgs()
			if err != nil {
				return err
			}
			p.tree.nodes[n].Args = args
		}
		if ct := p.next(); ct.tt != css.RightParenthesisToken {
			return p.errorf(ct, "unclosed %s(", value)
		}
		return nil
	}
	return p.errorf(t, "expected pseudo-class name after %q", colons)
}

// rawArgs collects tokens up to (not including) the matching closing parenthesis.
func (p *parser) rawArgs() (string, error) {
	var sb strings.Builder
	depth := 0
	for {
		t := p.peek()
		switch t.tt {
		case css.ErrorToken:
			return "", p.errorf(t, "unclosed pseudo-class arguments")
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			if depth == 0 {
				return sb.String(), nil
			}
			depth--
		}
		sb.WriteString(p.next().text)
	}
}
