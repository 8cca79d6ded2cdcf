package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// ErrSyntax is returned (wrapped) when stylesheet structure cannot be parsed.
var ErrSyntax = errors.New("stylesheet syntax error")

// Parser parses CSS stylesheets into a mutable node tree.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

type token struct {
	tt   css.TokenType
	text string
	line int
}

type stream struct {
	toks []token
	pos  int
	line int // line of the last token, used for end of input errors
}

func (s *stream) peek() token {
	if s.pos < len(s.toks) {
		return s.toks[s.pos]
	}
	return token{tt: css.ErrorToken, line: s.line}
}

func (s *stream) next() token {
	t := s.peek()
	if s.pos < len(s.toks) {
		s.pos++
	}
	return t
}

// Parse parses CSS text into a stylesheet tree. Rules keep their selectors
// as written (trimmed), declarations keep raw values.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) (*Root, error) {
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	s, err := tokenize(data)
	if err != nil {
		return nil, err
	}

	root := NewRoot()
	if err := p.parseBlock(s, root, true); err != nil {
		return nil, err
	}

	var rules int
	_ = WalkRules(root, func(*Rule) error {
		rules++
		return nil
	})
	p.log.Debug("Parsed CSS", zap.Int("top-level", len(root.Nodes())), zap.Int("rules", rules))
	return root, nil
}

func tokenize(data []byte) (*stream, error) {
	l := css.NewLexer(parse.NewInput(bytes.NewReader(data)))
	s := &stream{line: 1}
	for {
		tt, text := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
			}
			return s, nil
		}
		s.toks = append(s.toks, token{tt: tt, text: string(text), line: s.line})
		s.line += bytes.Count(text, []byte{'\n'})
	}
}

func syntaxError(t token, format string, args ...any) error {
	return fmt.Errorf("%w: %s at line %d", ErrSyntax, fmt.Sprintf(format, args...), t.line)
}

// parseBlock parses rules, at-rules, declarations and comments into parent
// until the closing brace (consumed) or end of input for the top level.
func (p *Parser) parseBlock(s *stream, parent Container, top bool) error {
	for {
		t := s.peek()
		switch t.tt {
		case css.WhitespaceToken, css.SemicolonToken, css.CDOToken, css.CDCToken:
			s.next()

		case css.ErrorToken:
			if top {
				return nil
			}
			return syntaxError(t, "unclosed block")

		case css.RightBraceToken:
			s.next()
			if top {
				return syntaxError(t, "unexpected %q", t.text)
			}
			return nil

		case css.CommentToken:
			s.next()
			parent.Append(&Comment{Text: strings.TrimSuffix(strings.TrimPrefix(t.text, "/*"), "*/")})

		case css.AtKeywordToken:
			if err := p.parseAtRule(s, parent); err != nil {
				return err
			}

		default:
			prelude, end := collectPrelude(s)
			switch end.tt {
			case css.LeftBraceToken:
				s.next()
				rule := &Rule{Selector: joinTokens(prelude), Line: t.line}
				parent.Append(rule)
				if err := p.parseBlock(s, rule, false); err != nil {
					return err
				}
			default:
				if top {
					return syntaxError(t, "unexpected %q outside of a rule", joinTokens(prelude))
				}
				decl, err := parseDeclaration(prelude, t)
				if err != nil {
					return err
				}
				parent.Append(decl)
			}
		}
	}
}

func (p *Parser) parseAtRule(s *stream, parent Container) error {
	t := s.next()
	prelude, end := collectPrelude(s)

	at := &AtRule{
		Name:   strings.TrimPrefix(t.text, "@"),
		Params: joinTokens(prelude),
		Line:   t.line,
	}
	parent.Append(at)

	switch end.tt {
	case css.LeftBraceToken:
		s.next()
		at.Block = true
		p.log.Debug("Parsing @-rule block", zap.String("rule", at.Name), zap.String("params", at.Params))
		return p.parseBlock(s, at, false)
	case css.SemicolonToken:
		s.next()
	}
	return nil
}

// collectPrelude collects tokens up to a top level "{", ";" or "}" which is
// returned, but not consumed.
func collectPrelude(s *stream) ([]token, token) {
	var (
		toks  []token
		depth int
	)
	for {
		t := s.peek()
		switch t.tt {
		case css.ErrorToken:
			return toks, t
		case css.LeftBraceToken, css.SemicolonToken, css.RightBraceToken:
			if depth == 0 {
				return toks, t
			}
		case css.LeftParenthesisToken, css.LeftBracketToken, css.FunctionToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		}
		toks = append(toks, s.next())
	}
}

func parseDeclaration(toks []token, start token) (*Declaration, error) {
	i := 0
	for i < len(toks) && toks[i].tt == css.WhitespaceToken {
		i++
	}
	if i >= len(toks) || toks[i].tt != css.IdentToken {
		return nil, syntaxError(start, "expected property name in %q", joinTokens(toks))
	}
	prop := toks[i].text
	i++
	for i < len(toks) && toks[i].tt == css.WhitespaceToken {
		i++
	}
	if i >= len(toks) || toks[i].tt != css.ColonToken {
		return nil, syntaxError(start, "expected colon after property %q", prop)
	}
	value := toks[i+1:]

	decl := &Declaration{Prop: prop}
	value, decl.Important = trimImportant(value)
	decl.Value = joinTokens(value)
	return decl, nil
}

// trimImportant strips trailing "!important" from value tokens.
func trimImportant(toks []token) ([]token, bool) {
	j := len(toks) - 1
	for j >= 0 && toks[j].tt == css.WhitespaceToken {
		j--
	}
	if j < 0 || toks[j].tt != css.IdentToken || !strings.EqualFold(toks[j].text, "important") {
		return toks, false
	}
	j--
	for j >= 0 && toks[j].tt == css.WhitespaceToken {
		j--
	}
	if j < 0 || toks[j].tt != css.DelimToken || toks[j].text != "!" {
		return toks, false
	}
	return toks[:j], true
}

// joinTokens concatenates token text collapsing whitespace runs to a single
// space and trimming both ends.
func joinTokens(toks []token) string {
	var sb strings.Builder
	space := false
	for _, t := range toks {
		if t.tt == css.WhitespaceToken {
			space = sb.Len() > 0
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteString(t.text)
	}
	return sb.String()
}
