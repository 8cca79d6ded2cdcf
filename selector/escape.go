package selector

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Escape escapes s so it can be used as a CSS identifier (class or id name).
// Printable ASCII punctuation gets a backslash, control characters are hex
// escaped, non-ASCII is kept. A leading digit, a lone dash or a dash followed
// by a digit is escaped so the result does not start a number. Custom
// property style names such as "--x" are left alone.
func Escape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 4)

	for i, r := range s {
		switch {
		case r == 0:
			sb.WriteString(`\fffd`)
			writeHexTerminator(&sb, s[i+1:])
		case r < 0x20 || r == 0x7f:
			sb.WriteByte('\\')
			sb.WriteString(strconv.FormatInt(int64(r), 16))
			writeHexTerminator(&sb, s[i+utf8.RuneLen(r):])
		case r < 0x80 && needsEscape(byte(r)):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}

	out := sb.String()
	switch {
	case out == "-":
		out = `\-`
	case len(out) > 1 && out[0] == '-' && isDigit(out[1]):
		out = `\-` + out[1:]
	case len(out) > 0 && isDigit(out[0]):
		var b strings.Builder
		b.WriteString(`\3`)
		b.WriteByte(out[0])
		writeHexTerminator(&b, out[1:])
		b.WriteString(out[1:])
		out = b.String()
	}
	return out
}

// needsEscape reports ASCII characters which are not allowed unescaped in
// identifiers: space to comma, dot, slash, colon to at-sign, brackets,
// backslash, caret, backtick, braces, pipe and tilde.
func needsEscape(c byte) bool {
	switch {
	case c >= ' ' && c <= ',':
		return true
	case c == '.' || c == '/':
		return true
	case c >= ':' && c <= '@':
		return true
	case c >= '[' && c <= '^':
		return true
	case c == '`':
		return true
	case c >= '{' && c <= '~':
		return true
	}
	return false
}

// writeHexTerminator writes a space after a hex escape when the following
// text would otherwise be consumed as part of it.
func writeHexTerminator(sb *strings.Builder, rest string) {
	if rest == "" {
		return
	}
	if c := rest[0]; isHex(c) || c == ' ' {
		sb.WriteByte(' ')
	}
}

// EscapeCommas replaces backslash-escaped commas with the equivalent hex
// escape "\2c ". Escaped backslashes are left alone.
func EscapeCommas(s string) string {
	if !strings.Contains(s, `\,`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		if s[i+1] == ',' {
			sb.WriteString(`\2c `)
		} else {
			sb.WriteByte(c)
			sb.WriteByte(s[i+1])
		}
		i++
	}
	return sb.String()
}

// Unescape decodes CSS escapes in an identifier as written in source.
func Unescape(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var sb strings.Builder
	sb.Grow(len(raw))
	for i := 0; i < len(raw); {
		c := raw[i]
		if c != '\\' {
			sb.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(raw) {
			sb.WriteRune(utf8.RuneError)
			break
		}
		if !isHex(raw[i]) {
			r, size := utf8.DecodeRuneInString(raw[i:])
			sb.WriteRune(r)
			i += size
			continue
		}
		j := i
		for j < len(raw) && j-i < 6 && isHex(raw[j]) {
			j++
		}
		cp, _ := strconv.ParseUint(raw[i:j], 16, 32)
		if cp == 0 || cp > utf8.MaxRune || (cp >= 0xd800 && cp <= 0xdfff) {
			cp = utf8.RuneError
		}
		sb.WriteRune(rune(cp))
		i = j
		if i < len(raw) && isSpace(raw[i]) {
			if raw[i] == '\r' && i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
			i++
		}
	}
	return sb.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
