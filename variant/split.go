package variant

// SplitByUnescapedCommas splits selector list text into individual selectors.
// A comma separates selectors unless it is preceded by a backslash or sits
// inside parentheses, brackets or a quoted string, so both ".a\,b" and
// ":is(.a, .b)" stay whole. Joining the result with "," gives back text.
func SplitByUnescapedCommas(text string) []string {
	var (
		parts []string
		start int
		depth int
		quote byte
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if i > 0 && text[i-1] == '\\' {
			continue
		}
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			if depth > 0 {
				depth--
			}
		case c == ',' && depth == 0:
			parts = append(parts, text[start:i])
			start = i + 1
		}
	}
	return append(parts, text[start:])
}
