// Package pattern holds everything that treats a synthesized pattern as a
// regular expression: translation into Go syntax, combining two patterns
// into an alternation, verifying a pattern against token streams, and
// matching raw values.
package pattern

import "strings"

// Rendered patterns use POSIX-style property escapes that neither
// regexp/syntax nor regexp2 understand. Each entry gives the replacement
// outside and inside a bracket expression.
var properties = map[string][2]string{
	"Alpha":        {`[A-Za-z]`, `A-Za-z`},
	"Alnum":        {`[A-Za-z0-9]`, `A-Za-z0-9`},
	"Digit":        {`\d`, `\d`},
	"Lower":        {`[a-z]`, `a-z`},
	"Upper":        {`[A-Z]`, `A-Z`},
	"IsAlphabetic": {`\p{L}`, `\p{L}`},
	"IsDigit":      {`\d`, `\d`},
	"IsLetter":     {`\p{L}`, `\p{L}`},
}

// ToGo rewrites the property escapes used by rendered patterns into syntax
// accepted by both regexp/syntax and regexp2. Everything else is copied.
func ToGo(p string) string {
	var b strings.Builder
	b.Grow(len(p))
	inClass := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c == '\\' && i+1 < len(p):
			if p[i+1] == 'p' && i+2 < len(p) && p[i+2] == '{' {
				if end := strings.IndexByte(p[i+3:], '}'); end >= 0 {
					name := p[i+3 : i+3+end]
					if repl, ok := properties[name]; ok {
						if inClass {
							b.WriteString(repl[1])
						} else {
							b.WriteString(repl[0])
						}
						i += 3 + end
						continue
					}
				}
			}
			if (p[i+1] == 'p' || p[i+1] == 'P') && i+2 < len(p) && isLetter(p[i+2]) {
				// one-letter form, braced for regexp2
				b.WriteString(p[i:i+2] + "{" + p[i+2:i+3] + "}")
				i += 2
				continue
			}
			b.WriteByte(c)
			b.WriteByte(p[i+1])
			i++
		case c == '[' && !inClass:
			inClass = true
			b.WriteByte(c)
			// A leading ']' (optionally after '^') is a literal member.
			if i+1 < len(p) && p[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
			if i+1 < len(p) && p[i+1] == ']' {
				b.WriteByte(']')
				i++
			}
		case c == ']' && inClass:
			inClass = false
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
