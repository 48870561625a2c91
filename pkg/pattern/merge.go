package pattern

import "strings"

// Alternate combines two rendered patterns into one that accepts both.
// Leading and trailing atoms common to both are factored out, then the
// longest run of atoms shared by what remains. The pieces around a shared
// run alternate separately, or become optional groups when one side is
// empty.
//
//	Alternate(`\d{3}-\d{4}`, `\d{3}`)      == `\d{3}(?:-\d{4})?`
//	Alternate(`[A-Z]{2}\d`, `[A-Z]{2}-\d`) == `[A-Z]{2}(?:-)?\d`
//	Alternate(`\p{Alpha}`, `\d{2}`)        == `(?:\p{Alpha}|\d{2})`
//	Alternate(`\d{2}-[a-z]`, `[A-Z]-\d`)   == `(?:\d{2}|[A-Z])-(?:[a-z]|\d)`
func Alternate(a, b string) string {
	if a == b {
		return a
	}
	return alternateAtoms(Atoms(a), Atoms(b))
}

func alternateAtoms(x, y []string) string {
	prefix := 0
	for prefix < len(x) && prefix < len(y) && x[prefix] == y[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(x)-prefix && suffix < len(y)-prefix &&
		x[len(x)-1-suffix] == y[len(y)-1-suffix] {
		suffix++
	}
	mx := x[prefix : len(x)-suffix]
	my := y[prefix : len(y)-suffix]

	var out strings.Builder
	out.WriteString(strings.Join(x[:prefix], ""))
	if i, j, n := commonRun(mx, my); n > 0 {
		out.WriteString(alternateAtoms(mx[:i], my[:j]))
		out.WriteString(strings.Join(mx[i:i+n], ""))
		out.WriteString(alternateAtoms(mx[i+n:], my[j+n:]))
	} else {
		out.WriteString(alternatePieces(strings.Join(mx, ""), strings.Join(my, "")))
	}
	out.WriteString(strings.Join(x[len(x)-suffix:], ""))
	return out.String()
}

func alternatePieces(a, b string) string {
	switch {
	case a == "" && b == "":
		return ""
	case a == "":
		return "(?:" + b + ")?"
	case b == "":
		return "(?:" + a + ")?"
	default:
		return "(?:" + a + "|" + b + ")"
	}
}

// commonRun finds the longest run of atoms appearing in both x and y,
// returning its start in each and its length. The earliest run in x wins
// ties.
func commonRun(x, y []string) (i, j, n int) {
	if len(x) == 0 || len(y) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(y)+1)
	cur := make([]int, len(y)+1)
	for a := 1; a <= len(x); a++ {
		for b := 1; b <= len(y); b++ {
			if x[a-1] != y[b-1] {
				cur[b] = 0
				continue
			}
			cur[b] = prev[b-1] + 1
			if cur[b] > n {
				n = cur[b]
				i, j = a-n, b-n
			}
		}
		prev, cur = cur, prev
	}
	return i, j, n
}

// Atoms splits a pattern into quantified atoms: an escape, a bracket
// expression, a group, or a single character, each with any trailing
// quantifier attached.
func Atoms(p string) []string {
	var atoms []string
	for i := 0; i < len(p); {
		end := atomEnd(p, i)
		end = quantifierEnd(p, end)
		atoms = append(atoms, p[i:end])
		i = end
	}
	return atoms
}

func atomEnd(p string, i int) int {
	switch p[i] {
	case '\\':
		return escapeEnd(p, i)
	case '[':
		j := i + 1
		if j < len(p) && p[j] == '^' {
			j++
		}
		if j < len(p) && p[j] == ']' {
			j++
		}
		for j < len(p) {
			switch p[j] {
			case '\\':
				j += 2
				continue
			case ']':
				return j + 1
			}
			j++
		}
		return len(p)
	case '(':
		depth := 0
		for j := i; j < len(p); j++ {
			switch p[j] {
			case '\\':
				j++
			case '[':
				j = atomEnd(p, j) - 1
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return j + 1
				}
			}
		}
		return len(p)
	}
	// Multi-byte runes stay whole.
	for j := i + 1; j <= len(p); j++ {
		if j == len(p) || p[j]&0xC0 != 0x80 {
			return j
		}
	}
	return len(p)
}

// escapeEnd returns the end of the escape starting at p[i], keeping
// multi-character escapes (\pL, \p{..}, \xHH, \x{..}, octal, \Q..\E)
// whole.
func escapeEnd(p string, i int) int {
	if i+1 >= len(p) {
		return len(p)
	}
	braced := func() int {
		if end := strings.IndexByte(p[i:], '}'); end >= 0 {
			return i + end + 1
		}
		return len(p)
	}
	switch c := p[i+1]; {
	case c == 'p' || c == 'P':
		if i+2 < len(p) && p[i+2] == '{' {
			return braced()
		}
		return min(i+3, len(p))
	case c == 'x':
		if i+2 < len(p) && p[i+2] == '{' {
			return braced()
		}
		return min(i+4, len(p))
	case c >= '0' && c <= '7':
		j := i + 2
		for j < len(p) && j < i+4 && p[j] >= '0' && p[j] <= '7' {
			j++
		}
		return j
	case c == 'Q':
		if end := strings.Index(p[i+2:], `\E`); end >= 0 {
			return i + 2 + end + 2
		}
		return len(p)
	}
	return i + 2
}

func quantifierEnd(p string, i int) int {
	if i >= len(p) {
		return i
	}
	switch p[i] {
	case '*', '+', '?':
		i++
	case '{':
		end := strings.IndexByte(p[i:], '}')
		if end < 0 {
			return i
		}
		i += end + 1
	default:
		return i
	}
	// lazy or possessive suffix
	if i < len(p) && (p[i] == '?' || p[i] == '+') {
		i++
	}
	return i
}
