package pattern

import (
	"strings"
	"unicode/utf8"
)

// RequiredLiterals returns the runs of literal text every whole-string match
// of p must contain, in order. It only looks at top-level atoms, so a
// pattern with a top-level alternation or inline flags requires nothing.
//
//	RequiredLiterals(`\p{Alpha}{2}-\d{3}`)   == ["-"]
//	RequiredLiterals(`ID-\d+\.[a-z]{2}`)     == ["ID-", "."]
func RequiredLiterals(p string) []string {
	if !onlyNonCapturing(p) {
		return nil
	}

	var out []string
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			out = append(out, run.String())
			run.Reset()
		}
	}

	for _, atom := range Atoms(p) {
		if atom == "|" || opaqueEscape(atom) {
			return nil
		}
		if lit, ok := literalAtom(atom); ok {
			run.WriteString(lit)
			continue
		}
		flush()
	}
	flush()
	return out
}

// literalAtom reports the text an unquantified atom matches exactly.
func literalAtom(atom string) (string, bool) {
	if atom[0] == '\\' {
		if len(atom) != 2 || isWordByte(atom[1]) {
			return "", false
		}
		return atom[1:], true
	}
	if _, size := utf8.DecodeRuneInString(atom); size != len(atom) {
		return "", false
	}
	if strings.IndexByte(`.^$|*+?()[]{}`, atom[0]) >= 0 {
		return "", false
	}
	return atom, true
}

// onlyNonCapturing reports whether every "(?" in p opens a plain
// non-capturing group.
func onlyNonCapturing(p string) bool {
	for i := 0; ; {
		j := strings.Index(p[i:], "(?")
		if j < 0 {
			return true
		}
		i += j + 2
		if i >= len(p) || p[i] != ':' {
			return false
		}
	}
}

// classEscapes are the escape letters RequiredLiterals can step over:
// classes, assertions, control characters and the multi-character forms
// Atoms keeps whole.
const classEscapes = "dDsSwWbBAzntrfvapPxQ01234567"

// opaqueEscape reports whether atom starts with an escape this package does
// not know to be either a class or a literal.
func opaqueEscape(atom string) bool {
	return len(atom) >= 2 && atom[0] == '\\' && isWordByte(atom[1]) &&
		strings.IndexByte(classEscapes, atom[1]) < 0
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
