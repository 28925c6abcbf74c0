package build

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const undefinedRef = "undefined reference to"

const genericHint = "An undefined reference was reported — a missing library is likely."

// Hints scans compiler stderr for linker "undefined reference to" lines and
// returns one hint per such line, in order. Lines without the marker yield
// nothing.
//
// The symbol is taken from between the first quote-like delimiter after the
// marker and the next one; GNU ld writes `foo' in the C locale and 'foo' or
// ‘foo’ otherwise. When no symbol can be extracted a generic hint is used.
func Hints(stderr string) []string {
	var hints []string
	for _, line := range strings.Split(stderr, "\n") {
		i := strings.Index(line, undefinedRef)
		if i < 0 {
			continue
		}
		name, ok := quoted(line[i+len(undefinedRef):])
		if !ok {
			hints = append(hints, genericHint)
			continue
		}
		hints = append(hints, fmt.Sprintf("Function `%s` not found — a missing library is likely.", name))
	}
	return hints
}

// quoted returns the text between the first opening delimiter in s and the
// closing delimiter that follows it.
func quoted(s string) (string, bool) {
	start := strings.IndexAny(s, "`'\"‘")
	if start < 0 {
		return "", false
	}
	_, size := utf8.DecodeRuneInString(s[start:])
	rest := s[start+size:]
	end := strings.IndexAny(rest, "'`\"’")
	if end <= 0 {
		return "", false
	}
	return rest[:end], true
}

