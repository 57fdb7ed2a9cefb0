package similarity

import (
	"strings"
	"unicode"
)

// Normalize lowercases s, drops everything except letters, digits and spaces,
// and collapses runs of whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}

// Tokens splits the normalized form of s into words.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

var nameSuffixes = map[string]bool{
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true, "v": true,
}

// IsSuffix reports whether a normalized token is a generational suffix.
func IsSuffix(token string) bool {
	return nameSuffixes[token]
}

// Canonical normalizes s, expands a leading nickname to its formal first
// name and drops generational suffixes. "Pat Mahomes II" becomes
// "patrick mahomes".
func Canonical(s string) string {
	tokens := Tokens(s)
	out := make([]string, 0, len(tokens))
	for i, t := range tokens {
		if i > 0 && IsSuffix(t) {
			continue
		}
		if i == 0 {
			if formal, ok := nicknames[t]; ok {
				t = formal
			}
		}
		out = append(out, t)
	}
	return strings.Join(out, " ")
}
