package classifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// fold reduces text to lower-case words separated by single spaces.
// "Música & Arte!" -> "musica arte".
func fold(s string) string {
	s = norm.NFKD.String(s)

	var sb strings.Builder
	sb.Grow(len(s))
	space := true
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Mn, r):
			// Combining marks left over from decomposition.
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(unicode.ToLower(r))
			space = false
		default:
			if !space {
				sb.WriteByte(' ')
				space = true
			}
		}
	}

	return strings.TrimSpace(sb.String())
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := fold(s); f != "" {
			out = append(out, f)
		}
	}
	return out
}
