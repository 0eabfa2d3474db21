// Package resolve implements deterministic cross-source identity matching:
// person-name normalization, state canonicalization, and the lookup indexes
// that link FEC, Voteview, and Congress.gov records to canonical rows.
package resolve

import (
	"regexp"
	"strings"
)

var (
	parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)`)
	punctRe         = regexp.MustCompile(`[.,()]`)
	suffixRe        = regexp.MustCompile(`\s+(jr|sr|ii|iii|iv|md|phd)$`)
)

// CleanNamePart canonicalizes a single name component: lowercase, punctuation
// replaced with spaces, trailing generational/professional suffixes removed,
// and only the first remaining word kept. "Nancy P" -> "nancy",
// "Smith Jr." -> "smith".
func CleanNamePart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = punctRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = suffixRe.ReplaceAllString(s, "")
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// NormalizeName reduces a free-text person name from any source to a
// lowercase (first, last) key. Parenthetical annotations (party codes,
// nicknames) are stripped first. "Last, First Middle" splits on the comma;
// otherwise the first and last whitespace tokens are used. A single token is
// treated as a last name. Empty input yields ("", ""), a valid key that
// matches nothing.
func NormalizeName(raw string) (first, last string) {
	s := parentheticalRe.ReplaceAllString(raw, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}

	if lastPart, firstPart, ok := strings.Cut(s, ","); ok {
		return CleanNamePart(firstPart), CleanNamePart(lastPart)
	}

	fields := strings.Fields(s)
	if len(fields) == 1 {
		return "", CleanNamePart(fields[0])
	}
	return CleanNamePart(fields[0]), CleanNamePart(fields[len(fields)-1])
}
