package resolver

import (
	"regexp"
	"strings"

	"bennypowers.dev/mediavars/internal/scan"
)

var (
	// varReferenceRegexp matches the custom property named by a var() call
	varReferenceRegexp = regexp.MustCompile(`var\(\s*(--[\w-]+)`)

	// customMediaReferenceRegexp matches a parenthesized custom media name
	customMediaReferenceRegexp = regexp.MustCompile(`\(\s*(--[\w-]+)\s*\)`)
)

// varReferences returns the custom properties referenced anywhere in value,
// fallbacks included
func varReferences(value string) []string {
	return submatches(varReferenceRegexp, value)
}

// customMediaReferences returns the aliases referenced by a media query
func customMediaReferences(query string) []string {
	return submatches(customMediaReferenceRegexp, query)
}

func submatches(re *regexp.Regexp, s string) []string {
	refs := []string{}
	for _, match := range re.FindAllStringSubmatch(s, -1) {
		if len(match) > 1 {
			refs = append(refs, match[1])
		}
	}
	return refs
}

// varCall is a parsed var(--name[, fallback]) call
type varCall struct {
	span        scan.Span
	name        string
	fallback    string
	hasFallback bool
}

// parseVarCall splits the text of a var() call into name and fallback.
// The fallback is everything after the first comma that is not nested in
// parentheses.
func parseVarCall(span scan.Span, src string) varCall {
	text := span.Text(src)
	inner := strings.TrimSuffix(strings.TrimPrefix(text, "var("), ")")
	call := varCall{span: span, name: strings.TrimSpace(inner)}

	depth := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				call.name = strings.TrimSpace(inner[:i])
				call.fallback = strings.TrimSpace(inner[i+1:])
				call.hasFallback = true
				return call
			}
		}
	}
	return call
}
