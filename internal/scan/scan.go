// Package scan locates balanced function calls such as calc(…) and var(…)
// inside arbitrary text.
//
// Matching is purely textual: a prefix is found wherever it occurs, so an
// identifier that merely ends in a prefix (somevar( for var() is matched as
// well. FindStrict is available for callers that want word boundaries.
package scan

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnterminated indicates a function call whose parentheses never close
var ErrUnterminated = errors.New("unterminated function call")

// UnterminatedError reports how many closing parentheses were missing
// when the end of the input was reached.
type UnterminatedError struct {
	// Start is the byte offset of the unterminated call
	Start int
	// Missing is the number of unmatched opening parentheses
	Missing int
}

func (e *UnterminatedError) Error() string {
	return fmt.Sprintf("Missing %d closing parenthesis", e.Missing)
}

func (e *UnterminatedError) Unwrap() error {
	return ErrUnterminated
}

// Span is the location of one complete call in the scanned string
type Span struct {
	Start  int
	Length int
}

// End returns the offset just past the closing parenthesis
func (s Span) End() int {
	return s.Start + s.Length
}

// Text returns the matched call
func (s Span) Text(src string) string {
	return src[s.Start:s.End()]
}

// Find returns every balanced call opened by one of prefixes, in order of
// appearance. Each prefix must end with "(". When two prefixes match at the
// same offset the one listed first wins. Calls nested inside a match are
// part of that match and are not reported separately.
func Find(src string, prefixes ...string) ([]Span, error) {
	return find(src, prefixes, false)
}

// FindStrict is Find, except that a prefix directly preceded by an
// identifier character (letter, digit, '-' or '_') is not a match.
func FindStrict(src string, prefixes ...string) ([]Span, error) {
	return find(src, prefixes, true)
}

func find(src string, prefixes []string, strict bool) ([]Span, error) {
	var spans []Span
	pos := 0
	for {
		start, prefix := firstOf(src, pos, prefixes, strict)
		if start < 0 {
			return spans, nil
		}

		end, missing := closeParen(src, start+len(prefix))
		if missing > 0 {
			return nil, &UnterminatedError{Start: start, Missing: missing}
		}

		spans = append(spans, Span{Start: start, Length: end - start})
		pos = end
	}
}

// firstOf returns the lowest offset >= pos at which any prefix occurs
func firstOf(src string, pos int, prefixes []string, strict bool) (int, string) {
	best, bestPrefix := -1, ""
	for _, p := range prefixes {
		i := indexFrom(src, pos, p, strict)
		if i >= 0 && (best < 0 || i < best) {
			best, bestPrefix = i, p
		}
	}
	return best, bestPrefix
}

func indexFrom(src string, pos int, prefix string, strict bool) int {
	for pos <= len(src) {
		i := strings.Index(src[pos:], prefix)
		if i < 0 {
			return -1
		}
		i += pos
		if !strict || i == 0 || !isIdentByte(src[i-1]) {
			return i
		}
		pos = i + 1
	}
	return -1
}

// closeParen scans from just after an opening parenthesis and returns the
// offset past its matching close. If the input ends first it returns the
// remaining depth instead.
func closeParen(src string, pos int) (end int, missing int) {
	depth := 1
	for i := pos; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, 0
			}
		}
	}
	return len(src), depth
}

// Balanced reports an UnterminatedError when src opens more parentheses
// than it closes. Start is the offset of the first parenthesis left open.
// Stray closing parentheses are ignored.
func Balanced(src string) error {
	var open []int
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '(':
			open = append(open, i)
		case ')':
			if len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
	}
	if len(open) == 0 {
		return nil
	}
	return &UnterminatedError{Start: open[0], Missing: len(open)}
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
