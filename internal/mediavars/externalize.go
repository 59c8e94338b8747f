package mediavars

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bennypowers.dev/mediavars/internal/scan"
	"bennypowers.dev/mediavars/internal/stylesheet"
)

// ErrPlaceholderCollision means a generated placeholder was not unique.
// Substituting it later would put a value in the wrong place, so the
// document is abandoned instead.
var ErrPlaceholderCollision = errors.New("placeholder collision")

func placeholder(seed string, start int) string {
	return PlaceholderPrefix + seed + "-" + strconv.Itoa(start) + "e"
}

// externalize replaces every span of params with a placeholder and appends
// a placeholder: original-text declaration per span to carrier.
func externalize(spans []scan.Span, params string, carrier *stylesheet.Rule, seed string) (string, error) {
	if len(spans) == 0 {
		return params, nil
	}

	props := make([]string, len(spans))
	for i, span := range spans {
		props[i] = placeholder(seed, span.Start)
		if strings.Contains(params, props[i]) || hasDecl(carrier, props[i]) {
			return params, fmt.Errorf("%w: %s", ErrPlaceholderCollision, props[i])
		}
	}

	var b strings.Builder
	last := 0
	for i, span := range spans {
		b.WriteString(params[last:span.Start])
		b.WriteString(props[i])
		last = span.End()

		carrier.Append(stylesheet.NewDecl(props[i], span.Text(params)))
	}
	b.WriteString(params[last:])

	return b.String(), nil
}

// cloneDecls copies every declaration of from into to. Nothing is copied
// when any of them is already present.
func cloneDecls(from, to *stylesheet.Rule) error {
	decls := stylesheet.Decls(from)
	for _, d := range decls {
		if hasDecl(to, d.Prop) {
			return fmt.Errorf("%w: %s", ErrPlaceholderCollision, d.Prop)
		}
	}
	for _, d := range decls {
		to.Append(d.Clone())
	}
	return nil
}

func hasDecl(c stylesheet.Container, prop string) bool {
	for _, d := range stylesheet.Decls(c) {
		if d.Prop == prop {
			return true
		}
	}
	return false
}
