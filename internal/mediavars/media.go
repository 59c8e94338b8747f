package mediavars

import (
	"errors"
	"fmt"

	"bennypowers.dev/mediavars/internal/scan"
	"bennypowers.dev/mediavars/internal/stylesheet"
)

// prefixes are the calls moved out of at-rule params
var prefixes = []string{"calc(", "var("}

// externalizer holds the state of one externalization pass over a document
type externalizer struct {
	rep    Reporter
	find   func(string, ...string) ([]scan.Span, error)
	synths int
}

func newExternalizer(rep Reporter, strict bool) *externalizer {
	x := &externalizer{rep: rep, find: scan.Find}
	if strict {
		x.find = scan.FindStrict
	}
	return x
}

// parse scans the params of rule. The params as a whole must also be
// balanced: calc(var(--x)) inside an unclosed group scans cleanly on its
// own. On failure it warns on the rule and returns false; the rule must
// then be left untouched.
func (x *externalizer) parse(rule *stylesheet.AtRule) ([]scan.Span, bool) {
	spans, err := x.find(rule.Params, prefixes...)
	if err == nil {
		err = scan.Balanced(rule.Params)
	}
	if err == nil {
		return spans, true
	}

	var unterminated *scan.UnterminatedError
	if errors.As(err, &unterminated) {
		x.rep.Warn(unterminated.Error(), rule)
	} else {
		x.rep.Warn(fmt.Sprintf("Unknown error while parsing @%s params: %v", rule.Name, err), rule)
	}
	return nil, false
}

// seed makes placeholders of different at-rules distinct. Parsed rules use
// their source position; synthetic ones get a running index.
func (x *externalizer) seed(rule *stylesheet.AtRule) string {
	if src := rule.Source(); !src.IsZero() {
		return fmt.Sprintf("%d-%d", src.Line, src.Column)
	}
	x.synths++
	return fmt.Sprintf("i%d", x.synths)
}

// media externalizes the calls in one @media rule into its wrapper carrier,
// after the declarations of the aliases it refers to
func (x *externalizer) media(rule *stylesheet.AtRule, known *aliases) error {
	spans, ok := x.parse(rule)
	if !ok {
		return nil
	}
	if err := known.fanOut(rule, outsideCalls(rule.Params, spans)); err != nil {
		return err
	}

	carrier := carrierFor(rule)
	params, err := externalize(spans, rule.Params, carrier, x.seed(rule))
	if err != nil {
		return err
	}
	rule.Params = params
	return nil
}
