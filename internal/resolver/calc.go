package resolver

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"bennypowers.dev/mediavars/internal/pipeline"
	"bennypowers.dev/mediavars/internal/scan"
	"bennypowers.dev/mediavars/internal/stylesheet"
)

// CalcName is the plugin name used in warnings
const CalcName = "calc"

// DefaultPrecision is the number of decimal places calc() results keep
const DefaultPrecision = 5

var (
	// errIrreducible marks expressions that are valid CSS but cannot be
	// folded at build time, such as 100% - 10px or anything with var()
	errIrreducible = errors.New("irreducible expression")

	// ErrDivisionByZero indicates a calc() expression divides by zero
	ErrDivisionByZero = errors.New("division by zero")
)

// CalcOptions configures calc() reduction
type CalcOptions struct {
	// Precision is the number of decimal places kept. Zero means DefaultPrecision.
	Precision int
}

// Calc reduces calc() expressions in declaration values to a single value
// where the units allow it
type Calc struct {
	precision int
}

// NewCalc creates the calc plugin
func NewCalc(opts CalcOptions) *Calc {
	precision := opts.Precision
	if precision <= 0 {
		precision = DefaultPrecision
	}
	return &Calc{precision: precision}
}

func (c *Calc) Name() string { return CalcName }

// Process reduces calc() in every declaration value
func (c *Calc) Process(root *stylesheet.Root, res *pipeline.Result) error {
	stylesheet.WalkDecls(root, func(d *stylesheet.Decl) {
		if strings.Contains(d.Value, "calc(") {
			d.Value = c.Reduce(d.Value, func(msg string) { res.Warn(msg, d) })
		}
	})
	return nil
}

// Reduce folds every outermost calc() call in value. Calls that cannot be
// folded are left as written; warn receives problems worth reporting.
func (c *Calc) Reduce(value string, warn func(string)) string {
	spans, err := scan.Find(value, "calc(")
	if err != nil {
		warn(fmt.Sprintf("Unterminated calc() in %q: %v", value, err))
		return value
	}

	var b strings.Builder
	last := 0
	for _, span := range spans {
		b.WriteString(value[last:span.Start])
		text := span.Text(value)
		q, err := Evaluate(text)
		switch {
		case err == nil:
			b.WriteString(q.Format(c.precision))
		case errors.Is(err, ErrDivisionByZero):
			warn(fmt.Sprintf("Cannot reduce %s: %v", text, err))
			b.WriteString(text)
		default:
			b.WriteString(text)
		}
		last = span.End()
	}
	b.WriteString(value[last:])
	return b.String()
}

// Quantity is a number with an optional unit
type Quantity struct {
	Value float64
	Unit  string
}

// Format renders q rounded to precision decimal places
func (q Quantity) Format(precision int) string {
	scale := math.Pow(10, float64(precision))
	v := math.Round(q.Value*scale) / scale
	if v == 0 {
		v = 0 // drop the sign of negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + q.Unit
}

// Evaluate computes an arithmetic expression over CSS dimensions. Nested
// calc( is treated as a plain parenthesis.
func Evaluate(expr string) (Quantity, error) {
	p := &calcParser{src: expr}
	p.skipSpace()
	q, err := p.sum()
	if err != nil {
		return Quantity{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Quantity{}, fmt.Errorf("%w: unexpected %q", errIrreducible, p.src[p.pos:])
	}
	return q, nil
}

// calcParser is a recursive descent parser:
//
//	sum     = product { ("+" | "-") product }
//	product = unary { ("*" | "/") unary }
//	unary   = [ "-" | "+" ] primary
//	primary = number [ unit ] | ( "(" | "calc(" ) sum ")"
type calcParser struct {
	src string
	pos int
}

func (p *calcParser) skipSpace() {
	for p.pos < len(p.src) && isSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *calcParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *calcParser) sum() (Quantity, error) {
	left, err := p.product()
	if err != nil {
		return Quantity{}, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		p.skipSpace()
		right, err := p.product()
		if err != nil {
			return Quantity{}, err
		}
		if left, err = addQuantities(left, right, op == '-'); err != nil {
			return Quantity{}, err
		}
	}
}

func (p *calcParser) product() (Quantity, error) {
	left, err := p.unary()
	if err != nil {
		return Quantity{}, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		p.skipSpace()
		right, err := p.unary()
		if err != nil {
			return Quantity{}, err
		}
		if op == '*' {
			left, err = multiplyQuantities(left, right)
		} else {
			left, err = divideQuantities(left, right)
		}
		if err != nil {
			return Quantity{}, err
		}
	}
}

func (p *calcParser) unary() (Quantity, error) {
	switch p.peek() {
	case '-':
		p.pos++
		q, err := p.primary()
		q.Value = -q.Value
		return q, err
	case '+':
		p.pos++
	}
	return p.primary()
}

func (p *calcParser) primary() (Quantity, error) {
	switch {
	case strings.HasPrefix(p.src[p.pos:], "calc("):
		p.pos += len("calc")
		fallthrough
	case p.peek() == '(':
		p.pos++
		p.skipSpace()
		q, err := p.sum()
		if err != nil {
			return Quantity{}, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return Quantity{}, fmt.Errorf("%w: expected ')' at %d", errIrreducible, p.pos)
		}
		p.pos++
		return q, nil
	default:
		return p.number()
	}
}

func (p *calcParser) number() (Quantity, error) {
	start := p.pos
	for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		return Quantity{}, fmt.Errorf("%w: expected a number at %q", errIrreducible, p.src[start:])
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: %v", errIrreducible, err)
	}

	unitStart := p.pos
	for p.pos < len(p.src) && (isLetter(p.src[p.pos]) || p.src[p.pos] == '%') {
		p.pos++
	}
	return Quantity{Value: v, Unit: strings.ToLower(p.src[unitStart:p.pos])}, nil
}

func addQuantities(a, b Quantity, subtract bool) (Quantity, error) {
	if a.Unit != b.Unit {
		return Quantity{}, fmt.Errorf("%w: cannot add %s to %s", errIrreducible, b.Unit, a.Unit)
	}
	if subtract {
		return Quantity{Value: a.Value - b.Value, Unit: a.Unit}, nil
	}
	return Quantity{Value: a.Value + b.Value, Unit: a.Unit}, nil
}

func multiplyQuantities(a, b Quantity) (Quantity, error) {
	switch {
	case a.Unit == "":
		return Quantity{Value: a.Value * b.Value, Unit: b.Unit}, nil
	case b.Unit == "":
		return Quantity{Value: a.Value * b.Value, Unit: a.Unit}, nil
	default:
		return Quantity{}, fmt.Errorf("%w: cannot multiply %s by %s", errIrreducible, a.Unit, b.Unit)
	}
}

func divideQuantities(a, b Quantity) (Quantity, error) {
	if b.Unit != "" {
		return Quantity{}, fmt.Errorf("%w: cannot divide by %s", errIrreducible, b.Unit)
	}
	if b.Value == 0 {
		return Quantity{}, ErrDivisionByZero
	}
	return Quantity{Value: a.Value / b.Value, Unit: a.Unit}, nil
}

func isDigit(c byte) bool  { return '0' <= c && c <= '9' }
func isLetter(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
