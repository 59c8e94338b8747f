package resolver_test

import (
	"testing"

	"bennypowers.dev/mediavars/internal/resolver"
	"bennypowers.dev/mediavars/internal/stylesheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{expr: "calc(1000px)", want: "1000px"},
		{expr: "calc(1000px - 1px)", want: "999px"},
		{expr: "calc(2 * 3px + 1px)", want: "7px"},
		{expr: "calc((2 + 3) * 4em)", want: "20em"},
		{expr: "calc(10px / 4)", want: "2.5px"},
		{expr: "calc(1px / 3)", want: "0.33333px"},
		{expr: "calc(-1 * 5px)", want: "-5px"},
		{expr: "calc(50% + calc(10% * 2))", want: "70%"},
		{expr: "calc(1PX + 1px)", want: "2px"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			q, err := resolver.Evaluate(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Format(resolver.DefaultPrecision))
		})
	}
}

func TestEvaluateIrreducible(t *testing.T) {
	for _, expr := range []string{
		"calc(100% - 10px)",
		"calc(var(--x) * 2)",
		"calc(2px * 3px)",
		"calc(10px / 2px)",
		"calc(1px +)",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := resolver.Evaluate(expr)
			assert.Error(t, err)
			assert.NotErrorIs(t, err, resolver.ErrDivisionByZero)
		})
	}
}

func TestCalcPlugin(t *testing.T) {
	t.Run("reduces outermost calls", func(t *testing.T) {
		decl := stylesheet.NewDecl("margin", "calc(1px + 1px) auto calc(100% - 10px)")
		root := stylesheet.NewRoot()
		root.Append(stylesheet.NewRule(".a", decl))

		warnings := run(t, root, resolver.NewCalc(resolver.CalcOptions{}))

		assert.Empty(t, warnings)
		assert.Equal(t, "2px auto calc(100% - 10px)", decl.Value)
	})

	t.Run("division by zero warns", func(t *testing.T) {
		decl := stylesheet.NewDecl("width", "calc(10px / 0)")
		root := stylesheet.NewRoot()
		root.Append(stylesheet.NewRule(".a", decl))

		warnings := run(t, root, resolver.NewCalc(resolver.CalcOptions{}))

		assert.Equal(t, []string{"Cannot reduce calc(10px / 0): division by zero"}, messages(warnings))
		assert.Equal(t, "calc(10px / 0)", decl.Value)
	})

	t.Run("precision", func(t *testing.T) {
		decl := stylesheet.NewDecl("width", "calc(1px / 3)")
		root := stylesheet.NewRoot()
		root.Append(stylesheet.NewRule(".a", decl))

		run(t, root, resolver.NewCalc(resolver.CalcOptions{Precision: 2}))

		assert.Equal(t, "0.33px", decl.Value)
	})
}
