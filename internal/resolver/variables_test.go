package resolver_test

import (
	"testing"

	"bennypowers.dev/mediavars/internal/pipeline"
	"bennypowers.dev/mediavars/internal/resolver"
	"bennypowers.dev/mediavars/internal/stylesheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, root *stylesheet.Root, plugins ...pipeline.Plugin) []pipeline.Warning {
	t.Helper()
	res, err := pipeline.New(plugins...).Run(root)
	require.NoError(t, err)
	return res.Warnings()
}

func messages(warnings []pipeline.Warning) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Message
	}
	return out
}

func rootRule(decls ...*stylesheet.Decl) *stylesheet.Rule {
	rule := stylesheet.NewRule(":root")
	for _, d := range decls {
		rule.Append(d)
	}
	return rule
}

func TestVariablesSubstitution(t *testing.T) {
	t.Run("simple reference", func(t *testing.T) {
		use := stylesheet.NewDecl("width", "var(--w)")
		root := stylesheet.NewRoot()
		root.Append(rootRule(stylesheet.NewDecl("--w", "500px")), stylesheet.NewRule(".a", use))

		warnings := run(t, root, resolver.NewVariables(resolver.VariablesOptions{}))

		assert.Empty(t, warnings)
		assert.Equal(t, "500px", use.Value)
		assert.Equal(t, ".a {\n  width: 500px;\n}\n", root.String(), ":root should be removed once empty")
	})

	t.Run("chained references", func(t *testing.T) {
		use := stylesheet.NewDecl("width", "calc(var(--c) - 1px)")
		root := stylesheet.NewRoot()
		root.Append(
			rootRule(
				stylesheet.NewDecl("--c", "var(--b)"),
				stylesheet.NewDecl("--b", "var(--a)"),
				stylesheet.NewDecl("--a", "1000px"),
			),
			stylesheet.NewRule(".a", use),
		)

		warnings := run(t, root, resolver.NewVariables(resolver.VariablesOptions{}))

		assert.Empty(t, warnings)
		assert.Equal(t, "calc(1000px - 1px)", use.Value)
	})

	t.Run("fallback", func(t *testing.T) {
		use := stylesheet.NewDecl("font-family", "var(--font, 'Bar Font', sans-serif)")
		root := stylesheet.NewRoot()
		root.Append(stylesheet.NewRule(".a", use))

		warnings := run(t, root, resolver.NewVariables(resolver.VariablesOptions{}))

		assert.Empty(t, warnings)
		assert.Equal(t, "'Bar Font', sans-serif", use.Value)
	})

	t.Run("nested fallback", func(t *testing.T) {
		use := stylesheet.NewDecl("width", "var(--missing, var(--w))")
		root := stylesheet.NewRoot()
		root.Append(rootRule(stylesheet.NewDecl("--w", "2px")), stylesheet.NewRule(".a", use))

		run(t, root, resolver.NewVariables(resolver.VariablesOptions{}))

		assert.Equal(t, "2px", use.Value)
	})

	t.Run("undefined without fallback", func(t *testing.T) {
		use := stylesheet.NewDecl("width", "var(--missing)")
		root := stylesheet.NewRoot()
		root.Append(stylesheet.NewRule(".a", use))

		warnings := run(t, root, resolver.NewVariables(resolver.VariablesOptions{}))

		assert.Equal(t, []string{"variable --missing is undefined and used without a fallback"}, messages(warnings))
		assert.Equal(t, resolver.VariablesName, warnings[0].Plugin)
		assert.Equal(t, "var(--missing)", use.Value)
	})
}

func TestVariablesPredefined(t *testing.T) {
	use := stylesheet.NewDecl("margin", "var(--gutter) var(--wide)")
	root := stylesheet.NewRoot()
	root.Append(
		rootRule(stylesheet.NewDecl("--wide", "20px")),
		stylesheet.NewRule(".a", use),
	)

	run(t, root, resolver.NewVariables(resolver.VariablesOptions{
		Variables: map[string]string{"gutter": "8px", "--wide": "10px"},
	}))

	assert.Equal(t, "8px 20px", use.Value, ":root overrides predefined values")
}

func TestVariablesPreserve(t *testing.T) {
	root := stylesheet.NewRoot()
	root.Append(rootRule(stylesheet.NewDecl("--w", "1px"), stylesheet.NewDecl("color", "red")))

	run(t, root, resolver.NewVariables(resolver.VariablesOptions{Preserve: true}))
	assert.Equal(t, ":root {\n  --w: 1px;\n  color: red;\n}\n", root.String())

	run(t, root, resolver.NewVariables(resolver.VariablesOptions{}))
	assert.Equal(t, ":root {\n  color: red;\n}\n", root.String(), "rules with other declarations stay")
}

func TestVariablesCircularReference(t *testing.T) {
	use := stylesheet.NewDecl("width", "var(--a)")
	fallback := stylesheet.NewDecl("height", "var(--b, 3px)")
	root := stylesheet.NewRoot()
	root.Append(
		rootRule(stylesheet.NewDecl("--a", "var(--b)"), stylesheet.NewDecl("--b", "var(--a)")),
		stylesheet.NewRule(".a", use, fallback),
	)

	warnings := run(t, root, resolver.NewVariables(resolver.VariablesOptions{}))

	require.Len(t, warnings, 1, "a cycle is reported once")
	assert.Equal(t, "circular custom property reference: --a → --b → --a", warnings[0].Message)
	assert.Equal(t, "var(--a)", use.Value)
	assert.Equal(t, "3px", fallback.Value)
}

func TestVariablesResolveCarrierDeclarations(t *testing.T) {
	placeholder := stylesheet.NewDecl("-pcs-mv-1-1-20e", "calc(var(--min-width))")
	root := stylesheet.NewRoot()
	root.Append(
		rootRule(stylesheet.NewDecl("--min-width", "1000px")),
		stylesheet.NewRule("::-postcss-media-variables", placeholder),
	)

	run(t, root, resolver.NewVariables(resolver.VariablesOptions{}))

	assert.Equal(t, "calc(1000px)", placeholder.Value)
}

func TestVariablesUnterminated(t *testing.T) {
	use := stylesheet.NewDecl("width", "var(--w")
	root := stylesheet.NewRoot()
	root.Append(stylesheet.NewRule(".a", use))

	warnings := run(t, root, resolver.NewVariables(resolver.VariablesOptions{}))

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "Missing 1 closing parenthesis")
	assert.Equal(t, "var(--w", use.Value)
}
