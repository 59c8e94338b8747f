package css_test

import (
	"testing"

	"bennypowers.dev/mediavars/internal/parser/css"
	"bennypowers.dev/mediavars/internal/stylesheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, source string) *stylesheet.Root {
	t.Helper()
	parser := css.AcquireParser()
	defer css.ReleaseParser(parser)
	root, err := parser.Parse(source)
	require.NoError(t, err)
	require.NotNil(t, root)
	return root
}

// TestParseRuleWithDeclarations tests the basic rule/declaration shape
func TestParseRuleWithDeclarations(t *testing.T) {
	root := parse(t, `:root {
  --color-primary: #0000ff;
  --gutter: 8px;
}`)

	require.Len(t, root.Nodes(), 1)
	rule, ok := root.Nodes()[0].(*stylesheet.Rule)
	require.True(t, ok, "expected a rule, got %T", root.Nodes()[0])
	assert.Equal(t, ":root", rule.Selector)

	decls := stylesheet.Decls(rule)
	require.Len(t, decls, 2)
	assert.Equal(t, "--color-primary", decls[0].Prop)
	assert.Equal(t, "#0000ff", decls[0].Value)
	assert.Equal(t, "--gutter", decls[1].Prop)
	assert.Equal(t, "8px", decls[1].Value)
}

// TestParseMediaParamsVerbatim tests that media params keep their source text
func TestParseMediaParamsVerbatim(t *testing.T) {
	root := parse(t, `@media (min-width: calc(var(--x) * 2)) {
  .a {
    color: red;
  }
}`)

	require.Len(t, root.Nodes(), 1)
	media, ok := root.Nodes()[0].(*stylesheet.AtRule)
	require.True(t, ok)
	assert.Equal(t, "media", media.Name)
	assert.Equal(t, "(min-width: calc(var(--x) * 2))", media.Params)
	assert.True(t, media.HasBlock)

	require.Len(t, media.Nodes(), 1)
	rule, ok := media.Nodes()[0].(*stylesheet.Rule)
	require.True(t, ok)
	assert.Equal(t, ".a", rule.Selector)
}

// TestParseEmptyMediaBlock tests that an empty block still counts as a block
func TestParseEmptyMediaBlock(t *testing.T) {
	root := parse(t, `@media screen {}`)

	media := stylesheet.AtRules(root, "media")
	require.Len(t, media, 1)
	assert.Equal(t, "screen", media[0].Params)
	assert.True(t, media[0].HasBlock)
	assert.Empty(t, media[0].Nodes())
	assert.Equal(t, "@media screen {\n}\n", root.String())
}

// TestParseStatementAtRule tests at-rules terminated by a semicolon
func TestParseStatementAtRule(t *testing.T) {
	root := parse(t, `@import url("base.css");
.a { color: red; }`)

	require.Len(t, root.Nodes(), 2)
	imp, ok := root.Nodes()[0].(*stylesheet.AtRule)
	require.True(t, ok)
	assert.Equal(t, "import", imp.Name)
	assert.Equal(t, `url("base.css")`, imp.Params)
	assert.False(t, imp.HasBlock)
}

// TestParseCustomMedia tests that @custom-media survives as an at-rule
func TestParseCustomMedia(t *testing.T) {
	root := parse(t, `@custom-media --small-viewport (max-width: 30em);
@media (--small-viewport) {}`)

	aliases := stylesheet.AtRules(root, "custom-media")
	require.Len(t, aliases, 1)
	assert.Equal(t, "--small-viewport (max-width: 30em)", aliases[0].Params)
	assert.False(t, aliases[0].HasBlock)

	media := stylesheet.AtRules(root, "media")
	require.Len(t, media, 1)
	assert.Equal(t, "(--small-viewport)", media[0].Params)
}

// TestParseSourcePositions tests 1-based positions and byte offsets
func TestParseSourcePositions(t *testing.T) {
	source := `:root { --x: 1px; }
@media (min-width: var(--x)) {}`
	root := parse(t, source)

	require.Len(t, root.Nodes(), 2)
	assert.Equal(t, stylesheet.Source{Line: 1, Column: 1, Offset: 0}, root.Nodes()[0].Source())
	assert.Equal(t, stylesheet.Source{Line: 2, Column: 1, Offset: 20}, root.Nodes()[1].Source())

	decl := stylesheet.Decls(root.Nodes()[0].(*stylesheet.Rule))[0]
	assert.Equal(t, stylesheet.Source{Line: 1, Column: 9, Offset: 8}, decl.Source())
}

// TestParseComments tests that comment delimiters are stripped
func TestParseComments(t *testing.T) {
	root := parse(t, `/* header */
.a { color: red; }`)

	require.Len(t, root.Nodes(), 2)
	comment, ok := root.Nodes()[0].(*stylesheet.Comment)
	require.True(t, ok)
	assert.Equal(t, "header", comment.Text)
}

// TestParseImportant tests that the value keeps !important
func TestParseImportant(t *testing.T) {
	root := parse(t, `.a { color: red !important; }`)

	var values []string
	stylesheet.WalkDecls(root, func(d *stylesheet.Decl) {
		values = append(values, d.Value)
	})
	assert.Equal(t, []string{"red !important"}, values)
}

// TestParseKeyframes tests that keyframe selectors become rules
func TestParseKeyframes(t *testing.T) {
	root := parse(t, `@keyframes spin {
  from { transform: rotate(0deg); }
  to { transform: rotate(360deg); }
}`)

	frames := stylesheet.AtRules(root, "keyframes")
	require.Len(t, frames, 1)
	assert.Equal(t, "spin", frames[0].Params)

	var selectors []string
	stylesheet.WalkRules(frames[0], func(r *stylesheet.Rule) {
		selectors = append(selectors, r.Selector)
	})
	assert.Equal(t, []string{"from", "to"}, selectors)
}

// TestParseEmptyCSS tests parsing empty CSS
func TestParseEmptyCSS(t *testing.T) {
	root := parse(t, ``)
	assert.Empty(t, root.Nodes())
	assert.Empty(t, root.String())
}

// TestParseInvalidCSS tests that invalid CSS is handled gracefully
func TestParseInvalidCSS(t *testing.T) {
	parser := css.AcquireParser()
	defer css.ReleaseParser(parser)
	root, err := parser.Parse(`this is not valid css {{{`)

	// Tree-sitter is error-tolerant, so it might still parse partially
	if err != nil {
		t.Logf("Parser returned error (acceptable): %v", err)
	}
	if root != nil {
		t.Logf("Parser returned %d top-level nodes", len(root.Nodes()))
	}
}

// TestParsePrintRoundTrip tests that normalized CSS prints back unchanged
func TestParsePrintRoundTrip(t *testing.T) {
	source := `:root {
  --x: 100px;
}
@media (min-width: var(--x)) {
  .a {
    color: red;
  }
}
`
	root, err := css.Parse(source)
	require.NoError(t, err)
	assert.Equal(t, source, root.String())
}
