package processor_test

import (
	"testing"

	"bennypowers.dev/mediavars/internal/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPipeline(t *testing.T) {
	plugins := processor.Default(processor.Options{}).Plugins()

	require.Len(t, plugins, 5)
	assert.Same(t, plugins[0], plugins[4], "both media-variables steps share one plugin value")

	var names []string
	for _, p := range plugins {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"media-variables", "custom-media", "css-variables", "calc", "media-variables"}, names)
}

func TestProcessCSS(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		want     string
		warnings []string
	}{
		{
			name: "calc around var",
			source: `:root {
  --min-width: 1000px;
}
@media (min-width: calc(var(--min-width))) {}
`,
			want: "@media (min-width: 1000px) {\n}\n",
		},
		{
			name: "several vars in a query list",
			source: `:root {
  --a: 1000px;
  --b: 2000px;
}
@media screen and (min-width: var(--a)), (max-width: var(--b)) {}
`,
			want: "@media screen and (min-width: 1000px), (max-width: 2000px) {\n}\n",
		},
		{
			name: "arithmetic",
			source: `:root {
  --min-width: 1000px;
}
@media (max-width: calc(var(--min-width) - 1px)) {}
`,
			want: "@media (max-width: 999px) {\n}\n",
		},
		{
			name: "custom media fan-out",
			source: `:root {
  --w: 500px;
}
@custom-media --small (max-width: var(--w));
@media (--small) {}
@media (--small) and (min-height: 10px) {}
`,
			want: "@media (max-width: 500px) {\n}\n@media (max-width: 500px) and (min-height: 10px) {\n}\n",
		},
		{
			name: "rules inside media are kept",
			source: `:root {
  --wide: 60em;
}
@media (min-width: var(--wide)) {
  .a {
    color: red;
  }
}
`,
			want: "@media (min-width: 60em) {\n  .a {\n    color: red;\n  }\n}\n",
		},
		{
			name: "custom media through another custom media",
			source: `:root {
  --w: 5px;
}
@custom-media --s (max-width: var(--w));
@custom-media --t (--s) and (min-width: var(--w));
@media (--t) {}
`,
			want: "@media (max-width: 5px) and (min-width: 5px) {\n}\n",
		},
		{
			name: "unclosed parenthesis",
			source: `:root {
  --x: 10px;
}
@media (min-width: calc(var(--x)) {}
`,
			want:     "@media (min-width: calc(var(--x)) {\n}\n",
			warnings: []string{"Missing 1 closing parenthesis"},
		},
		{
			name:   "nothing to do",
			source: ".a {\n  color: red;\n}\n",
			want:   ".a {\n  color: red;\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := processor.New(processor.Options{})
			res, err := p.ProcessCSS(tt.source)
			require.NoError(t, err)
			var messages []string
			for _, w := range res.Warnings {
				messages = append(messages, w.Message)
			}
			assert.Equal(t, tt.warnings, messages)
			assert.Equal(t, tt.want, res.Output)
		})
	}
}

func TestProcessCSSPredefinedVariables(t *testing.T) {
	p := processor.New(processor.Options{Variables: map[string]string{"--gutter": "8px"}})

	res, err := p.ProcessCSS("@media (min-width: calc(var(--gutter) * 100)) {}\n")
	require.NoError(t, err)
	assert.Equal(t, "@media (min-width: 800px) {\n}\n", res.Output)
}

func TestProcessCSSPreserve(t *testing.T) {
	p := processor.New(processor.Options{Preserve: true})

	res, err := p.ProcessCSS(`:root {
  --w: 500px;
}
@media (max-width: var(--w)) {}
`)
	require.NoError(t, err)
	assert.Equal(t, ":root {\n  --w: 500px;\n}\n@media (max-width: 500px) {\n}\n", res.Output)
}

func TestProcessCSSUndefinedVariable(t *testing.T) {
	p := processor.New(processor.Options{})

	res, err := p.ProcessCSS("@media (min-width: var(--missing)) {}\n")
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "css-variables", res.Warnings[0].Plugin)
	assert.Equal(t, "variable --missing is undefined and used without a fallback", res.Warnings[0].Message)
	assert.Equal(t, "@media (min-width: var(--missing)) {\n}\n", res.Output, "unresolved calls are written back as they were")
}

func TestProcessHTML(t *testing.T) {
	source := `<html>
<style>
:root { --wide: 1000px; }
@media (min-width: var(--wide)) {
  body { margin: 0; }
}
</style>
<style>.plain { color: red; }</style>
</html>`

	res, err := processor.New(processor.Options{}).ProcessHTML(source)
	require.NoError(t, err)

	assert.Empty(t, res.Warnings)
	assert.Equal(t, `<html>
<style>
@media (min-width: 1000px) {
  body {
    margin: 0;
  }
}
</style>
<style>.plain { color: red; }</style>
</html>`, res.Output)
}

func TestProcessHTMLWarningPositions(t *testing.T) {
	source := "<html>\n<style>\n@media (--nope) {}\n</style>\n</html>"

	res, err := processor.New(processor.Options{}).ProcessHTML(source)
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "custom-media: 3:1: Missing @custom-media definition for --nope", res.Warnings[0].String())
}

func TestProcessJS(t *testing.T) {
	source := "import { css } from 'lit';\nexport const styles = css`@media (min-width: var(--x)) {}`;\n"

	res, err := processor.New(processor.Options{Variables: map[string]string{"--x": "10px"}}).ProcessJS(source)
	require.NoError(t, err)

	assert.Equal(t, "import { css } from 'lit';\nexport const styles = css`@media (min-width: 10px) {\n}`;\n", res.Output)
}

func TestProcessJSSkipsTemplatesWithSubstitutions(t *testing.T) {
	source := "const styles = css`@media (min-width: ${wide}) {}`;\n"

	res, err := processor.New(processor.Options{}).ProcessJS(source)
	require.NoError(t, err)
	assert.Equal(t, source, res.Output)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, processor.CSSKind, processor.KindOf("a/b.css"))
	assert.Equal(t, processor.HTMLKind, processor.KindOf("index.HTML"))
	assert.Equal(t, processor.JSKind, processor.KindOf("component.tsx"))
	assert.Equal(t, processor.UnknownKind, processor.KindOf("README.md"))
}
