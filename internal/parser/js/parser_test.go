package js_test

import (
	"os"
	"strings"
	"testing"

	"bennypowers.dev/mediavars/internal/parser/js"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRegions(t *testing.T) {
	tests := []struct {
		name     string
		fixture  string
		wantCSS  int
		wantHTML int
	}{
		{
			name:    "css tagged template",
			fixture: "testdata/css-template.js",
			wantCSS: 1,
		},
		{
			name:     "html tagged template",
			fixture:  "testdata/html-template.js",
			wantHTML: 1,
		},
		{
			name:    "template with expressions",
			fixture: "testdata/template-with-expressions.js",
		},
		{
			name:    "no tagged templates",
			fixture: "testdata/no-templates.js",
		},
		{
			name:    "generic tag",
			fixture: "testdata/generic-template.ts",
			wantCSS: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := os.ReadFile(tt.fixture)
			require.NoError(t, err)

			parser := js.AcquireParser()
			defer js.ReleaseParser(parser)

			regions := parser.TemplateRegions(string(source))

			cssCount := 0
			htmlCount := 0
			for _, r := range regions {
				assert.Equal(t, r.Content, string(source[r.StartByte:r.EndByte]), "byte range should cover content")
				switch r.Tag {
				case "css":
					cssCount++
				case "html":
					htmlCount++
				}
			}

			assert.Equal(t, tt.wantCSS, cssCount, "css region count")
			assert.Equal(t, tt.wantHTML, htmlCount, "html region count")
		})
	}
}

func TestCSSTemplateContent(t *testing.T) {
	source := "const s = css`@media (min-width: var(--x)) {}`;"

	regions := js.TemplateRegions(source)
	require.Len(t, regions, 1)

	r := regions[0]
	assert.Equal(t, "@media (min-width: var(--x)) {}", r.Content)
	assert.Equal(t, uint(0), r.StartLine)
	assert.Equal(t, uint(strings.Index(source, "@")), r.StartCol)
	assert.Equal(t, uint(strings.Index(source, "@")), r.StartByte)
}

func TestHTMLTemplateStyleContent(t *testing.T) {
	source, err := os.ReadFile("testdata/html-template.js")
	require.NoError(t, err)

	regions := js.TemplateRegions(string(source))
	require.Len(t, regions, 1)
	assert.Contains(t, regions[0].Content, "@media (min-width: var(--wide)) {}")
	assert.NotContains(t, regions[0].Content, "<p>")
}

func TestRegionsAreOrdered(t *testing.T) {
	source := "const a = css`.a {}`;\nconst b = html`<style>.b {}</style>`;\nconst c = css`.c {}`;"

	regions := js.TemplateRegions(source)
	require.Len(t, regions, 3)
	for i := 1; i < len(regions); i++ {
		assert.Less(t, regions[i-1].StartByte, regions[i].StartByte)
	}
	assert.Equal(t, ".b {}", regions[1].Content)
}
