// Package js finds the CSS embedded in tagged template literals.
package js

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"bennypowers.dev/mediavars/internal/log"
	htmlparser "bennypowers.dev/mediavars/internal/parser/html"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// Parser handles parsing JS/TS to extract CSS from tagged template literals
type Parser struct {
	parser        *sitter.Parser
	templateQuery *sitter.Query
	genericQuery  *sitter.Query // matches css<Type>`...` (generic form parsed by JS grammar as binary_expression)
}

var jsLang = sitter.NewLanguage(tree_sitter_javascript.Language())

// parserPool is a pool of reusable JS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(jsLang); err != nil {
			panic(fmt.Sprintf("failed to set JS language: %v", err))
		}

		templateQuery, qerr := sitter.NewQuery(jsLang, `
			(call_expression
				function: (identifier) @tag
				arguments: (template_string) @template)
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile template query: %v", qerr))
		}

		// css<Type>`...` is valid TypeScript but tree-sitter-javascript
		// parses it as nested binary expressions.
		genericQuery, qerr := sitter.NewQuery(jsLang, `
			(binary_expression
				left: (binary_expression
					left: (identifier) @tag)
				right: (template_string) @template)
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile generic query: %v", qerr))
		}

		return &Parser{
			parser:        parser,
			templateQuery: templateQuery,
			genericQuery:  genericQuery,
		}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
	if p.templateQuery != nil {
		p.templateQuery.Close()
	}
	if p.genericQuery != nil {
		p.genericQuery.Close()
	}
}

// TemplateRegions finds the CSS in css and html tagged templates, ordered
// by position. Templates containing ${...} substitutions are skipped: their
// text is not CSS until runtime, so rewriting it is unsafe.
func (p *Parser) TemplateRegions(source string) []Region {
	sourceBytes := []byte(source)
	tree := p.parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	var regions []Region
	for _, query := range []*sitter.Query{p.templateQuery, p.genericQuery} {
		regions = p.runTemplateQuery(query, root, sourceBytes, regions)
	}
	sortRegions(regions)
	return regions
}

// TemplateRegions extracts template regions with a pooled parser
func TemplateRegions(source string) []Region {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.TemplateRegions(source)
}

// runTemplateQuery executes a single tree-sitter query against the parsed tree,
// appending the CSS regions of matching css/html templates to regions.
func (p *Parser) runTemplateQuery(query *sitter.Query, root *sitter.Node, sourceBytes []byte, regions []Region) []Region {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, root, sourceBytes)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var tagName string
		var templateNode sitter.Node
		foundTemplate := false

		for _, capture := range match.Captures {
			switch query.CaptureNames()[capture.Index] {
			case "tag":
				tagName = string(sourceBytes[capture.Node.StartByte():capture.Node.EndByte()])
			case "template":
				templateNode = capture.Node
				foundTemplate = true
			}
		}

		if !foundTemplate || (tagName != "css" && tagName != "html") {
			continue
		}

		body, ok := templateBody(&templateNode, sourceBytes, tagName)
		if !ok {
			continue
		}

		switch tagName {
		case "css":
			regions = append(regions, body)
		case "html":
			regions = append(regions, styleRegions(body)...)
		}
	}

	return regions
}

// templateBody returns the text between the backticks of a template string
func templateBody(templateNode *sitter.Node, sourceBytes []byte, tag string) (Region, bool) {
	for i := uint(0); i < templateNode.ChildCount(); i++ {
		if templateNode.Child(i).Kind() == "template_substitution" {
			log.Debug("Skipping %s template at %d:%d: it contains substitutions",
				tag, templateNode.StartPosition().Row+1, templateNode.StartPosition().Column+1)
			return Region{}, false
		}
	}
	start, end := templateNode.StartByte()+1, templateNode.EndByte()-1
	if end < start {
		return Region{}, false
	}
	return Region{
		Content:   string(sourceBytes[start:end]),
		StartByte: start,
		EndByte:   end,
		StartLine: templateNode.StartPosition().Row,
		StartCol:  templateNode.StartPosition().Column + 1,
		Tag:       tag,
	}, true
}

// styleRegions finds <style> elements inside an html template body and
// maps their positions back to the JS/TS source
func styleRegions(body Region) []Region {
	var regions []Region
	for _, r := range htmlparser.StyleRegions(body.Content) {
		col := r.StartCol
		if r.StartLine == 0 {
			col += body.StartCol
		}
		regions = append(regions, Region{
			Content:   r.Content,
			StartByte: body.StartByte + r.StartByte,
			EndByte:   body.StartByte + r.EndByte,
			StartLine: body.StartLine + r.StartLine,
			StartCol:  col,
			Tag:       body.Tag,
		})
	}
	return regions
}

func sortRegions(regions []Region) {
	slices.SortFunc(regions, func(a, b Region) int {
		return cmp.Compare(a.StartByte, b.StartByte)
	})
}
