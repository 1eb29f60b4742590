package structure

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// fencedBlock returns the content of the first fenced code block in a
// Markdown document.
func fencedBlock(source []byte) (string, bool) {
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var (
		content bytes.Buffer
		found   bool
	)
	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(source))
		}
		found = true
		return ast.WalkStop, nil
	}
	if err := ast.Walk(root, walker); err != nil {
		return "", false
	}
	return content.String(), found
}
