package extractor

import (
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles Markdown files using goldmark. Source lines of
// each text block are kept as separate lines, and ordered list items keep
// their number so "5. title" style headings survive.
type MarkdownExtractor struct{}

func (p *MarkdownExtractor) Extract(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var lines []string
	prefix := ""
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.ListItem:
			if list, ok := node.Parent().(*ast.List); ok && list.IsOrdered() {
				prefix = strconv.Itoa(list.Start+itemIndex(node)) + ". "
			}
			return ast.WalkContinue, nil
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock,
			*ast.CodeBlock, *ast.FencedCodeBlock:
			block := blockLines(node, src)
			if len(block) > 0 && prefix != "" {
				block[0] = prefix + block[0]
				prefix = ""
			}
			lines = append(lines, block...)
			lines = append(lines, "")
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return joinLines(lines), nil
}

func itemIndex(item ast.Node) int {
	i := 0
	for c := item.PreviousSibling(); c != nil; c = c.PreviousSibling() {
		i++
	}
	return i
}

func blockLines(n ast.Node, src []byte) []string {
	segs := n.Lines()
	out := make([]string, 0, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(src)), "\r\n"))
	}
	return out
}
