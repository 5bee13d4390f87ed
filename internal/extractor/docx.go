package extractor

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXExtractor handles .docx files. Each paragraph becomes one line, and
// table cells are emitted row by row.
type DOCXExtractor struct{}

func (p *DOCXExtractor) Extract(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			lines = append(lines, docxParagraphText(it))
		case *docx.Table:
			lines = append(lines, docxTableLines(it)...)
		}
	}
	return joinLines(lines), nil
}

func docxTableLines(tbl *docx.Table) []string {
	var lines []string
	for _, row := range tbl.TableRows {
		for _, cell := range row.TableCells {
			for _, para := range cell.Paragraphs {
				lines = append(lines, docxParagraphText(para))
			}
		}
	}
	return lines
}

// docxParagraphText keeps leading whitespace, which the section scanner
// reads as indentation.
func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimRight(buf.String(), " \t")
}
