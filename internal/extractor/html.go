package extractor

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "td": true,
	"th": true, "tr": true, "ul": true,
}

// HTMLExtractor handles HTML files. Block elements and <br> become line
// breaks; whitespace inside text runs is collapsed except under <pre>.
type HTMLExtractor struct{}

func (p *HTMLExtractor) Extract(r io.Reader, filename string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	w := &htmlTextWriter{}
	for _, n := range body.Nodes {
		w.walk(n, false)
	}
	return joinLines(strings.Split(w.b.String(), "\n")), nil
}

type htmlTextWriter struct {
	b strings.Builder
}

func (w *htmlTextWriter) newline() {
	s := w.b.String()
	if len(s) > 0 && !strings.HasSuffix(s, "\n") {
		w.b.WriteByte('\n')
	}
}

func (w *htmlTextWriter) walk(n *html.Node, pre bool) {
	switch n.Type {
	case html.TextNode:
		if pre {
			w.b.WriteString(n.Data)
			return
		}
		w.b.WriteString(collapseSpace(n.Data))
		return
	case html.ElementNode:
		if n.Data == "br" {
			w.b.WriteByte('\n')
			return
		}
		block := blockElements[n.Data]
		if block {
			w.newline()
		}
		inPre := pre || n.Data == "pre"
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c, inPre)
		}
		if block {
			w.newline()
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, pre)
	}
}

// collapseSpace folds whitespace runs to a single space, keeping a single
// leading or trailing space when present.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s == "" {
			return ""
		}
		return " "
	}
	out := strings.Join(fields, " ")
	if strings.TrimLeft(s, " \t\n\r\f") != s {
		out = " " + out
	}
	if strings.TrimRight(s, " \t\n\r\f") != s {
		out += " "
	}
	return out
}
