// Package extractor turns uploaded documents into newline-delimited text.
// Line breaks and glyphs are preserved as faithfully as the format allows,
// since section detection works line by line.
package extractor

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrNoText is returned when a document yields no extractable text.
var ErrNoText = errors.New("no extractable text")

// Extractor converts raw document bytes into plain text lines.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
}

// Options tune format-specific behavior.
type Options struct {
	// PdftotextFallback retries PDF extraction with the pdftotext binary
	// when the Go library fails or finds no text.
	PdftotextFallback bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".xlsx":     true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string, opts Options) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: opts.PdftotextFallback}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	case ".xlsx":
		return &XLSXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ExtractFile picks an extractor by filename and runs it.
func ExtractFile(r io.Reader, filename string, opts Options) (string, error) {
	e, err := ForFile(filename, opts)
	if err != nil {
		return "", err
	}
	text, err := e.Extract(r, filename)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

// joinLines drops trailing whitespace on each line. Every line is kept,
// blank ones included, so line distances match the source; only blank lines
// at the very end are dropped.
func joinLines(lines []string) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.TrimRight(line, " \t\r\u00a0")
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}
