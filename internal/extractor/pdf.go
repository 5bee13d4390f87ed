package extractor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFExtractor handles PDF files. It tries the Go library first,
// then falls back to pdftotext if enabled.
type PDFExtractor struct {
	FallbackPdftotext bool
}

func (p *PDFExtractor) Extract(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	text, err := extractPDFText(data)
	if p.FallbackPdftotext && (err != nil || strings.TrimSpace(text) == "") {
		text, err = extractPdftotext(data)
	}
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return joinLines(strings.Split(text, "\n")), nil
}

// extractPDFText joins page texts with newlines. The library panics on some
// malformed inputs, so those surface as errors.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf reader: %v", rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var pages []string
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, t)
	}
	return strings.Join(pages, "\n"), nil
}

func extractPdftotext(data []byte) (string, error) {
	// pdftotext reads from a path, not stdin.
	tmp, err := os.CreateTemp("", "tenderdoc-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	cmd := exec.Command("pdftotext", "-layout", "-enc", "UTF-8", tmpPath, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	// Form feeds separate pages.
	return strings.ReplaceAll(string(out), "\f", "\n"), nil
}
