package extractor

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXExtractor handles .xlsx workbooks. Every sheet is read in order and
// each row becomes one line, its non-empty cells joined by a space.
type XLSXExtractor struct{}

func (p *XLSXExtractor) Extract(r io.Reader, filename string) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	var lines []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			var cells []string
			for _, c := range row {
				if strings.TrimSpace(c) != "" {
					cells = append(cells, c)
				}
			}
			lines = append(lines, strings.Join(cells, " "))
		}
		lines = append(lines, "")
	}
	return joinLines(lines), nil
}
