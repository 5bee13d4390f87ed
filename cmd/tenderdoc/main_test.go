package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/tenderdoc/internal/doctree"
)

const tender = `เอกสารประกวดราคาเช่าด้วยวิธีประกวดราคาอิเล็กทรอนิกส์ (e-bidding)
๑. เอกสารแนบท้ายเอกสารประกวดราคาอิเล็กทรอนิกส์
    ๑.๑ แบบใบยื่นข้อเสนอ
๒. คุณสมบัติของผู้ยื่นข้อเสนอ
    ๒.๑ มีความสามารถตามกฎหมาย
๙. อัตราค่าปรับ
    ค่าปรับให้คิดในอัตราร้อยละ ๐.๑๐
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseStdinJSON(t *testing.T) {
	out, err := run(t, tender, "parse", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc doctree.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if doc.TotalSections != 3 {
		t.Errorf("expected 3 sections, got %d", doc.TotalSections)
	}
	if len(doc.Missing) != 10 {
		t.Errorf("expected 10 missing, got %v", doc.Missing)
	}
}

func TestParseFileSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tender.txt")
	if err := os.WriteFile(path, []byte(tender), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "", "parse", "--format", "summary", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "tender.txt: 3 of 13 sections found\n") {
		t.Errorf("unexpected summary header: %q", out)
	}
	if !strings.Contains(out, "   9. อัตราค่าปรับ (line 5,") {
		t.Errorf("missing section 9 line in %q", out)
	}
	if !strings.Contains(out, "missing: 3, 4, 5, 6, 7, 8, 10, 11, 12, 13") {
		t.Errorf("missing list not printed in %q", out)
	}
}

func TestParseSectionFilter(t *testing.T) {
	out, err := run(t, tender, "parse", "--sections", "2", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc doctree.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].ID != "2" {
		t.Errorf("expected only section 2, got %+v", doc.Sections)
	}
	if doc.TotalSections != 1 {
		t.Errorf("total should count the printed sections, got %d", doc.TotalSections)
	}
	if len(doc.Missing) != 0 {
		t.Errorf("section 2 was found, got missing %v", doc.Missing)
	}
}

func TestParseSectionFilterNoMatch(t *testing.T) {
	out, err := run(t, tender, "parse", "--sections", "5,2", "--sections", "6", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc doctree.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.TotalSections != 1 {
		t.Errorf("expected 1 section, got %d", doc.TotalSections)
	}
	if strings.Join(doc.Missing, ",") != "5,6" {
		t.Errorf("expected missing [5 6], got %v", doc.Missing)
	}

	out, err = run(t, tender, "parse", "--sections", "13", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		t.Fatal(err)
	}
	if got := string(raw["sections"]); got != "[]" {
		t.Errorf("expected an empty sections array, got %s", got)
	}
	if got := string(raw["total_sections"]); got != "0" {
		t.Errorf("expected total_sections 0, got %s", got)
	}
}

func TestParseSectionFilterSummary(t *testing.T) {
	out, err := run(t, tender, "parse", "--format", "summary", "--sections", "2,13", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "stdin.txt: 1 of 2 sections found\n") {
		t.Errorf("unexpected summary header: %q", out)
	}
	if !strings.Contains(out, "missing: 13") {
		t.Errorf("missing list not narrowed in %q", out)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"parse", "--format", "xml", "-"}},
		{"unknown section", []string{"parse", "--sections", "14", "-"}},
		{"unsupported extension", []string{"parse", "tender.exe"}},
		{"missing file", []string{"parse", filepath.Join(t.TempDir(), "none.txt")}},
		{"no argument", []string{"parse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tender, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseEmptyStdin(t *testing.T) {
	if _, err := run(t, "   \n", "parse", "-"); err == nil {
		t.Error("expected an error for blank input")
	}
}

func TestCatalogCommand(t *testing.T) {
	out, err := run(t, "", "catalog")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// Title, thirteen entries, blank line, legend.
	if len(lines) != 16 {
		t.Fatalf("expected 16 lines, got %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[2], "*  2. ") {
		t.Errorf("section 2 should be marked as default, got %q", lines[2])
	}
	if !strings.HasPrefix(lines[1], "   1. ") {
		t.Errorf("section 1 should not be marked, got %q", lines[1])
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte(tender), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out, err := run(t, "", "batch", "--workers", "1", a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var results []struct {
		Filename    string `json:"filename"`
		Status      string `json:"status"`
		DuplicateOf string `json:"duplicate_of"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// One worker processes files in order.
	if results[0].Status != "completed" || results[1].Status != "duplicate" || results[1].DuplicateOf != "a.txt" {
		t.Errorf("unexpected results %+v", results)
	}
}

func TestBatchCommandReportsFailures(t *testing.T) {
	_, err := run(t, "", "batch", filepath.Join(t.TempDir(), "none.txt"))
	if err == nil || !strings.Contains(err.Error(), "1 of 1 files failed") {
		t.Errorf("expected failure count error, got %v", err)
	}
}
