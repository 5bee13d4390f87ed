package extractor

import (
	"strings"
	"testing"
)

func TestHTMLExtractor_BlockElementsBreakLines(t *testing.T) {
	input := `<html><head><title>t</title><style>p{}</style></head><body>
<h1>๕. หลักประกันการเสนอราคา</h1>
<p>ผู้ยื่นข้อเสนอต้องวาง   <b>หลักประกัน</b></p>
<div>line one<br>line two</div>
<script>alert(1)</script>
</body></html>`

	p := &HTMLExtractor{}
	got, err := p.Extract(strings.NewReader(input), "tender.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(got, "\n")
	var nonEmpty []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(l))
		}
	}
	want := []string{
		"๕. หลักประกันการเสนอราคา",
		"ผู้ยื่นข้อเสนอต้องวาง หลักประกัน",
		"line one",
		"line two",
	}
	if len(nonEmpty) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(nonEmpty), nonEmpty)
	}
	for i := range want {
		if nonEmpty[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], nonEmpty[i])
		}
	}
	if strings.Contains(got, "alert") {
		t.Error("script content leaked into text")
	}
}

func TestHTMLExtractor_PreKeepsWhitespace(t *testing.T) {
	p := &HTMLExtractor{}
	got, err := p.Extract(strings.NewReader("<pre>a\n    b</pre>"), "pre.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a\n    b" {
		t.Errorf("expected %q, got %q", "a\n    b", got)
	}
}

func TestCollapseSpace(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", " "},
		{"a  b", "a b"},
		{" a\n b ", " a b "},
	}
	for _, tt := range tests {
		if got := collapseSpace(tt.in); got != tt.want {
			t.Errorf("collapseSpace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
