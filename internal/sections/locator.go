package sections

import (
	"regexp"
	"strings"

	"github.com/dgallion1/tenderdoc/internal/thaitext"
)

// numberWindow is how many lines on each side of a title line may hold its numeral.
const numberWindow = 2

var (
	// standaloneNumber matches a line holding only a section numeral, e.g. "๕." or "5.".
	standaloneNumber = regexp.MustCompile(`^([0-9๐-๙]+)\.$`)

	// combinedHeader matches "๕. หลักประกันการเสนอราคา" style lines.
	combinedHeader = regexp.MustCompile(`^([0-9๐-๙]+)\.[\s\p{Z}]+(.+)$`)
)

// FindNumberNear looks for a standalone numbering line for id within two
// lines of the title at titleIdx. Lines before the title are searched first
// and win; the anchor is then the numeral's own line. When the numeral only
// follows the title, the anchor is the title line itself.
func FindNumberNear(lines []string, titleIdx int, id string) (anchor int, ok bool) {
	for offset := 1; offset <= numberWindow; offset++ {
		idx := titleIdx - offset
		if idx < 0 {
			break
		}
		if numeralEquals(lines[idx], id) {
			return idx, true
		}
	}

	for offset := 1; offset <= numberWindow; offset++ {
		idx := titleIdx + offset
		if idx >= len(lines) {
			break
		}
		if numeralEquals(lines[idx], id) {
			return titleIdx, true
		}
	}

	return -1, false
}

// numeralEquals reports whether line is a standalone numbering line for id.
func numeralEquals(line, id string) bool {
	m := standaloneNumber.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return false
	}
	return thaitext.NormalizeDigits(m[1]) == id
}
