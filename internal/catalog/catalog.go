// Package catalog holds the fixed table of the thirteen sections of a Thai
// e-bidding tender document. The table is closed: matching rules are tuned
// per section and are not meant to be extended at runtime.
package catalog

import (
	"strings"

	"github.com/dgallion1/tenderdoc/internal/thaitext"
)

// DocumentTitle is the descriptive title reported for every parsed document.
const DocumentTitle = "เอกสารประกวดราคาเช่าด้วยวิธีประกวดราคาอิเล็กทรอนิกส์ (e-bidding)"

// Keyword tokens referenced by the disambiguation rules.
const (
	bidSecurityToken = "หลักประกัน"
	reservationToken = "ข้อสงวนสิทธิ"
)

// SectionSpec describes one catalog entry.
type SectionSpec struct {
	ID             string   `json:"section_number"`
	CanonicalTitle string   `json:"canonical_title"`
	Keywords       []string `json:"keywords"`

	// disambiguate receives the normalized candidate title after every
	// keyword has been found in it. Nil means no extra check.
	disambiguate func(title string) bool
}

// Disambiguate applies the section's extra predicate to a normalized title.
func (s SectionSpec) Disambiguate(title string) bool {
	if s.disambiguate == nil {
		return true
	}
	return s.disambiguate(title)
}

var sections = []SectionSpec{
	{
		ID:             "1",
		CanonicalTitle: "เอกสารแนบท้ายเอกสารประกวดราคาอิเล็กทรอนิกส์",
		Keywords:       []string{"เอกสาร", "แนบ", "ท้าย"},
	},
	{
		ID:             "2",
		CanonicalTitle: "คุณสมบัติของผู้ยื่นข้อเสนอ",
		Keywords:       []string{"คุณสมบัติ", "ผู้ยื่น", "ข้อเสนอ"},
	},
	{
		ID:             "3",
		CanonicalTitle: "หลักฐานการยื่นข้อเสนอ",
		Keywords:       []string{"หลักฐาน", "การยื่น", "ข้อเสนอ"},
	},
	{
		ID:             "4",
		CanonicalTitle: "การเสนอราคา",
		Keywords:       []string{"การเสนอราคา"},
		// Shares "การเสนอราคา" with section 5 (bid security).
		disambiguate: func(title string) bool {
			return thaitext.Len(title) < 20 && !strings.Contains(title, bidSecurityToken)
		},
	},
	{
		ID:             "5",
		CanonicalTitle: "หลักประกันการเสนอราคา",
		Keywords:       []string{bidSecurityToken, "การเสนอราคา"},
	},
	{
		ID:             "6",
		CanonicalTitle: "หลักเกณฑ์และสิทธิ์ในการพิจารณา",
		Keywords:       []string{"หลักเกณฑ์", "สิทธิ", "พิจารณา"},
	},
	{
		ID:             "7",
		CanonicalTitle: "การทำสัญญา",
		Keywords:       []string{"การทำสัญญา"},
		// Short titles only, e.g. "การทำสัญญาเช่า"; longer lines merely mention contracting.
		disambiguate: func(title string) bool {
			return thaitext.Len(title) < 25
		},
	},
	{
		ID:             "8",
		CanonicalTitle: "ค่าจ้างและการจ่ายเงิน",
		Keywords:       []string{"ค่าจ้าง", "การจ่ายเงิน"},
	},
	{
		ID:             "9",
		CanonicalTitle: "อัตราค่าปรับ",
		Keywords:       []string{"อัตรา", "ค่าปรับ"},
	},
	{
		ID:             "10",
		CanonicalTitle: "การรับประกันความชำรุดบกพร่อง",
		Keywords:       []string{"รับประกัน", "ความชำรุด", "บกพร่อง"},
	},
	{
		ID:             "11",
		CanonicalTitle: "ข้อสงวนสิทธิ์ในการยื่นข้อเสนอและอื่นๆ",
		Keywords:       []string{reservationToken},
		disambiguate: func(title string) bool {
			return strings.Contains(title, reservationToken)
		},
	},
	{
		ID:             "12",
		CanonicalTitle: "การปฏิบัติตามกฎหมายและระเบียบ",
		Keywords:       []string{"ปฏิบัติ", "กฎหมาย", "ระเบียบ"},
	},
	{
		ID:             "13",
		CanonicalTitle: "การประเมินผลการปฏิบัติงานของผู้ประกอบการ",
		Keywords:       []string{"ประเมินผล", "ปฏิบัติงาน", "ผู้ประกอบการ"},
	},
}

var byID = func() map[string]int {
	m := make(map[string]int, len(sections))
	for i, s := range sections {
		m[s.ID] = i
	}
	return m
}()

// DefaultSelection is the set of sections folded into chat context when a
// document is first attached to a session.
var DefaultSelection = []string{"2", "4", "5", "6"}

// Len is the number of catalog entries.
func Len() int {
	return len(sections)
}

// All returns the catalog in identifier order. The returned slice is a copy.
func All() []SectionSpec {
	out := make([]SectionSpec, len(sections))
	copy(out, sections)
	return out
}

// IDs returns the identifiers "1".."13" in order.
func IDs() []string {
	ids := make([]string, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
	}
	return ids
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (SectionSpec, bool) {
	i, ok := byID[id]
	if !ok {
		return SectionSpec{}, false
	}
	return sections[i], true
}

// Contains reports whether id is a catalog identifier.
func Contains(id string) bool {
	_, ok := byID[id]
	return ok
}

// Order returns the position of id in the catalog, or -1.
func Order(id string) int {
	i, ok := byID[id]
	if !ok {
		return -1
	}
	return i
}
