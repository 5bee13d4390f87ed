package catalog

import (
	"strconv"
	"testing"
)

func TestCatalogHasThirteenOrderedEntries(t *testing.T) {
	if Len() != 13 {
		t.Fatalf("expected 13 entries, got %d", Len())
	}
	for i, id := range IDs() {
		if id != strconv.Itoa(i+1) {
			t.Errorf("entry %d: expected id %q, got %q", i, strconv.Itoa(i+1), id)
		}
		if Order(id) != i {
			t.Errorf("Order(%q) = %d, want %d", id, Order(id), i)
		}
	}
}

func TestCatalogKeywordsPresent(t *testing.T) {
	for _, s := range All() {
		if len(s.Keywords) == 0 {
			t.Errorf("section %s has no keywords", s.ID)
		}
		if s.CanonicalTitle == "" {
			t.Errorf("section %s has no canonical title", s.ID)
		}
	}
}

func TestLookup(t *testing.T) {
	s, ok := Lookup("5")
	if !ok {
		t.Fatal("expected section 5 to exist")
	}
	if s.CanonicalTitle != "หลักประกันการเสนอราคา" {
		t.Errorf("unexpected canonical title %q", s.CanonicalTitle)
	}
	for _, id := range []string{"0", "14", "", "๕", " 5"} {
		if _, ok := Lookup(id); ok {
			t.Errorf("expected Lookup(%q) to fail", id)
		}
		if Contains(id) {
			t.Errorf("expected Contains(%q) to be false", id)
		}
		if Order(id) != -1 {
			t.Errorf("expected Order(%q) = -1", id)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].ID = "mutated"
	if IDs()[0] != "1" {
		t.Error("mutating All() result changed the catalog")
	}
}

func TestDisambiguateDefaultsToTrue(t *testing.T) {
	s, _ := Lookup("2")
	if !s.Disambiguate("anything at all") {
		t.Error("expected section without rule to accept")
	}
}

func TestDefaultSelectionIsInCatalog(t *testing.T) {
	for _, id := range DefaultSelection {
		if !Contains(id) {
			t.Errorf("default selection %q not in catalog", id)
		}
	}
}
