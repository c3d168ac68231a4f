package promo

import "testing"

func TestLookup(t *testing.T) {
	p, ok := Lookup("mailforge")
	if !ok {
		t.Fatal("Expected case-insensitive lookup to succeed")
	}
	if p.Name != "MailForge" {
		t.Errorf("Expected canonical name, got %q", p.Name)
	}

	if _, ok := Lookup("does-not-exist"); ok {
		t.Error("Expected lookup miss for unknown project")
	}
}

func TestCatalogIsCopy(t *testing.T) {
	a := Catalog()
	a[0].Name = "mutated"
	b := Catalog()
	if b[0].Name == "mutated" {
		t.Error("Expected Catalog to return a copy")
	}
}

func TestValidStyle(t *testing.T) {
	for _, s := range Styles {
		if !ValidStyle(s) {
			t.Errorf("Expected %q to be valid", s)
		}
	}
	if ValidStyle("Banner Everywhere") {
		t.Error("Expected unknown style to be invalid")
	}
}
