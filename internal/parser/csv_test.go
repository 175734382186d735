package parser

import (
	"strings"
	"testing"
)

func TestCSVParser_HeaderColumn(t *testing.T) {
	input := "id,ciphertext\n1,Lxfopv ef rnhr\n2,\n3,\"Gur, dhvpx\"\n"
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(input), "intercepts.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "intercepts" {
		t.Errorf("expected title %q, got %q", "intercepts", doc.Title)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections (empty row skipped), got %d", len(doc.Sections))
	}
	if doc.Sections[0].Title != "Row 2" || doc.Sections[0].Text != "Lxfopv ef rnhr" {
		t.Errorf("unexpected first row: %+v", doc.Sections[0])
	}
	if doc.Sections[1].Title != "Row 4" || doc.Sections[1].Text != "Gur, dhvpx" {
		t.Errorf("unexpected second row: %+v", doc.Sections[1])
	}
}

func TestCSVParser_NoHeaderUsesFirstColumn(t *testing.T) {
	input := "Lxfopv,x\nRnhr,y\n"
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(input), "raw.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(doc.Sections))
	}
	if doc.Sections[0].Text != "Lxfopv" || doc.Sections[0].Page != 1 {
		t.Errorf("unexpected first row: %+v", doc.Sections[0])
	}
}

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.txt", "b.MD", "c.csv", "d.htm", "e.pdf", "f.docx"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("ForFile(%q): unexpected error: %v", name, err)
		}
		if !IsSupportedExtension(name) {
			t.Errorf("IsSupportedExtension(%q) = false", name)
		}
	}
	if _, err := ForFile("x.exe"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
