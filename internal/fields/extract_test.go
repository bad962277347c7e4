package fields

import (
	"testing"

	"github.com/jackzampolin/pafill/internal/testutil"
)

func TestExtract(t *testing.T) {
	pm, err := Extract(testutil.TwoPageForm())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if pm.Total() != 2 {
		t.Fatalf("expected 2 fields, got %d", pm.Total())
	}
	if pages := pm.Pages(); len(pages) != 2 || pages[0] != 1 || pages[1] != 2 {
		t.Fatalf("expected pages [1 2], got %v", pages)
	}

	t.Run("checkbox on page 1", func(t *testing.T) {
		fs := pm[1]
		if len(fs) != 1 {
			t.Fatalf("expected 1 field on page 1, got %d", len(fs))
		}
		f := fs[0]
		if f.Name != "CB1" {
			t.Errorf("expected name CB1, got %q", f.Name)
		}
		if f.Type != TypeCheckbox {
			t.Errorf("expected checkbox type, got %q", f.Type)
		}
		if f.Page != 1 {
			t.Errorf("expected page 1, got %d", f.Page)
		}
		if f.FieldLabel != "Start of treatment" {
			t.Errorf("expected label 'Start of treatment', got %q", f.FieldLabel)
		}
		if f.Value != "" {
			t.Errorf("expected empty value for unchecked box, got %q", f.Value)
		}
	})

	t.Run("text field on page 2", func(t *testing.T) {
		fs := pm[2]
		if len(fs) != 1 {
			t.Fatalf("expected 1 field on page 2, got %d", len(fs))
		}
		f := fs[0]
		if f.Name != "T2" {
			t.Errorf("expected name T2, got %q", f.Name)
		}
		if f.Type != TypeText {
			t.Errorf("expected text type, got %q", f.Type)
		}
		if f.FieldLabel != "Start date" {
			t.Errorf("expected label 'Start date', got %q", f.FieldLabel)
		}
	})
}

func TestExtract_NoFields(t *testing.T) {
	pm, err := Extract(testutil.NoFieldsPDF())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if pm.Total() != 0 {
		t.Errorf("expected no fields, got %d", pm.Total())
	}
	if len(pm) != 0 {
		t.Errorf("expected empty page map, got %v", pm)
	}
}

func TestExtract_InvalidPDF(t *testing.T) {
	if _, err := Extract([]byte("not a pdf")); err == nil {
		t.Error("expected error for invalid PDF bytes")
	}
}

func TestPageMap_Names(t *testing.T) {
	pm := PageMap{
		3: {{Name: "A"}, {Name: "B"}},
	}
	names := pm.Names(3)
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(names))
	}
	if _, ok := names["A"]; !ok {
		t.Error("expected name A present")
	}
	if len(pm.Names(1)) != 0 {
		t.Error("expected no names for absent page")
	}
}
