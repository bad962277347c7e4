package formfill

import (
	"testing"

	"github.com/jackzampolin/pafill/internal/fields"
	"github.com/jackzampolin/pafill/internal/testutil"
)

func TestChecked(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"yes", true},
		{"Yes", true},
		{"Y", true},
		{"TRUE", true},
		{"checked", true},
		{"on", true},
		{"1", true},
		{"  yes  ", true},
		{"no", false},
		{"off", false},
		{"0", false},
		{"", false},
		{"Not documented", false},
	}
	for _, tt := range tests {
		if got := Checked(tt.answer); got != tt.want {
			t.Errorf("Checked(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}

func TestIsSentinel(t *testing.T) {
	for _, s := range []string{"Not documented", "", "Not applicable"} {
		if !IsSentinel(s) {
			t.Errorf("expected %q to be a sentinel", s)
		}
	}
	// Sentinels match literally, not case-insensitively.
	for _, s := range []string{"not documented", "N/A", "unknown"} {
		if IsSentinel(s) {
			t.Errorf("expected %q not to be a sentinel", s)
		}
	}
}

func TestFill(t *testing.T) {
	index := map[string]string{
		"CB1": "Yes",
		"T2":  "05/22/2024",
	}

	filled, stats, err := Fill(testutil.TwoPageForm(), index, Options{})
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if stats.Filled != 2 {
		t.Errorf("expected 2 filled, got %d", stats.Filled)
	}
	if len(stats.Missing) != 0 || len(stats.Failed) != 0 || stats.Skipped != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	pm, err := fields.Extract(filled)
	if err != nil {
		t.Fatalf("failed to re-extract filled form: %v", err)
	}
	if got := pm[1][0].Value; got != "Yes" {
		t.Errorf("expected checkbox state Yes, got %q", got)
	}
	if got := pm[2][0].Value; got != "05/22/2024" {
		t.Errorf("expected text value 05/22/2024, got %q", got)
	}
}

func TestFill_UncheckedAnswer(t *testing.T) {
	filled, stats, err := Fill(testutil.TwoPageForm(), map[string]string{"CB1": "No"}, Options{})
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if stats.Filled != 1 {
		t.Errorf("expected 1 filled, got %d", stats.Filled)
	}

	pm, err := fields.Extract(filled)
	if err != nil {
		t.Fatalf("failed to re-extract filled form: %v", err)
	}
	if got := pm[1][0].Value; got != "" {
		t.Errorf("expected checkbox to read unchecked, got %q", got)
	}
}

func TestFill_SkipSentinels(t *testing.T) {
	index := map[string]string{
		"CB1": "Not documented",
		"T2":  "Not applicable",
	}

	t.Run("enabled", func(t *testing.T) {
		filled, stats, err := Fill(testutil.TwoPageForm(), index, Options{SkipSentinels: true})
		if err != nil {
			t.Fatalf("Fill failed: %v", err)
		}
		if stats.Skipped != 2 || stats.Filled != 0 {
			t.Errorf("expected 2 skipped and 0 filled, got %+v", stats)
		}

		pm, err := fields.Extract(filled)
		if err != nil {
			t.Fatalf("failed to re-extract filled form: %v", err)
		}
		if got := pm[2][0].Value; got != "" {
			t.Errorf("expected sentinel left unfilled, got %q", got)
		}
	})

	t.Run("disabled writes sentinel text", func(t *testing.T) {
		filled, stats, err := Fill(testutil.TwoPageForm(), index, Options{})
		if err != nil {
			t.Fatalf("Fill failed: %v", err)
		}
		if stats.Filled != 2 {
			t.Errorf("expected 2 filled, got %d", stats.Filled)
		}

		pm, err := fields.Extract(filled)
		if err != nil {
			t.Fatalf("failed to re-extract filled form: %v", err)
		}
		if got := pm[2][0].Value; got != "Not applicable" {
			t.Errorf("expected sentinel text written, got %q", got)
		}
	})
}

func TestFill_MissingFields(t *testing.T) {
	_, stats, err := Fill(testutil.TwoPageForm(), map[string]string{"CB1": "Yes"}, Options{})
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if stats.Filled != 1 {
		t.Errorf("expected 1 filled, got %d", stats.Filled)
	}
	if len(stats.Missing) != 1 || stats.Missing[0] != "T2" {
		t.Errorf("expected T2 reported missing, got %v", stats.Missing)
	}
}

func TestFill_EscapesReservedCharacters(t *testing.T) {
	answer := `Dr. Smith (cardiology) \ internal`
	filled, _, err := Fill(testutil.TwoPageForm(), map[string]string{"T2": answer}, Options{})
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	pm, err := fields.Extract(filled)
	if err != nil {
		t.Fatalf("failed to re-extract filled form: %v", err)
	}
	if got := pm[2][0].Value; got != answer {
		t.Errorf("expected %q round-tripped, got %q", answer, got)
	}
}

func TestFill_Idempotent(t *testing.T) {
	index := map[string]string{"CB1": "Yes", "T2": "05/22/2024"}

	once, _, err := Fill(testutil.TwoPageForm(), index, Options{})
	if err != nil {
		t.Fatalf("first Fill failed: %v", err)
	}
	twice, _, err := Fill(once, index, Options{})
	if err != nil {
		t.Fatalf("second Fill failed: %v", err)
	}

	pmOnce, err := fields.Extract(once)
	if err != nil {
		t.Fatalf("failed to extract first fill: %v", err)
	}
	pmTwice, err := fields.Extract(twice)
	if err != nil {
		t.Fatalf("failed to extract second fill: %v", err)
	}

	for _, page := range pmOnce.Pages() {
		for i, f := range pmOnce[page] {
			if got := pmTwice[page][i].Value; got != f.Value {
				t.Errorf("page %d field %s changed on refill: %q vs %q", page, f.Name, f.Value, got)
			}
		}
	}
}

func TestLock(t *testing.T) {
	locked, err := Lock(testutil.TwoPageForm())
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	ctx, err := fields.ReadContext(locked)
	if err != nil {
		t.Fatalf("failed to re-open locked form: %v", err)
	}
	widgets, err := fields.Widgets(ctx)
	if err != nil {
		t.Fatalf("failed to enumerate widgets: %v", err)
	}
	if len(widgets) != 2 {
		t.Fatalf("expected 2 widgets, got %d", len(widgets))
	}
	for _, w := range widgets {
		flagsObj, found := w.Field.Find("Ff")
		if !found {
			t.Errorf("field %s has no flags after locking", w.Name)
			continue
		}
		flags, err := ctx.DereferenceInteger(flagsObj)
		if err != nil || flags == nil {
			t.Errorf("field %s flags unreadable: %v", w.Name, err)
			continue
		}
		if int(*flags)&1 == 0 {
			t.Errorf("field %s missing read-only flag", w.Name)
		}
	}
}
