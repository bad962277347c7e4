// Package formfill writes resolved answers back into PA form widgets.
package formfill

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jackzampolin/pafill/internal/fields"
)

// Options control write-back behavior.
type Options struct {
	// SkipSentinels leaves a widget unfilled when its answer is one of
	// the literal sentinels the inference service uses for missing
	// information ("Not documented", "", "Not applicable").
	SkipSentinels bool

	Logger *slog.Logger
}

// Stats reports what the writer did to each widget.
type Stats struct {
	Filled  int      // widgets written
	Skipped int      // sentinel answers left unfilled
	Missing []string // widget names absent from the index, left untouched
	Failed  []string // widget names whose write failed
}

// checkedValues are the case-insensitive answer strings that map a
// checkbox to its checked state. Everything else unchecks.
var checkedValues = map[string]struct{}{
	"yes":     {},
	"y":       {},
	"true":    {},
	"checked": {},
	"on":      {},
	"1":       {},
}

// Checked reports whether an answer string toggles a checkbox on.
func Checked(answer string) bool {
	_, ok := checkedValues[strings.ToLower(strings.TrimSpace(answer))]
	return ok
}

// sentinels are answers that mean "leave the field unfilled" under the
// sentinel-skip policy. Matched literally, as emitted by the answerer.
var sentinels = map[string]struct{}{
	"Not documented": {},
	"":               {},
	"Not applicable": {},
}

// IsSentinel reports whether an answer stands in for missing information.
func IsSentinel(answer string) bool {
	_, ok := sentinels[answer]
	return ok
}

// Fill re-opens the original form and writes every answer whose name
// matches a widget. Widgets without an index entry are left untouched
// and reported in Stats.Missing. A failed widget write is logged and
// skipped; the document is still serialized with the remaining fields.
func Fill(formPDF []byte, index map[string]string, opts Options) ([]byte, *Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, err := fields.ReadContext(formPDF)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open form for filling: %w", err)
	}
	widgets, err := fields.Widgets(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to enumerate form widgets: %w", err)
	}

	stats := &Stats{}
	for _, w := range widgets {
		answer, ok := index[w.Name]
		if !ok {
			stats.Missing = append(stats.Missing, w.Name)
			continue
		}
		if opts.SkipSentinels && IsSentinel(answer) {
			stats.Skipped++
			continue
		}

		if err := setWidgetValue(ctx, w, answer); err != nil {
			logger.Warn("failed to write form field", "field", w.Name, "page", w.Page, "error", err)
			stats.Failed = append(stats.Failed, w.Name)
			continue
		}
		stats.Filled++
	}

	setNeedAppearances(ctx)

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, nil, fmt.Errorf("failed to serialize filled form: %w", err)
	}
	return buf.Bytes(), stats, nil
}

// Lock returns a non-editable copy of the document by setting the
// read-only flag on every form field.
func Lock(pdf []byte) ([]byte, error) {
	ctx, err := fields.ReadContext(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to open form for locking: %w", err)
	}
	widgets, err := fields.Widgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate form widgets: %w", err)
	}

	for _, w := range widgets {
		flags := 0
		if flagsObj, found := w.Field.Find("Ff"); found {
			if f, err := ctx.DereferenceInteger(flagsObj); err == nil && f != nil {
				flags = int(*f)
			}
		}
		w.Field["Ff"] = types.Integer(flags | 1) // bit 1: ReadOnly
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("failed to serialize locked form: %w", err)
	}
	return buf.Bytes(), nil
}

func setWidgetValue(ctx *model.Context, w fields.Widget, answer string) error {
	if w.Type == fields.TypeCheckbox {
		state := "Off"
		if Checked(answer) {
			state = onState(ctx, w.Annot)
		}
		w.Field["V"] = types.Name(state)
		w.Annot["AS"] = types.Name(state)
		return nil
	}

	w.Field["V"] = types.StringLiteral(escapeLiteral(answer))
	return nil
}

// onState returns the checkbox's checked appearance state name, read
// from the normal appearance dictionary. Falls back to "Yes" when the
// widget carries no appearance states.
func onState(ctx *model.Context, annot types.Dict) string {
	apObj, found := annot.Find("AP")
	if !found {
		return "Yes"
	}
	ap, err := ctx.DereferenceDict(apObj)
	if err != nil || ap == nil {
		return "Yes"
	}
	nObj, found := ap.Find("N")
	if !found {
		return "Yes"
	}
	n, err := ctx.DereferenceDict(nObj)
	if err != nil || n == nil {
		return "Yes"
	}

	states := make([]string, 0, len(n))
	for state := range n {
		states = append(states, state)
	}
	sort.Strings(states)
	for _, state := range states {
		if state != "Off" {
			return state
		}
	}
	return "Yes"
}

// setNeedAppearances asks viewers to regenerate field appearances, since
// values are written without rebuilding appearance streams.
func setNeedAppearances(ctx *model.Context) {
	root, err := ctx.Catalog()
	if err != nil {
		return
	}
	acroObj, found := root.Find("AcroForm")
	if !found {
		return
	}
	if acro, err := ctx.DereferenceDict(acroObj); err == nil && acro != nil {
		acro["NeedAppearances"] = types.Boolean(true)
	}
}

// escapeLiteral escapes the characters PDF string literals reserve.
func escapeLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '(', ')':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
