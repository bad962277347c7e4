// Package fields extracts fillable widget metadata from PA form PDFs.
//
// PDF structure access is delegated to pdfcpu; this package only walks
// the page tree and reads the AcroForm entries the pipeline needs.
package fields

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Btn field flag bits (PDF 32000-1, table 226).
const (
	flagRadio      = 1 << 15
	flagPushbutton = 1 << 16
)

// Widget pairs a widget annotation with its owning field dictionary.
// Annot and Field reference the live pdfcpu context and may be the same
// dictionary for merged field/widget annotations.
type Widget struct {
	Name  string
	Type  Type
	Page  int // 1-based
	Annot types.Dict
	Field types.Dict
}

// ReadContext opens PDF bytes as a pdfcpu context with relaxed validation.
func ReadContext(pdf []byte) (*model.Context, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(pdf), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to resolve page count: %w", err)
	}
	return ctx, nil
}

// Extract enumerates fillable widgets in the form and groups them by page.
// A document without fillable widgets yields an empty map and no error;
// callers must treat that as a distinct "nothing to fill" condition.
func Extract(pdf []byte) (PageMap, error) {
	ctx, err := ReadContext(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to open form: %w", err)
	}

	widgets, err := Widgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate form widgets: %w", err)
	}

	pm := PageMap{}
	for _, w := range widgets {
		pm[w.Page] = append(pm[w.Page], Field{
			Name:       w.Name,
			Type:       w.Type,
			Page:       w.Page,
			FieldLabel: fieldLabel(ctx, w.Field),
			Value:      fieldValue(ctx, w.Field, w.Type),
		})
	}
	return pm, nil
}

// Widgets walks the page tree in order and returns every fillable widget
// annotation in traversal order. Pushbuttons are skipped; they carry no
// value. Unnamed widgets are skipped as unaddressable.
func Widgets(ctx *model.Context) ([]Widget, error) {
	pages, err := pageDicts(ctx)
	if err != nil {
		return nil, err
	}

	var widgets []Widget
	for i, pageDict := range pages {
		pageNum := i + 1

		annotsObj, found := pageDict.Find("Annots")
		if !found {
			continue
		}
		annots, err := ctx.DereferenceArray(annotsObj)
		if err != nil {
			continue
		}

		for _, annotRef := range annots {
			annot, err := ctx.DereferenceDict(annotRef)
			if err != nil || annot == nil {
				continue
			}
			if subtype(ctx, annot) != "Widget" {
				continue
			}

			name := fieldName(ctx, annot)
			if name == "" {
				continue
			}

			typ, skip := fieldType(ctx, annot)
			if skip {
				continue
			}

			widgets = append(widgets, Widget{
				Name:  name,
				Type:  typ,
				Page:  pageNum,
				Annot: annot,
				Field: fieldDict(ctx, annot),
			})
		}
	}
	return widgets, nil
}

// pageDicts returns the leaf page dictionaries in document order.
func pageDicts(ctx *model.Context) ([]types.Dict, error) {
	root, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	pagesObj, found := root.Find("Pages")
	if !found {
		return nil, nil
	}
	pagesDict, err := ctx.DereferenceDict(pagesObj)
	if err != nil || pagesDict == nil {
		return nil, fmt.Errorf("failed to dereference page tree root: %w", err)
	}

	var leaves []types.Dict
	if err := collectPages(ctx, pagesDict, &leaves, 0); err != nil {
		return nil, err
	}
	return leaves, nil
}

const maxPageTreeDepth = 64

func collectPages(ctx *model.Context, node types.Dict, leaves *[]types.Dict, depth int) error {
	if depth > maxPageTreeDepth {
		return fmt.Errorf("page tree exceeds depth %d", maxPageTreeDepth)
	}

	typ, _ := dictName(ctx, node, "Type")
	if typ == "Page" {
		*leaves = append(*leaves, node)
		return nil
	}

	kidsObj, found := node.Find("Kids")
	if !found {
		// Some writers omit Type on leaf pages.
		if typ == "" {
			*leaves = append(*leaves, node)
		}
		return nil
	}
	kids, err := ctx.DereferenceArray(kidsObj)
	if err != nil {
		return fmt.Errorf("failed to dereference page tree kids: %w", err)
	}
	for _, kid := range kids {
		kidDict, err := ctx.DereferenceDict(kid)
		if err != nil || kidDict == nil {
			continue
		}
		if err := collectPages(ctx, kidDict, leaves, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// fieldDict resolves the field dictionary owning a widget annotation.
// For merged field/widget dictionaries this is the annotation itself;
// otherwise the parent carrying the T entry.
func fieldDict(ctx *model.Context, annot types.Dict) types.Dict {
	if _, found := annot.Find("T"); found {
		return annot
	}
	if parentObj, found := annot.Find("Parent"); found {
		if parent, err := ctx.DereferenceDict(parentObj); err == nil && parent != nil {
			return parent
		}
	}
	return annot
}

// fieldName resolves the widget's field name (T), walking the Parent
// chain when the widget is a kid annotation.
func fieldName(ctx *model.Context, dict types.Dict) string {
	for depth := 0; dict != nil && depth < maxPageTreeDepth; depth++ {
		if nameObj, found := dict.Find("T"); found {
			if name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil && name != "" {
				return name
			}
		}
		parentObj, found := dict.Find("Parent")
		if !found {
			return ""
		}
		parent, err := ctx.DereferenceDict(parentObj)
		if err != nil || parent == nil {
			return ""
		}
		dict = parent
	}
	return ""
}

// fieldType maps the field's FT entry onto the pipeline's two-type view.
// Plain checkbox buttons are checkboxes; pushbuttons are skipped;
// everything else (text, choice, radio, signature) is treated as text,
// mirroring the two-bucket behavior of the reference extractor.
func fieldType(ctx *model.Context, annot types.Dict) (typ Type, skip bool) {
	ft := inheritedName(ctx, annot, "FT", 0)
	if ft != "Btn" {
		return TypeText, false
	}

	if flagsObj, found := fieldDict(ctx, annot).Find("Ff"); found {
		if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
			v := int(*flags)
			if v&flagPushbutton != 0 {
				return "", true
			}
			if v&flagRadio != 0 {
				return TypeText, false
			}
		}
	}
	return TypeCheckbox, false
}

// inheritedName resolves a name entry on a dict, inheriting from Parent.
func inheritedName(ctx *model.Context, dict types.Dict, key string, depth int) string {
	if depth > maxPageTreeDepth {
		return ""
	}
	if name, ok := dictName(ctx, dict, key); ok {
		return name
	}
	if parentObj, found := dict.Find("Parent"); found {
		if parent, err := ctx.DereferenceDict(parentObj); err == nil && parent != nil {
			return inheritedName(ctx, parent, key, depth+1)
		}
	}
	return ""
}

func subtype(ctx *model.Context, dict types.Dict) string {
	name, _ := dictName(ctx, dict, "Subtype")
	return name
}

func dictName(ctx *model.Context, dict types.Dict, key string) (string, bool) {
	obj, found := dict.Find(key)
	if !found {
		return "", false
	}
	name, err := ctx.DereferenceName(obj, model.V10, nil)
	if err != nil {
		return "", false
	}
	return string(name), true
}

// fieldLabel reads the human-readable label (TU) rendered near the widget.
func fieldLabel(ctx *model.Context, dict types.Dict) string {
	obj, found := dict.Find("TU")
	if !found {
		return ""
	}
	label, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil)
	if err != nil {
		return ""
	}
	return label
}

// fieldValue reads the widget's current value (V). Checkbox values are
// appearance state names; the Off state reads as empty.
func fieldValue(ctx *model.Context, dict types.Dict, typ Type) string {
	obj, found := dict.Find("V")
	if !found {
		return ""
	}

	if typ == TypeCheckbox {
		state, err := ctx.DereferenceName(obj, model.V10, nil)
		if err != nil || state == "Off" {
			return ""
		}
		return string(state)
	}

	val, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil)
	if err != nil {
		return ""
	}
	return val
}
