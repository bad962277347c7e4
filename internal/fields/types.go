package fields

import "sort"

// Type discriminates the two widget kinds the pipeline fills.
// Everything that is not a plain checkbox button is treated as text.
type Type string

const (
	TypeCheckbox Type = "checkbox"
	TypeText     Type = "text"
)

// Field describes one fillable widget on one page of a PA form.
// The JSON shape is the contract sent to the inference service.
type Field struct {
	Name       string `json:"name"`
	Type       Type   `json:"type"`
	Page       int    `json:"page"` // 1-based
	FieldLabel string `json:"field_label"`
	Value      string `json:"value"` // pre-fill value, may be empty
}

// PageMap groups extracted fields by page number.
// Pages without widgets are absent from the map.
type PageMap map[int][]Field

// Pages returns the page numbers present in the map in ascending order.
func (pm PageMap) Pages() []int {
	pages := make([]int, 0, len(pm))
	for p := range pm {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// Total returns the number of fields across all pages.
func (pm PageMap) Total() int {
	n := 0
	for _, fs := range pm {
		n += len(fs)
	}
	return n
}

// Names returns the set of field names present on the given page.
func (pm PageMap) Names(page int) map[string]struct{} {
	names := make(map[string]struct{}, len(pm[page]))
	for _, f := range pm[page] {
		names[f.Name] = struct{}{}
	}
	return names
}
