// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"bytes"
	"fmt"
)

// TwoPageForm returns a minimal fillable PDF with a checkbox CB1 on
// page 1 and a text field T2 on page 2. Offsets in the cross-reference
// table are computed while assembling, so the fixture is always valid.
func TwoPageForm() []byte {
	return buildPDF([]string{
		// 1: catalog
		"<< /Type /Catalog /Pages 2 0 R /AcroForm << /Fields [4 0 R 5 0 R] /NeedAppearances true >> >>",
		// 2: page tree
		"<< /Type /Pages /Kids [3 0 R 6 0 R] /Count 2 >>",
		// 3: page 1
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Annots [4 0 R] >>",
		// 4: checkbox widget CB1
		"<< /Type /Annot /Subtype /Widget /FT /Btn /T (CB1) /TU (Start of treatment) " +
			"/Rect [100 700 112 712] /F 4 /AP << /N << /Yes 7 0 R /Off 8 0 R >> >> /AS /Off >>",
		// 5: text widget T2
		"<< /Type /Annot /Subtype /Widget /FT /Tx /T (T2) /TU (Start date) /Rect [100 600 300 615] /F 4 >>",
		// 6: page 2
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Annots [5 0 R] >>",
		// 7-8: checkbox appearance states
		emptyFormXObject,
		emptyFormXObject,
	})
}

// NoFieldsPDF returns a single-page PDF without any fillable widgets.
func NoFieldsPDF() []byte {
	return buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	})
}

const emptyFormXObject = "<< /Type /XObject /Subtype /Form /BBox [0 0 12 12] /Length 0 >>\nstream\n\nendstream"

// buildPDF assembles numbered objects into a complete PDF document with
// a correct xref table.
func buildPDF(objects []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects)+1)
	for i, body := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xrefPos := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xrefPos)

	return buf.Bytes()
}
