// Package answer holds the prompt asking the model to resolve annotated
// PA form fields against a referral package, plus the strict schema the
// reply must satisfy.
package answer

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// UserPrompt builds the per-page answering prompt. annotatedJSON is the
// page's annotated field descriptors serialized as a JSON array.
func UserPrompt(annotatedJSON string) string {
	var buf bytes.Buffer
	data := struct{ PAFormFields string }{PAFormFields: annotatedJSON}
	if err := userTemplate.Execute(&buf, data); err != nil {
		// Fallback to raw template on error
		return userPromptTmpl
	}
	return buf.String()
}
