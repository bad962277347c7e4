// Package annotate holds the prompt asking the model to enrich PA form
// fields with an implicit question and clinical context.
package annotate

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// UserPrompt builds the per-page annotation prompt. pageFieldsJSON is
// the page's field descriptors serialized as a JSON array.
func UserPrompt(pageFieldsJSON string) string {
	var buf bytes.Buffer
	data := struct{ PageFields string }{PageFields: pageFieldsJSON}
	if err := userTemplate.Execute(&buf, data); err != nil {
		// Fallback to raw template on error
		return userPromptTmpl
	}
	return buf.String()
}
