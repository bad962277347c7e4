// Package pipeline sequences the PA form autofill stages: extract,
// annotate, answer, index, fill.
package pipeline

import "github.com/jackzampolin/pafill/internal/fields"

// AnnotatedField is a field descriptor enriched with the implicit
// question the field asks and a short clinical-context string.
// The JSON shape is the contract with the inference service.
type AnnotatedField struct {
	Name       string      `json:"name"`
	Type       fields.Type `json:"type"`
	Page       int         `json:"page"`
	FieldLabel string      `json:"field_label"`
	Question   string      `json:"question"`
	Context    string      `json:"context"`
}

// Answer is one resolved value for one field. Name, page and label are
// carried through for traceability.
type Answer struct {
	Name       string `json:"name"`
	Page       int    `json:"page"`
	FieldLabel string `json:"field_label"`
	Answer     string `json:"answer"`
}

// AnswerIndex maps field name to answer string.
type AnswerIndex map[string]string
