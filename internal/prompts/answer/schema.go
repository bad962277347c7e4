package answer

// Schema is the JSON schema each per-page answer reply must satisfy.
// Validation is strict per page: one malformed element fails the page.
const Schema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "name": {"type": "string", "minLength": 1},
      "page": {"type": "integer", "minimum": 1},
      "field_label": {"type": "string"},
      "answer": {"type": "string", "minLength": 1}
    },
    "required": ["name", "page", "field_label", "answer"]
  }
}`
