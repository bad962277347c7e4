package endpoints

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/jackzampolin/pafill/internal/api"
	"github.com/jackzampolin/pafill/internal/fields"
)

// FieldsEndpoint handles POST /api/fields: extract fillable widget
// metadata from an uploaded PA form without running the pipeline.
type FieldsEndpoint struct{}

var _ api.Endpoint = (*FieldsEndpoint)(nil)

// FieldsResponse reports the extracted page map.
type FieldsResponse struct {
	Total  int            `json:"total"`
	Fields fields.PageMap `json:"fields"`
}

func (e *FieldsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/fields", e.handler
}

func (e *FieldsEndpoint) RequiresInit() bool { return false }

func (e *FieldsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	formPDF, err := readPDFUpload(r, "form")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pm, err := fields.Extract(formPDF)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("extract failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, FieldsResponse{Total: pm.Total(), Fields: pm})
}

// maxUploadMemory bounds in-memory multipart parsing.
const maxUploadMemory = 100 << 20 // 100MB

// readPDFUpload reads one named PDF file from a multipart request.
// The request's multipart form is parsed on first use.
func readPDFUpload(r *http.Request, field string) ([]byte, error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return nil, fmt.Errorf("failed to parse form: %v", err)
		}
	}

	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, fmt.Errorf("missing %q file", field)
	}
	fh := files[0]
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return nil, fmt.Errorf("file %s is not a PDF", fh.Filename)
	}

	return readAll(fh)
}

func readAll(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %v", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %v", err)
	}
	return data, nil
}
