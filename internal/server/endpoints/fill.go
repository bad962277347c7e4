package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jackzampolin/pafill/internal/api"
	"github.com/jackzampolin/pafill/internal/pipeline"
	"github.com/jackzampolin/pafill/internal/svcctx"
)

// FillEndpoint handles POST /api/fill with a multipart upload of the PA
// form and the referral package. The response body is the filled PDF.
type FillEndpoint struct{}

var _ api.Endpoint = (*FillEndpoint)(nil)

func (e *FillEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/fill", e.handler
}

func (e *FillEndpoint) RequiresInit() bool { return true }

func (e *FillEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	formPDF, err := readPDFUpload(r, "form")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	referralPDF, err := readPDFUpload(r, "referral")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	lock, _ := strconv.ParseBool(r.FormValue("lock"))

	filler := svcctx.FillerFrom(r.Context())
	if filler == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline not initialized")
		return
	}
	logger := svcctx.LoggerFrom(r.Context())

	res, err := filler.Run(r.Context(), formPDF, referralPDF, pipeline.Options{Lock: lock})
	if err != nil {
		if errors.Is(err, pipeline.ErrNoFields) {
			writeError(w, http.StatusUnprocessableEntity,
				"no fillable fields found in the PA form; ensure it is a fillable PDF")
			return
		}
		logger.Error("fill pipeline failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("fill failed: %v", err))
		return
	}

	output := res.Filled
	filename := "filled_PA_form.pdf"
	if lock {
		output = res.Locked
		filename = "filled_PA_form_locked.pdf"
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Pafill-Run-Id", res.RunID)
	w.Header().Set("X-Pafill-Fields-Filled", strconv.Itoa(res.Stats.Filled))
	w.Header().Set("X-Pafill-Fields-Missing", strconv.Itoa(len(res.Stats.Missing)))
	w.WriteHeader(http.StatusOK)
	w.Write(output)
}
