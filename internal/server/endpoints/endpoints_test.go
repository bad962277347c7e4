package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackzampolin/pafill/internal/pipeline"
	"github.com/jackzampolin/pafill/internal/svcctx"
	"github.com/jackzampolin/pafill/internal/testutil"
)

func multipartBody(t *testing.T, files map[string][]byte, values map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := w.CreateFormFile(name, name+".pdf")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	for name, value := range values {
		if err := w.WriteField(name, value); err != nil {
			t.Fatalf("failed to write form value: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	_, _, handler := (&HealthEndpoint{}).Route()

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
	if resp.Credential {
		t.Error("expected credential unreported without a config manager")
	}
}

func TestFieldsEndpoint(t *testing.T) {
	_, _, handler := (&FieldsEndpoint{}).Route()

	t.Run("extracts fields", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string][]byte{"form": testutil.TwoPageForm()}, nil)
		req := httptest.NewRequest("POST", "/api/fields", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp FieldsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Total != 2 {
			t.Errorf("expected 2 fields, got %d", resp.Total)
		}
		if len(resp.Fields[1]) != 1 || resp.Fields[1][0].Name != "CB1" {
			t.Errorf("unexpected page 1 fields: %+v", resp.Fields[1])
		}
	})

	t.Run("missing file", func(t *testing.T) {
		body, contentType := multipartBody(t, nil, map[string]string{"unused": "x"})
		req := httptest.NewRequest("POST", "/api/fields", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("invalid pdf", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string][]byte{"form": []byte("junk")}, nil)
		req := httptest.NewRequest("POST", "/api/fields", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d", rec.Code)
		}
	})
}

// fixedQuerier returns canned per-phase replies for the fill endpoint test.
type fixedQuerier struct {
	form []byte
}

// promptPayload returns the field-data section of a prompt. The fixed
// instruction text carries literal example field names, so page routing
// must look only at the data section.
func promptPayload(prompt string) string {
	const open, close = "<PA_FORM_DATA>", "</PA_FORM_DATA>"
	start := strings.Index(prompt, open)
	end := strings.Index(prompt, close)
	if start < 0 || end < start {
		return prompt
	}
	return prompt[start+len(open) : end]
}

func (q *fixedQuerier) QueryDocument(_ context.Context, prompt string, pdf []byte) (string, error) {
	annotating := bytes.Equal(pdf, q.form)
	payload := promptPayload(prompt)
	switch {
	case annotating && strings.Contains(payload, `"CB1"`):
		return `[{"name":"CB1","type":"checkbox","page":1,"field_label":"Start of treatment","question":"Has treatment started?","context":"Treatment status"}]`, nil
	case annotating:
		return `[{"name":"T2","type":"text","page":2,"field_label":"Start date","question":"When did treatment start?","context":"Treatment timeline"}]`, nil
	case strings.Contains(payload, `"CB1"`):
		return `[{"name":"CB1","page":1,"field_label":"Start of treatment","answer":"Yes"}]`, nil
	default:
		return `[{"name":"T2","page":2,"field_label":"Start date","answer":"05/22/2024"}]`, nil
	}
}

func TestFillEndpoint(t *testing.T) {
	_, _, handler := (&FillEndpoint{}).Route()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	form := testutil.TwoPageForm()
	filler := pipeline.NewFiller(pipeline.FillerConfig{
		Querier:       &fixedQuerier{form: form},
		Logger:        logger,
		SkipSentinels: true,
	})

	withFiller := func(req *http.Request) *http.Request {
		ctx := svcctx.WithServices(req.Context(), &svcctx.Services{Filler: filler, Logger: logger})
		return req.WithContext(ctx)
	}

	t.Run("fills and returns pdf", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string][]byte{
			"form":     form,
			"referral": testutil.NoFieldsPDF(),
		}, nil)
		req := withFiller(httptest.NewRequest("POST", "/api/fill", body))
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("expected pdf content type, got %q", ct)
		}
		if got := rec.Header().Get("X-Pafill-Fields-Filled"); got != "2" {
			t.Errorf("expected 2 fields filled, got %q", got)
		}
		if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
			t.Error("response body is not a PDF")
		}
	})

	t.Run("no fillable fields", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string][]byte{
			"form":     testutil.NoFieldsPDF(),
			"referral": testutil.NoFieldsPDF(),
		}, nil)
		req := withFiller(httptest.NewRequest("POST", "/api/fill", body))
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("filler not configured", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string][]byte{
			"form":     form,
			"referral": testutil.NoFieldsPDF(),
		}, nil)
		req := httptest.NewRequest("POST", "/api/fill", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})
}
