package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/jackzampolin/pafill/internal/fields"
	"github.com/jackzampolin/pafill/internal/inference"
	"github.com/jackzampolin/pafill/internal/prompts/annotate"
)

// Annotate asks the inference service to enrich every extracted field
// with a question and clinical context, one request per page in
// parallel. Annotation is lenient: a page whose reply fails to parse is
// recorded with an empty field list and a warning, and processing
// continues for the other pages. Entries naming fields the extractor
// never produced are dropped (the annotator must not fabricate fields).
func Annotate(ctx context.Context, q inference.DocumentQuerier, pages fields.PageMap, formPDF []byte, logger *slog.Logger) map[int][]AnnotatedField {
	if logger == nil {
		logger = slog.Default()
	}

	pageNums := pages.Pages()
	results := make([][]AnnotatedField, len(pageNums))

	var wg sync.WaitGroup
	for i, page := range pageNums {
		wg.Add(1)
		go func(i, page int) {
			defer wg.Done()
			results[i] = annotatePage(ctx, q, page, pages[page], formPDF, logger)
		}(i, page)
	}
	wg.Wait()

	annotated := make(map[int][]AnnotatedField, len(pageNums))
	for i, page := range pageNums {
		annotated[page] = results[i]
	}
	return annotated
}

func annotatePage(ctx context.Context, q inference.DocumentQuerier, page int, pageFields []fields.Field, formPDF []byte, logger *slog.Logger) []AnnotatedField {
	fieldsJSON, err := json.Marshal(pageFields)
	if err != nil {
		logger.Warn("failed to serialize page fields", "page", page, "error", err)
		return nil
	}

	reply, err := q.QueryDocument(ctx, annotate.UserPrompt(string(fieldsJSON)), formPDF)
	if err != nil {
		logger.Warn("annotation request failed", "page", page, "error", err)
		return nil
	}

	raw, err := inference.DecodeJSON(reply)
	if err != nil {
		logger.Warn("annotation reply is not valid JSON", "page", page, "error", err)
		return nil
	}

	var parsed []AnnotatedField
	if err := json.Unmarshal(raw, &parsed); err != nil {
		logger.Warn("annotation reply has unexpected shape", "page", page, "error", err)
		return nil
	}

	known := fieldNames(pageFields)
	var out []AnnotatedField
	for _, af := range parsed {
		if _, ok := known[af.Name]; !ok {
			logger.Warn("annotator returned unknown field, dropping", "page", page, "name", af.Name)
			continue
		}
		if af.Question == "" || af.Context == "" {
			logger.Warn("annotated field missing question or context, dropping", "page", page, "name", af.Name)
			continue
		}
		out = append(out, af)
	}

	if len(out) < len(pageFields) {
		logger.Warn("fields lost during annotation", "page", page, "extracted", len(pageFields), "annotated", len(out))
	}
	return out
}

func fieldNames(fs []fields.Field) map[string]struct{} {
	names := make(map[string]struct{}, len(fs))
	for _, f := range fs {
		names[f.Name] = struct{}{}
	}
	return names
}
