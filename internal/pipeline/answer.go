package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/pafill/internal/inference"
	"github.com/jackzampolin/pafill/internal/prompts/answer"
)

var answerSchema = jsonschema.MustCompileString("answers.json", answer.Schema)

// AnswerPages asks the inference service to resolve each page's
// annotated fields against the referral package, one request per page
// in parallel. Answering is strict: a reply containing a single element
// that fails schema validation fails that whole page. Failed pages are
// returned separately and never abort their siblings.
func AnswerPages(ctx context.Context, q inference.DocumentQuerier, annotated map[int][]AnnotatedField, referralPDF []byte, logger *slog.Logger) (map[int][]Answer, map[int]error) {
	if logger == nil {
		logger = slog.Default()
	}

	pageNums := make([]int, 0, len(annotated))
	for p := range annotated {
		pageNums = append(pageNums, p)
	}
	sort.Ints(pageNums)

	type pageResult struct {
		answers []Answer
		err     error
	}
	results := make([]pageResult, len(pageNums))

	var wg sync.WaitGroup
	for i, page := range pageNums {
		if len(annotated[page]) == 0 {
			continue
		}
		wg.Add(1)
		go func(i, page int) {
			defer wg.Done()
			answers, err := answerPage(ctx, q, page, annotated[page], referralPDF)
			results[i] = pageResult{answers: answers, err: err}
		}(i, page)
	}
	wg.Wait()

	answers := make(map[int][]Answer, len(pageNums))
	failed := make(map[int]error)
	for i, page := range pageNums {
		if len(annotated[page]) == 0 {
			continue
		}
		if results[i].err != nil {
			logger.Warn("page failed answering", "page", page, "error", results[i].err)
			failed[page] = results[i].err
			continue
		}
		answers[page] = results[i].answers
	}
	return answers, failed
}

func answerPage(ctx context.Context, q inference.DocumentQuerier, page int, pageFields []AnnotatedField, referralPDF []byte) ([]Answer, error) {
	payload, err := json.MarshalIndent(pageFields, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize annotated fields: %w", err)
	}

	reply, err := q.QueryDocument(ctx, answer.UserPrompt(string(payload)), referralPDF)
	if err != nil {
		return nil, fmt.Errorf("answer request failed: %w", err)
	}

	raw, err := inference.DecodeJSON(reply)
	if err != nil {
		return nil, err
	}
	if err := validateAnswers(raw); err != nil {
		return nil, err
	}

	var answers []Answer
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}
	return answers, nil
}

// validateAnswers checks the parsed reply against the strict answer
// schema. Validation errors name the offending element's position.
func validateAnswers(raw json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode reply for validation: %w", err)
	}
	if err := answerSchema.Validate(doc); err != nil {
		return fmt.Errorf("reply does not match answer schema: %w", err)
	}
	return nil
}
