package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/jackzampolin/pafill/internal/fields"
	"github.com/jackzampolin/pafill/internal/formfill"
	"github.com/jackzampolin/pafill/internal/inference"
)

// ErrNoFields signals that the form has no fillable widgets: a distinct
// "nothing to fill" condition, not a failure of any stage.
var ErrNoFields = errors.New("form has no fillable fields")

// Filler runs the extract → annotate → answer → index → fill pipeline.
type Filler struct {
	querier       inference.DocumentQuerier
	logger        *slog.Logger
	skipSentinels bool
}

// FillerConfig holds Filler construction parameters.
type FillerConfig struct {
	Querier inference.DocumentQuerier
	Logger  *slog.Logger
	// SkipSentinels leaves widgets unfilled for sentinel answers
	// instead of writing the sentinel text into the form.
	SkipSentinels bool
}

// NewFiller creates a pipeline runner.
func NewFiller(cfg FillerConfig) *Filler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Filler{
		querier:       cfg.Querier,
		logger:        cfg.Logger,
		skipSentinels: cfg.SkipSentinels,
	}
}

// Options control one pipeline run.
type Options struct {
	// Lock additionally produces a non-editable copy of the filled form.
	Lock bool
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID  string
	Filled []byte
	Locked []byte // set when Options.Lock

	Extracted   int   // fields found in the form
	Answered    int   // entries in the answer index
	FailedPages []int // pages whose answer reply failed validation

	Stats *formfill.Stats
}

// Run executes the full pipeline for one form/referral pair. Errors
// local to one page or field never abort the run; only document-open
// failures are fatal here.
func (f *Filler) Run(ctx context.Context, formPDF, referralPDF []byte, opts Options) (*Result, error) {
	runID := uuid.New().String()
	logger := f.logger.With("run_id", runID)

	pages, err := fields.Extract(formPDF)
	if err != nil {
		return nil, fmt.Errorf("extract stage: %w", err)
	}
	if pages.Total() == 0 {
		return nil, ErrNoFields
	}
	logger.Info("extracted form fields", "fields", pages.Total(), "pages", len(pages))

	annotated := Annotate(ctx, f.querier, pages, formPDF, logger)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	answers, failed := AnswerPages(ctx, f.querier, annotated, referralPDF, logger)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := BuildIndex(answers)
	logger.Info("built answer index", "answers", len(index), "failed_pages", len(failed))

	filled, stats, err := formfill.Fill(formPDF, index, formfill.Options{
		SkipSentinels: f.skipSentinels,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("fill stage: %w", err)
	}

	res := &Result{
		RunID:       runID,
		Filled:      filled,
		Extracted:   pages.Total(),
		Answered:    len(index),
		FailedPages: sortedPages(failed),
		Stats:       stats,
	}

	if opts.Lock {
		locked, err := formfill.Lock(filled)
		if err != nil {
			return nil, fmt.Errorf("lock stage: %w", err)
		}
		res.Locked = locked
	}

	logger.Info("form filled",
		"filled", stats.Filled,
		"skipped", stats.Skipped,
		"missing", len(stats.Missing),
		"failed", len(stats.Failed),
	)
	return res, nil
}

func sortedPages(failed map[int]error) []int {
	if len(failed) == 0 {
		return nil
	}
	pages := make([]int, 0, len(failed))
	for p := range failed {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}
