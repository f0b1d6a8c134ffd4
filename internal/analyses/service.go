package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pitchdeck-backend/internal/documents"
	"pitchdeck-backend/internal/llm"
	"pitchdeck-backend/internal/shared/metrics"
	"pitchdeck-backend/internal/shared/telemetry"
)

const (
	defaultLLMTimeout = 60 * time.Second
	maxLoggedRawChars = 16000
)

// Service runs the prompt -> completion -> normalize pipeline for a document.
// Timeout bounds all completion attempts of one analysis.
type Service struct {
	Docs           documents.DocumentsRepo
	LLM            llm.Client
	Schema         Schema
	StrictSchema   bool
	PromptMaxChars int
	Timeout        time.Duration
	RetryAttempts  int
	Now            func() time.Time
}

// AnalyzeOutcome describes one analysis attempt.
type AnalyzeOutcome struct {
	DocumentID    string
	Result        Result
	SchemaVersion string
	AnalyzedAt    time.Time
	Transition    string
}

// Analyze runs the pipeline for id. On success the result and the analyzed
// status are committed in one write. On any failure after the document was
// loaded, status becomes error and the previous result stays in place.
func (s *Service) Analyze(ctx context.Context, id string) (AnalyzeOutcome, error) {
	outcome := AnalyzeOutcome{DocumentID: id, SchemaVersion: s.Schema.Version}
	if id == "" {
		return outcome, documents.ErrNotFound
	}
	doc, err := s.Docs.GetByID(ctx, id)
	if err != nil {
		return outcome, err
	}
	if s.LLM == nil {
		return outcome, s.fail(ctx, doc, &outcome, llm.Unavailable("llm client not configured"), time.Now())
	}

	startedAt := time.Now()
	requestID := telemetry.RequestIDFromContext(ctx)
	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.started", map[string]any{
		"request_id":     requestID,
		"document_id":    doc.ID,
		"status":         doc.Status,
		"schema_version": s.Schema.Version,
	})

	prompt := BuildPrompt(doc.Text, s.Schema, s.PromptMaxChars)

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	llmCtx, cancel := context.WithTimeout(ctx, timeout)
	client := newRetryingLLM(s.LLM, s.RetryAttempts, doc.ID, requestID)
	raw, err := client.Complete(llmCtx, prompt)
	cancel()
	if err != nil {
		if !errors.Is(err, llm.ErrProviderUnavailable) && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
			err = fmt.Errorf("%w: llm call aborted after %s: %w", llm.ErrProviderUnavailable, timeout, err)
		}
		return outcome, s.fail(ctx, doc, &outcome, err, startedAt)
	}

	result, err := Normalize(raw, s.Schema)
	if err != nil {
		logRawOutput(requestID, doc.ID, err, raw)
		return outcome, s.fail(ctx, doc, &outcome, err, startedAt)
	}

	if err := s.Schema.Validate(result); err != nil {
		var mismatch *SchemaMismatchError
		if !errors.As(err, &mismatch) || s.StrictSchema {
			logRawOutput(requestID, doc.ID, err, raw)
			return outcome, s.fail(ctx, doc, &outcome, err, startedAt)
		}
		telemetry.Warn("analysis.schema_deviation", map[string]any{
			"request_id":     requestID,
			"document_id":    doc.ID,
			"schema_version": s.Schema.Version,
			"deviations":     mismatch.Deviations,
		})
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return outcome, s.fail(ctx, doc, &outcome, fmt.Errorf("encode result: %w", err), startedAt)
	}
	analyzedAt := s.now()
	update := &documents.ResultUpdate{
		Result:        encoded,
		SchemaVersion: s.Schema.Version,
		AnalyzedAt:    analyzedAt,
	}
	if err := s.Docs.UpdateStatusAndResult(context.WithoutCancel(ctx), doc.ID, documents.StatusAnalyzed, update); err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return outcome, err
		}
		return outcome, s.fail(ctx, doc, &outcome, fmt.Errorf("store result: %w", err), startedAt)
	}

	outcome.Result = result
	outcome.AnalyzedAt = analyzedAt
	outcome.Transition = doc.Status + "->" + documents.StatusAnalyzed
	durationMs := metrics.SinceMs(startedAt)
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(durationMs)
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestID,
		"document_id":       doc.ID,
		"status":            documents.StatusAnalyzed,
		"status_transition": outcome.Transition,
		"schema_version":    s.Schema.Version,
		"duration_ms":       durationMs,
	})
	return outcome, nil
}

// fail records the error status without touching the stored result and
// returns cause unchanged.
func (s *Service) fail(ctx context.Context, doc documents.Document, outcome *AnalyzeOutcome, cause error, startedAt time.Time) error {
	code, _ := Classify(cause)
	requestID := telemetry.RequestIDFromContext(ctx)
	if err := s.Docs.UpdateStatusAndResult(context.WithoutCancel(ctx), doc.ID, documents.StatusError, nil); err != nil {
		telemetry.Error("analysis.status_update_failed", map[string]any{
			"request_id":  requestID,
			"document_id": doc.ID,
			"error":       sanitizeError(err),
			"cause":       sanitizeError(cause),
		})
	}
	outcome.Transition = doc.Status + "->" + documents.StatusError

	durationMs := metrics.SinceMs(startedAt)
	metrics.IncAnalysisFailed(code)
	metrics.ObserveAnalysisDurationMs(durationMs)
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestID,
		"document_id":       doc.ID,
		"status":            documents.StatusError,
		"status_transition": outcome.Transition,
		"error_code":        code,
		"error":             sanitizeError(cause),
		"duration_ms":       durationMs,
	})
	return cause
}

func logRawOutput(requestID, documentID string, cause error, raw string) {
	telemetry.Warn("analysis.raw_output", map[string]any{
		"request_id":  requestID,
		"document_id": documentID,
		"error":       sanitizeError(cause),
		"raw":         TruncateChars(raw, maxLoggedRawChars),
	})
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
