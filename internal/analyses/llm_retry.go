package analyses

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strings"
	"time"

	"pitchdeck-backend/internal/llm"
	"pitchdeck-backend/internal/shared/metrics"
	"pitchdeck-backend/internal/shared/telemetry"
)

const llmRetryBaseDelay = 300 * time.Millisecond

var retryableStatusRe = regexp.MustCompile(`status (429|5\d\d)`)

type retryingLLM struct {
	base       llm.Client
	retries    int
	delay      time.Duration
	documentID string
	requestID  string
}

func newRetryingLLM(base llm.Client, retries int, documentID, requestID string) llm.Client {
	if base == nil {
		return nil
	}
	if retries < 0 {
		retries = 0
	}
	return retryingLLM{
		base:       base,
		retries:    retries,
		delay:      llmRetryBaseDelay,
		documentID: documentID,
		requestID:  requestID,
	}
}

// Complete retries transient provider failures. Retrying is safe because
// nothing is written until a completion has been normalized.
func (r retryingLLM) Complete(ctx context.Context, prompt string) (string, error) {
	var (
		out string
		err error
	)
	for attempt := 0; ; attempt++ {
		start := time.Now()
		out, err = r.base.Complete(ctx, prompt)
		metrics.ObserveLLMDurationMs(metrics.SinceMs(start))
		if err == nil || attempt >= r.retries || !shouldRetryLLM(err) || ctx.Err() != nil {
			return out, err
		}

		metrics.IncLLMRetry()
		telemetry.Warn("llm.retry", map[string]any{
			"attempt":     attempt + 1,
			"request_id":  r.requestID,
			"document_id": r.documentID,
			"error":       sanitizeError(err),
		})
		select {
		case <-time.After(r.delay * time.Duration(attempt+1)):
		case <-ctx.Done():
			return "", err
		}
	}
}

func shouldRetryLLM(err error) bool {
	if err == nil || !errors.Is(err, llm.ErrProviderUnavailable) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if retryableStatusRe.MatchString(msg) {
		return true
	}
	if strings.Contains(msg, "timeout") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}
