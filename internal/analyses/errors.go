package analyses

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pitchdeck-backend/internal/documents"
	"pitchdeck-backend/internal/extract"
	"pitchdeck-backend/internal/llm"
)

var (
	ErrNoJSONFound    = errors.New("no JSON found in model output")
	ErrMalformedJSON  = errors.New("malformed JSON in model output")
	ErrSchemaMismatch = errors.New("model output does not match schema")
	ErrUnknownSchema  = errors.New("unknown schema version")
)

const (
	ErrorCodeUnsupportedFormat   = "unsupported_format"
	ErrorCodeNotFound            = "not_found"
	ErrorCodeProviderUnavailable = "provider_unavailable"
	ErrorCodeEmptyCompletion     = "empty_completion"
	ErrorCodeNoJSONFound         = "no_json_found"
	ErrorCodeMalformedJSON       = "malformed_json"
	ErrorCodeSchemaMismatch      = "schema_mismatch"
	ErrorCodeInternal            = "internal_error"
)

// OutputError carries the model output that could not be normalized.
type OutputError struct {
	Err    error
	Detail string
	Raw    string
}

func (e *OutputError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *OutputError) Unwrap() error { return e.Err }

// SchemaMismatchError lists where a parsed result deviates from its schema.
type SchemaMismatchError struct {
	Version    string
	Deviations []string
}

func (e *SchemaMismatchError) Error() string {
	return ErrSchemaMismatch.Error() + " " + e.Version + ": " + strings.Join(e.Deviations, "; ")
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

// Classify maps an analysis error onto an error code and HTTP status.
func Classify(err error) (string, int) {
	switch {
	case err == nil:
		return "", http.StatusOK
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return ErrorCodeUnsupportedFormat, http.StatusBadRequest
	case errors.Is(err, documents.ErrNotFound):
		return ErrorCodeNotFound, http.StatusNotFound
	case errors.Is(err, llm.ErrProviderUnavailable), errors.Is(err, context.DeadlineExceeded):
		return ErrorCodeProviderUnavailable, http.StatusBadGateway
	case errors.Is(err, llm.ErrEmptyCompletion):
		return ErrorCodeEmptyCompletion, http.StatusBadGateway
	case errors.Is(err, ErrNoJSONFound):
		return ErrorCodeNoJSONFound, http.StatusInternalServerError
	case errors.Is(err, ErrMalformedJSON):
		return ErrorCodeMalformedJSON, http.StatusInternalServerError
	case errors.Is(err, ErrSchemaMismatch):
		return ErrorCodeSchemaMismatch, http.StatusInternalServerError
	default:
		return ErrorCodeInternal, http.StatusInternalServerError
	}
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	return TruncateChars(msg, maxLen)
}
