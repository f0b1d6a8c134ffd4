package documents

import (
	"errors"

	"pitchdeck-backend/internal/extract"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedFormat matches extract.ErrUnsupportedFormat.
	ErrUnsupportedFormat = extract.ErrUnsupportedFormat
	ErrExtraction        = errors.New("text extraction failed")
)
