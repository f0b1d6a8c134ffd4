// Package extract turns pitch-deck containers into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a supported deck container.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPPTX Format = "pptx"
)

var (
	// ErrUnsupportedFormat is returned before any parsing for formats other than PDF and PPTX.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrCorruptDocument is returned when the container itself cannot be opened.
	ErrCorruptDocument = errors.New("corrupt document")
)

// DetectFormat maps a file name to a Format by extension, case-insensitively.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(fileName))) {
	case ".pdf":
		return FormatPDF, nil
	case ".pptx":
		return FormatPPTX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// ParseFormat validates a stored format name.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatPDF, FormatPPTX:
		return f, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// MIMEType returns the canonical content type for the format.
func (f Format) MIMEType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatPPTX:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	default:
		return "application/octet-stream"
	}
}

// Extract returns the text of data interpreted as format. It keeps no state
// and reads the whole container from memory.
func Extract(ctx context.Context, data []byte, format Format) (string, error) {
	if format != FormatPDF && format != FormatPPTX {
		return "", ErrUnsupportedFormat
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch format {
	case FormatPDF:
		pages, err := pdfPageTexts(ctx, data)
		if err != nil {
			return "", err
		}
		return JoinPages(pages), nil
	default:
		shapes, err := pptxShapeTexts(ctx, data)
		if err != nil {
			return "", err
		}
		return JoinShapes(shapes), nil
	}
}

// JoinPages concatenates per-page text in page order with no separator.
func JoinPages(pages []string) string {
	return strings.Join(pages, "")
}

// JoinShapes joins shape texts with newlines, skipping shapes with no text.
func JoinShapes(shapes []string) string {
	kept := make([]string, 0, len(shapes))
	for _, s := range shapes {
		if s == "" {
			continue
		}
		kept = append(kept, s)
	}
	return strings.Join(kept, "\n")
}

func corrupt(kind string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrCorruptDocument, kind, err)
}
