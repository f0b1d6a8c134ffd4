package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pitchdeck-backend/internal/extract"
	"pitchdeck-backend/internal/shared/metrics"
	"pitchdeck-backend/internal/shared/storage/object"
	"pitchdeck-backend/internal/shared/telemetry"
	"pitchdeck-backend/internal/shared/util"
)

const storeNamespace = "decks"

// Service contains business logic for documents.
type Service struct {
	// Store keeps the original upload. Optional.
	Store object.ObjectStore
	Repo  DocumentsRepo
	Now   func() time.Time
}

// Upload extracts text from data and records a new document. Nothing is
// persisted when the format is unsupported or extraction fails.
func (s *Service) Upload(ctx context.Context, fileName string, data []byte) (Document, error) {
	name, err := util.SanitizeFileName(util.BaseName(fileName))
	if err != nil {
		metrics.IncUploadRejected()
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	format, err := extract.DetectFormat(name)
	if err != nil {
		metrics.IncUploadRejected()
		return Document{}, err
	}

	text, err := extract.Extract(ctx, data, format)
	if err != nil {
		metrics.IncUploadRejected()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Document{}, err
		}
		return Document{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	doc := Document{
		ID:         uuid.NewString(),
		FileName:   name,
		DocType:    format,
		Text:       text,
		UploadTime: s.now(),
		Status:     StatusUploaded,
		SizeBytes:  int64(len(data)),
	}

	if s.Store != nil {
		key, _, _, err := s.Store.Save(ctx, storeNamespace+"/"+doc.ID, name, bytes.NewReader(data))
		if err != nil {
			return Document{}, fmt.Errorf("store original: %w", err)
		}
		doc.StorageKey = key
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		if doc.StorageKey != "" {
			if delErr := s.Store.Delete(context.Background(), doc.StorageKey); delErr != nil {
				telemetry.Warn("document.cleanup_failed", map[string]any{
					"document_id": doc.ID,
					"storage_key": doc.StorageKey,
					"error":       delErr.Error(),
				})
			}
		}
		return Document{}, err
	}

	metrics.IncDocumentUploaded()
	telemetry.Info("document.uploaded", map[string]any{
		"document_id": doc.ID,
		"doc_type":    string(doc.DocType),
		"size_bytes":  doc.SizeBytes,
		"text_chars":  len([]rune(doc.Text)),
	})
	return doc.clone(), nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	if id == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id)
}

// ListAnalyzed returns every document whose latest analysis succeeded.
func (s *Service) ListAnalyzed(ctx context.Context) ([]Document, error) {
	return s.Repo.ListByStatus(ctx, StatusAnalyzed)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
