package documents

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Document),
	}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[doc.ID]; exists {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	r.data[doc.ID] = doc.clone()
	return nil
}

// GetByID returns a copy of the stored document.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc.clone(), nil
}

// UpdateStatusAndResult applies status and result under one lock.
func (r *MemoryRepo) UpdateStatusAndResult(ctx context.Context, id, status string, result *ResultUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ValidStatus(status) {
		return fmt.Errorf("%w: status %q", ErrInvalidInput, status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	doc.Status = status
	if result != nil {
		analyzedAt := result.AnalyzedAt
		doc.Result = result.Result
		doc.SchemaVersion = result.SchemaVersion
		doc.AnalyzedAt = &analyzedAt
	}
	r.data[id] = doc.clone()
	return nil
}

// ListByStatus returns documents with the given status, newest upload first.
func (r *MemoryRepo) ListByStatus(ctx context.Context, status string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	docs := make([]Document, 0, len(r.data))
	for _, doc := range r.data {
		if doc.Status == status {
			docs = append(docs, doc.clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UploadTime.Equal(docs[j].UploadTime) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UploadTime.After(docs[j].UploadTime)
	})
	return docs, nil
}
