package documents

import "context"

// DocumentsRepo defines persistence operations for documents. Every method
// touches a single row atomically.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	// UpdateStatusAndResult sets status and, when result is non-nil, the
	// result in the same write. A nil result leaves the stored result as is.
	UpdateStatusAndResult(ctx context.Context, id, status string, result *ResultUpdate) error
	ListByStatus(ctx context.Context, status string) ([]Document, error)
}
