// Package object stores the original uploaded decks.
package object

import (
	"context"
	"io"
)

// ObjectStore keeps uploaded files under a namespace such as "decks/<id>".
// Save returns the key later passed to Open and Delete.
type ObjectStore interface {
	Save(ctx context.Context, namespace string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
