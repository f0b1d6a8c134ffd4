package documents

import (
	"encoding/json"
	"time"

	"pitchdeck-backend/internal/extract"
)

const (
	StatusUploaded = "uploaded"
	StatusAnalyzed = "analyzed"
	StatusError    = "error"
)

// Document is an uploaded deck and the outcome of its latest analysis.
type Document struct {
	ID            string
	FileName      string
	DocType       extract.Format
	Text          string
	UploadTime    time.Time
	Status        string
	Result        json.RawMessage
	SchemaVersion string
	AnalyzedAt    *time.Time
	StorageKey    string
	SizeBytes     int64
}

// ResultUpdate carries a successful analysis into the store.
type ResultUpdate struct {
	Result        json.RawMessage
	SchemaVersion string
	AnalyzedAt    time.Time
}

// ValidStatus reports whether s is a known analysis status.
func ValidStatus(s string) bool {
	switch s {
	case StatusUploaded, StatusAnalyzed, StatusError:
		return true
	}
	return false
}

func (d Document) clone() Document {
	if d.Result != nil {
		d.Result = append(json.RawMessage(nil), d.Result...)
	}
	if d.AnalyzedAt != nil {
		t := *d.AnalyzedAt
		d.AnalyzedAt = &t
	}
	return d
}
