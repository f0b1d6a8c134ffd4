package documents

import (
	"encoding/json"
	"time"
)

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	DocID    string `json:"doc_id"`
	FileName string `json:"file_name"`
	DocType  string `json:"doc_type"`
}

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocID          string          `json:"doc_id"`
	FileName       string          `json:"file_name"`
	DocType        string          `json:"doc_type"`
	UploadTime     time.Time       `json:"upload_time"`
	Text           string          `json:"text"`
	AnalysisStatus string          `json:"analysis_status"`
	AnalysisResult json.RawMessage `json:"analysis_result"`
	SchemaVersion  string          `json:"schema_version,omitempty"`
	AnalyzedAt     *time.Time      `json:"analyzed_at,omitempty"`
}

func toUploadResponse(doc Document) UploadResponse {
	return UploadResponse{
		DocID:    doc.ID,
		FileName: doc.FileName,
		DocType:  string(doc.DocType),
	}
}

func toResponse(doc Document) DocumentResponse {
	result := doc.Result
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	return DocumentResponse{
		DocID:          doc.ID,
		FileName:       doc.FileName,
		DocType:        string(doc.DocType),
		UploadTime:     doc.UploadTime,
		Text:           doc.Text,
		AnalysisStatus: doc.Status,
		AnalysisResult: result,
		SchemaVersion:  doc.SchemaVersion,
		AnalyzedAt:     doc.AnalyzedAt,
	}
}
