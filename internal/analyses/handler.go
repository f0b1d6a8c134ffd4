package analyses

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pitchdeck-backend/internal/documents"
	"pitchdeck-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc  *Service
	Docs *documents.Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, docs *documents.Service) *Handler {
	return &Handler{Svc: svc, Docs: docs}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/analyze", h.analyze)
	rg.GET("/analyses", h.listAnalyzed)
	rg.GET("/analyses/export.xlsx", h.exportXLSX)
}

// RegisterLegacyRoutes attaches the dashboard's original unversioned paths.
func (h *Handler) RegisterLegacyRoutes(r gin.IRoutes) {
	r.POST("/analyze/:id", h.analyze)
	r.GET("/docs/", h.listAnalyzed)
}

type analyzeResponse struct {
	DocID          string    `json:"doc_id"`
	AnalysisResult Result    `json:"analysis_result"`
	SchemaVersion  string    `json:"schema_version"`
	AnalyzedAt     time.Time `json:"analyzed_at"`
}

func (h *Handler) analyze(c *gin.Context) {
	id := c.Param("id")
	c.Set("documentId", id)

	outcome, err := h.Svc.Analyze(c.Request.Context(), id)
	if outcome.Transition != "" {
		c.Set("statusTransition", outcome.Transition)
	}
	if err != nil {
		code, status := Classify(err)
		respond.Error(c, status, code, analyzeErrorMessage(code), analyzeErrorDetails(err))
		return
	}

	respond.OK(c, analyzeResponse{
		DocID:          outcome.DocumentID,
		AnalysisResult: outcome.Result,
		SchemaVersion:  outcome.SchemaVersion,
		AnalyzedAt:     outcome.AnalyzedAt,
	})
}

func analyzeErrorMessage(code string) string {
	switch code {
	case ErrorCodeNotFound:
		return "Document not found"
	case ErrorCodeProviderUnavailable:
		return "Analysis failed: language model provider unavailable"
	case ErrorCodeEmptyCompletion:
		return "Analysis failed: language model returned no text"
	case ErrorCodeNoJSONFound:
		return "No JSON found in model output"
	case ErrorCodeMalformedJSON:
		return "JSON parsing failed"
	case ErrorCodeSchemaMismatch:
		return "Model output does not match the analysis schema"
	default:
		return "Analysis failed"
	}
}

func analyzeErrorDetails(err error) any {
	var outErr *OutputError
	if errors.As(err, &outErr) && outErr.Detail != "" {
		return gin.H{"parser": outErr.Detail}
	}
	var mismatch *SchemaMismatchError
	if errors.As(err, &mismatch) {
		return gin.H{"deviations": mismatch.Deviations}
	}
	if errors.Is(err, documents.ErrNotFound) {
		return nil
	}
	return gin.H{"reason": sanitizeError(err)}
}

type startupSummary struct {
	ID             string    `json:"id"`
	FileName       string    `json:"file_name"`
	UploadTime     time.Time `json:"upload_time"`
	AnalysisResult string    `json:"analysis_result"`
	SchemaVersion  string    `json:"schema_version,omitempty"`
}

func (h *Handler) listAnalyzed(c *gin.Context) {
	docs, err := h.Docs.ListAnalyzed(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to list analyzed documents", nil)
		return
	}

	startups := make([]startupSummary, 0, len(docs))
	for _, doc := range docs {
		startups = append(startups, startupSummary{
			ID:             doc.ID,
			FileName:       doc.FileName,
			UploadTime:     doc.UploadTime,
			AnalysisResult: string(doc.Result),
			SchemaVersion:  doc.SchemaVersion,
		})
	}
	respond.OK(c, gin.H{"startups": startups})
}

func (h *Handler) exportXLSX(c *gin.Context) {
	docs, err := h.Docs.ListAnalyzed(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to list analyzed documents", nil)
		return
	}
	data, err := ExportXLSX(docs, h.Svc.Schema)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to build export", nil)
		return
	}
	respond.Attachment(c, "startups.xlsx", xlsxMIME, data)
}
