package analyses

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"pitchdeck-backend/internal/documents"
	"pitchdeck-backend/internal/extract"
	"pitchdeck-backend/internal/llm"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type countingLLM struct {
	calls atomic.Int32
	fn    func(ctx context.Context, call int) (string, error)
}

func (c *countingLLM) Complete(ctx context.Context, prompt string) (string, error) {
	n := int(c.calls.Add(1))
	return c.fn(ctx, n)
}

func replyWith(text string) *countingLLM {
	return &countingLLM{fn: func(context.Context, int) (string, error) { return text, nil }}
}

func failWith(err error) *countingLLM {
	return &countingLLM{fn: func(context.Context, int) (string, error) { return "", err }}
}

func seedDocument(t *testing.T, repo *documents.MemoryRepo, id, text string) documents.Document {
	t.Helper()
	doc := documents.Document{
		ID:         id,
		FileName:   id + ".pdf",
		DocType:    extract.FormatPDF,
		Text:       text,
		UploadTime: fixedNow.Add(-time.Hour),
		Status:     documents.StatusUploaded,
	}
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("seed document: %v", err)
	}
	return doc
}

func newTestService(t *testing.T, repo *documents.MemoryRepo, client llm.Client, version string) *Service {
	t.Helper()
	schema, ok := SchemaFor(version)
	if !ok {
		t.Fatalf("schema %s not registered", version)
	}
	return &Service{
		Docs:    repo,
		LLM:     client,
		Schema:  schema,
		Timeout: 2 * time.Second,
		Now:     func() time.Time { return fixedNow },
	}
}

// completeV1 is a compliant v1 completion for Acme.
func completeV1(score float64) string {
	schema, _ := SchemaFor("v1")
	result := map[string]any{}
	for _, name := range schema.StringFieldNames() {
		result[name] = NotProvided
	}
	result["Company Name"] = "Acme"
	result["Overall Score"] = score
	b, _ := json.Marshal(result)
	return string(b)
}
