package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"pitchdeck-backend/internal/shared/config"
	"pitchdeck-backend/internal/shared/server"
)

func newTestRouter(t *testing.T, maxUpload int64) (*gin.Engine, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := NewMemoryRepo()
	h := NewHandler(&Service{Repo: repo, Store: newMemStore()}, maxUpload)
	r := server.NewRouter(server.RouterDeps{
		Config:   config.Config{Env: "test", CORSAllowOrigin: []string{"http://localhost:3000"}},
		Handlers: []server.RouteRegistrar{h},
	})
	return r, repo
}

func multipartBody(t *testing.T, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fw, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestHandlerUploadAndFetch(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	body, contentType := multipartBody(t, "deck.pptx", buildPPTX(t, "Acme", "Seed"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.DocID == "" || created.FileName != "deck.pptx" || created.DocType != "pptx" {
		t.Fatalf("unexpected upload response: %+v", created)
	}

	getResp := httptest.NewRecorder()
	router.ServeHTTP(getResp, httptest.NewRequest(http.MethodGet, "/doc/"+created.DocID, nil))
	if getResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.Code)
	}
	var fetched map[string]any
	if err := json.NewDecoder(getResp.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fetched["text"] != "Acme\nSeed" || fetched["analysis_status"] != StatusUploaded {
		t.Fatalf("unexpected document body: %v", fetched)
	}
	if v, ok := fetched["analysis_result"]; !ok || v != nil {
		t.Fatalf("expected null analysis_result, got %v", v)
	}
}

func TestHandlerUploadUnsupportedFormat(t *testing.T) {
	router, repo := newTestRouter(t, 0)

	body, contentType := multipartBody(t, "notes.txt", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/upload_deck/", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error.Code != "unsupported_format" {
		t.Fatalf("unexpected error code %q", payload.Error.Code)
	}
	if docs, _ := repo.ListByStatus(context.Background(), StatusUploaded); len(docs) != 0 {
		t.Fatalf("expected no documents, got %d", len(docs))
	}
}

func TestHandlerUploadTooLarge(t *testing.T) {
	router, _ := newTestRouter(t, 512)

	body, contentType := multipartBody(t, "deck.pdf", bytes.Repeat([]byte("x"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHandlerGetNotFound(t *testing.T) {
	router, _ := newTestRouter(t, 0)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/documents/missing", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
