package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"pitchdeck-backend/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(llm.ProviderConfig{APIKey: "sk-test", Model: "gpt-test", BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestCompleteSendsPromptAndReturnsContent(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"Company Name\":\"Acme\"}"}}],"usage":{"total_tokens":12}}`))
	})

	out, err := c.Complete(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != `{"Company Name":"Acme"}` {
		t.Fatalf("unexpected content: %q", out)
	}
	if got.Model != "gpt-test" || len(got.Messages) != 1 || got.Messages[0].Content != "analyze this" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %q", got.ResponseFormat.Type)
	}
}

func TestCompleteErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"message":"boom","type":"server_error"}}`, want: llm.ErrProviderUnavailable},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `not json`, want: llm.ErrProviderUnavailable},
		{name: "error body on 200", status: http.StatusOK, body: `{"error":{"message":"quota","type":"insufficient_quota"}}`, want: llm.ErrProviderUnavailable},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, want: llm.ErrEmptyCompletion},
		{name: "blank content", status: http.StatusOK, body: `{"choices":[{"message":{"role":"assistant","content":"  "}}]}`, want: llm.ErrEmptyCompletion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Complete(context.Background(), "p")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCompleteCapsErrorBodyOnRuneBoundary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("é", 600)))
	})

	_, err := c.Complete(context.Background(), "p")
	if !errors.Is(err, llm.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	msg := err.Error()
	if !utf8.ValidString(msg) {
		t.Fatalf("error message is not valid utf-8: %q", msg)
	}
	if strings.Count(msg, "é") != maxErrorBody {
		t.Fatalf("expected %d runes of body, got %d", maxErrorBody, strings.Count(msg, "é"))
	}
}

func TestCompleteDeadlineIsUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Complete(ctx, "p")
	if !errors.Is(err, llm.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(llm.ProviderConfig{}); err == nil {
		t.Fatal("expected error without api key")
	}
}
