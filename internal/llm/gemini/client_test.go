package gemini

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

// wireRequest mirrors the generateContent body the SDK posts.
type wireRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	SafetySettings []struct {
		Category  string `json:"category"`
		Threshold string `json:"threshold"`
	} `json:"safetySettings"`
	GenerationConfig *struct {
		Temperature *float64 `json:"temperature"`
	} `json:"generationConfig"`
}

func newTestClient(t *testing.T, cfg llm.ProviderConfig, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL
	if cfg.APIKey == "" {
		cfg.APIKey = "g-key"
	}
	cfg.Timeout = 2 * time.Second
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestCompleteRequestShape(t *testing.T) {
	var got wireRequest
	c := newTestClient(t, llm.ProviderConfig{}, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "g-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeJSON(w, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"Overall "},{"text":"Score\": 7}"}]},"finishReason":"STOP"}]}`)
	})

	out, err := c.Complete(context.Background(), "deck prompt")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != `{"Overall Score": 7}` {
		t.Fatalf("unexpected text: %q", out)
	}
	if len(got.Contents) != 1 || len(got.Contents[0].Parts) != 1 || got.Contents[0].Parts[0].Text != "deck prompt" {
		t.Fatalf("unexpected contents: %+v", got.Contents)
	}
	if len(got.SafetySettings) != 4 {
		t.Fatalf("expected 4 safety settings, got %d", len(got.SafetySettings))
	}
	for _, s := range got.SafetySettings {
		if s.Threshold != "BLOCK_NONE" {
			t.Fatalf("unexpected threshold %+v", s)
		}
	}
	if got.GenerationConfig != nil && got.GenerationConfig.Temperature != nil {
		t.Fatalf("expected no temperature at zero, got %v", *got.GenerationConfig.Temperature)
	}
}

func TestCompleteUsesConfiguredThresholdAndModel(t *testing.T) {
	var got wireRequest
	c := newTestClient(t, llm.ProviderConfig{Model: "models/gemini-2.5-pro", SafetyThreshold: "block_only_high", Temperature: 0.25}, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-pro:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"{}"}]}}]}`)
	})

	if _, err := c.Complete(context.Background(), "p"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(got.SafetySettings) == 0 || got.SafetySettings[0].Threshold != "BLOCK_ONLY_HIGH" {
		t.Fatalf("unexpected safety settings %+v", got.SafetySettings)
	}
	if got.GenerationConfig == nil || got.GenerationConfig.Temperature == nil || *got.GenerationConfig.Temperature != 0.25 {
		t.Fatalf("expected temperature 0.25, got %+v", got.GenerationConfig)
	}
}

func TestCompleteErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "quota", status: http.StatusTooManyRequests, body: `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, want: llm.ErrProviderUnavailable},
		{name: "bad gateway", status: http.StatusBadGateway, body: `<html>`, want: llm.ErrProviderUnavailable},
		{name: "blocked", status: http.StatusOK, body: `{"promptFeedback":{"blockReason":"SAFETY"}}`, want: llm.ErrProviderUnavailable},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`, want: llm.ErrEmptyCompletion},
		{name: "blank text", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[{"text":" "}]},"finishReason":"MAX_TOKENS"}]}`, want: llm.ErrEmptyCompletion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, llm.ProviderConfig{}, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.Complete(context.Background(), "p")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCompleteCapsErrorTextOnRuneBoundary(t *testing.T) {
	c := newTestClient(t, llm.ProviderConfig{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"error":{"code":500,"message":"`+strings.Repeat("é", 700)+`","status":"INTERNAL"}}`)
	})

	_, err := c.Complete(context.Background(), "p")
	if !errors.Is(err, llm.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	msg := err.Error()
	if !utf8.ValidString(msg) {
		t.Fatalf("error message is not valid utf-8: %q", msg)
	}
	if n := strings.Count(msg, "é"); n == 0 || n > maxErrorBody {
		t.Fatalf("expected between 1 and %d runes of provider text, got %d", maxErrorBody, n)
	}
}

func TestCompleteTimeoutIsUnavailable(t *testing.T) {
	c := newTestClient(t, llm.ProviderConfig{}, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Complete(ctx, "p"); !errors.Is(err, llm.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(llm.ProviderConfig{Model: "gemini-2.5-flash"}); err == nil {
		t.Fatal("expected error without api key")
	}
}
