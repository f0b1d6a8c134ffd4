// Package gemini calls Gemini generateContent through the google.golang.org/genai SDK.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"pitchdeck-backend/internal/llm"
	"pitchdeck-backend/internal/shared/telemetry"
)

const (
	defaultModel     = "gemini-2.5-flash"
	defaultThreshold = "BLOCK_NONE"
	defaultTimeout   = 60 * time.Second
	maxErrorBody     = 512
)

var harmCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

// Client implements llm.Client for Gemini models.
type Client struct {
	sdk    *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewClient validates cfg, fills provider defaults and builds the SDK client.
// BaseURL overrides the Generative Language endpoint.
func NewClient(cfg llm.ProviderConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	model := strings.TrimPrefix(strings.TrimSpace(cfg.Model), "models/")
	if model == "" {
		model = defaultModel
	}
	threshold := strings.ToUpper(strings.TrimSpace(cfg.SafetyThreshold))
	if threshold == "" {
		threshold = defaultThreshold
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	gc, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: strings.TrimSpace(cfg.BaseURL)},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &Client{
		sdk:    gc,
		model:  model,
		config: generateConfig(genai.HarmBlockThreshold(threshold), cfg.Temperature),
	}, nil
}

func generateConfig(threshold genai.HarmBlockThreshold, temperature float64) *genai.GenerateContentConfig {
	conf := &genai.GenerateContentConfig{
		SafetySettings: make([]*genai.SafetySetting, 0, len(harmCategories)),
	}
	for _, cat := range harmCategories {
		conf.SafetySettings = append(conf.SafetySettings, &genai.SafetySetting{Category: cat, Threshold: threshold})
	}
	if temperature > 0 {
		conf.Temperature = genai.Ptr(float32(temperature))
	}
	return conf
}

// Complete sends prompt and returns the text of the first candidate.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.sdk.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
	if err != nil {
		return "", llm.Unavailable("gemini generate: %s", llm.TruncateRunes(err.Error(), maxErrorBody))
	}
	if resp == nil {
		return "", fmt.Errorf("%w: gemini response missing", llm.ErrEmptyCompletion)
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", llm.Unavailable("gemini blocked prompt: %s", fb.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: gemini response missing candidates", llm.ErrEmptyCompletion)
	}

	finish := resp.Candidates[0].FinishReason
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: gemini candidate empty (finish_reason=%s)", llm.ErrEmptyCompletion, finish)
	}

	fields := map[string]any{"provider": "gemini", "model": c.model, "finish_reason": string(finish)}
	if u := resp.UsageMetadata; u != nil {
		fields["prompt_tokens"] = u.PromptTokenCount
		fields["completion_tokens"] = u.CandidatesTokenCount
		fields["total_tokens"] = u.TotalTokenCount
	}
	telemetry.Debug("llm.response", fields)
	return text, nil
}

var _ llm.Client = (*Client)(nil)
