package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAI is the secondary provider, kept behind the same interface so
// the engine stays provider-independent.
type OpenAI struct {
	apiKey string
	model  string
	client *http.Client
}

func NewOpenAI(apiKey string) *OpenAI {
	return NewOpenAIWithModel(apiKey, "gpt-4o-mini")
}

func NewOpenAIWithModel(apiKey, model string) *OpenAI {
	return &OpenAI{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// GetModel returns the model this client targets.
func (o *OpenAI) GetModel() string {
	return o.model
}

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	return o.CompleteWithOptions(ctx, prompt, DefaultOptions())
}

func (o *OpenAI) CompleteWithOptions(ctx context.Context, prompt string, opts Options) (string, error) {
	if o.apiKey == "" {
		return "", &ProviderError{Detail: "OpenAI API key not configured"}
	}

	body := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]string{{
			"role":    "user",
			"content": prompt,
		}},
		"max_tokens":  opts.MaxOutputTokens,
		"temperature": opts.Temperature,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.openai.com/v1/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", o.apiKey))

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read openai response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", classifyRateLimit(string(respBytes))
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Status: resp.StatusCode, Detail: truncateBody(respBytes)}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("parse openai response: %w", err)
	}
	if parsed.Error.Message != "" {
		if parsed.Error.Type == "insufficient_quota" {
			return "", fmt.Errorf("%w: %s", ErrQuotaExceeded, parsed.Error.Message)
		}
		return "", &ProviderError{Detail: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	if parsed.Choices[0].FinishReason == "content_filter" {
		return "", ErrSafetyBlocked
	}

	out := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
