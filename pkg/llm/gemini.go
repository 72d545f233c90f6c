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

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var geminiSafetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// Gemini talks to the Google generative-language API.
type Gemini struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewGemini(apiKey string) *Gemini {
	return NewGeminiWithModel(apiKey, "gemini-2.0-flash")
}

func NewGeminiWithModel(apiKey, model string) *Gemini {
	return &Gemini{
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// GetModel returns the model this client targets.
func (g *Gemini) GetModel() string {
	return g.model
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	return g.CompleteWithOptions(ctx, prompt, DefaultOptions())
}

func (g *Gemini) CompleteWithOptions(ctx context.Context, prompt string, opts Options) (string, error) {
	if g.apiKey == "" {
		return "", &ProviderError{Detail: "Gemini API key not configured"}
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxOutputTokens,
		},
	}
	if opts.BlockThreshold != "" {
		for _, cat := range geminiSafetyCategories {
			reqBody.SafetySettings = append(reqBody.SafetySettings, geminiSafetySetting{
				Category:  cat,
				Threshold: opts.BlockThreshold,
			})
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", classifyRateLimit(string(respBytes))
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Status: resp.StatusCode, Detail: truncateBody(respBytes)}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}
	if parsed.Error != nil {
		if parsed.Error.Status == "RESOURCE_EXHAUSTED" {
			return "", fmt.Errorf("%w: %s", ErrQuotaExceeded, parsed.Error.Message)
		}
		return "", &ProviderError{Status: parsed.Error.Code, Detail: parsed.Error.Message}
	}
	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", ErrSafetyBlocked, parsed.PromptFeedback.BlockReason)
	}
	if len(parsed.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	if parsed.Candidates[0].FinishReason == "SAFETY" {
		return "", ErrSafetyBlocked
	}

	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// classifyRateLimit splits a 429 into the transient and the daily-cap
// case. Gemini reports exhausted daily quota as RESOURCE_EXHAUSTED with
// a quota marker in the body; a plain 429 is worth retrying later.
func classifyRateLimit(body string) error {
	lower := strings.ToLower(body)
	if strings.Contains(lower, "quota") || strings.Contains(body, "RESOURCE_EXHAUSTED") {
		return ErrQuotaExceeded
	}
	return ErrRateLimited
}

func truncateBody(body []byte) string {
	const max = 512
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
