// Package llm talks to the hosted structured-generation model.
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

// Schema is an OpenAPI-style response schema as accepted by Gemini.
type Schema map[string]any

// Generator produces a JSON object for a prompt, constrained by schema.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema Schema) (map[string]any, error)
}

// ParseError is returned when the model answered with text that is not a
// JSON object.
type ParseError struct {
	Detail  string
	RawText string
}

func (e *ParseError) Error() string {
	return "failed to parse AI response: " + e.Detail
}

// APIError is a non-200 reply from the model endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// GeminiClient calls the generateContent REST endpoint.
type GeminiClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ Generator = (*GeminiClient)(nil)

// NewGeminiClient creates a client for model under baseURL
// (e.g. https://generativelanguage.googleapis.com/v1beta).
func NewGeminiClient(apiKey, baseURL, model string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   strings.TrimPrefix(model, "models/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
	ResponseSchema   Schema `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, schema Schema) (map[string]any, error) {
	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	if schema != nil {
		reqBody.GenerationConfig = generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var text strings.Builder
	if len(result.Candidates) > 0 {
		for _, p := range result.Candidates[0].Content.Parts {
			text.WriteString(p.Text)
		}
	}
	return ParseObject(text.String())
}

// ParseObject strips markdown code fences and decodes a JSON object.
func ParseObject(text string) (map[string]any, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, &ParseError{Detail: err.Error(), RawText: text}
	}
	if obj == nil {
		return nil, &ParseError{Detail: "response is not a JSON object", RawText: text}
	}
	return obj, nil
}
