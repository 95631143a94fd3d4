package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObject(t *testing.T) {
	obj, err := ParseObject("```json\n{\"dailyCalories\": 2100}\n```")
	require.NoError(t, err)
	assert.Equal(t, 2100.0, obj["dailyCalories"])

	_, err = ParseObject("Sure! Here is your plan.")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Sure! Here is your plan.", perr.RawText)
	assert.NotEmpty(t, perr.Detail)

	_, err = ParseObject("null")
	require.ErrorAs(t, err, &perr)
}

func TestGeminiClientGenerate(t *testing.T) {
	schema := Schema{"type": "OBJECT", "properties": map[string]any{"dailyCalories": map[string]any{"type": "NUMBER"}}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
		assert.Equal(t, "OBJECT", req.GenerationConfig.ResponseSchema["type"])
		assert.Equal(t, "hello", req.Contents[0].Parts[0].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"dailyCalories\": 1950}"}]}}]}`))
	}))
	defer server.Close()

	c := NewGeminiClient("key-1", server.URL+"/v1beta/", "models/gemini-test")
	obj, err := c.Generate(context.Background(), "hello", schema)
	require.NoError(t, err)
	assert.Equal(t, 1950.0, obj["dailyCalories"])
}

func TestGeminiClientErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
		}))
		defer server.Close()

		_, err := NewGeminiClient("k", server.URL, "m").Generate(context.Background(), "p", nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	})

	t.Run("unparseable text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"I cannot help"}]}}]}`))
		}))
		defer server.Close()

		_, err := NewGeminiClient("k", server.URL, "m").Generate(context.Background(), "p", nil)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "I cannot help", perr.RawText)
	})
}
