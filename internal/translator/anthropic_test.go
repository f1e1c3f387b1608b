package translator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTranslate_SendsMessagesRequest(t *testing.T) {
	var gotPath, gotKey, gotVersion, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"hola"}]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(ClientConfig{
		BaseURL:   srv.URL,
		APIKey:    "sk-test",
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 4096,
		Prompt:    "Translate the document.",
	})

	out, err := c.Translate(context.Background(), "Hello world.", "es")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "hola" {
		t.Errorf("Translate = %q, want %q", out, "hola")
	}

	if gotPath != "/messages" {
		t.Errorf("path = %q, want /messages", gotPath)
	}
	if gotKey != "sk-test" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotVersion != "2023-06-01" {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}

	var req anthropicRequest
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.Model != "claude-3-5-sonnet-20241022" {
		t.Errorf("model = %q", req.Model)
	}
	if req.MaxTokens != 4096 {
		t.Errorf("max_tokens = %d", req.MaxTokens)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v, want one user message", req.Messages)
	}
	content := req.Messages[0].Content
	if !strings.HasPrefix(content, "Translate the document.") {
		t.Errorf("content does not start with the prompt: %q", content)
	}
	if !strings.Contains(content, "\n\nTarget language: es\n\n") {
		t.Errorf("content missing target language line: %q", content)
	}
	if !strings.HasSuffix(content, "Markdown content to translate:\n\nHello world.") {
		t.Errorf("content does not end with the document: %q", content)
	}
}

func TestTranslate_TrimsTrailingSlashOnBaseURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(ClientConfig{BaseURL: srv.URL + "/", APIKey: "k", Model: "m", MaxTokens: 1})
	if _, err := c.Translate(context.Background(), "x", "es"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if gotPath != "/messages" {
		t.Errorf("path = %q, want /messages", gotPath)
	}
}

func TestTranslate_NonOKStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(ClientConfig{BaseURL: srv.URL, APIKey: "k", Model: "m", MaxTokens: 1})
	_, err := c.Translate(context.Background(), "x", "es")
	if err == nil {
		t.Fatal("Translate succeeded on HTTP 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error = %v, want the status code in it", err)
	}
}

func TestTranslate_ErrorPayloadIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(ClientConfig{BaseURL: srv.URL, APIKey: "k", Model: "m", MaxTokens: 1})
	_, err := c.Translate(context.Background(), "x", "es")
	if err == nil || !strings.Contains(err.Error(), "invalid x-api-key") {
		t.Errorf("error = %v, want the API message", err)
	}
}

func TestTranslate_SkipsNonTextBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"tool_use"},{"type":"text","text":"answer"}]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(ClientConfig{BaseURL: srv.URL, APIKey: "k", Model: "m", MaxTokens: 1})
	out, err := c.Translate(context.Background(), "x", "es")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "answer" {
		t.Errorf("Translate = %q, want %q", out, "answer")
	}
}

func TestTranslate_EmptyContentIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(ClientConfig{BaseURL: srv.URL, APIKey: "k", Model: "m", MaxTokens: 1})
	if _, err := c.Translate(context.Background(), "x", "es"); err == nil {
		t.Error("Translate succeeded with no text content")
	}
}
