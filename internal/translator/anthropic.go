package translator

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

// DefaultPrompt is the instruction block sent ahead of every document when
// no prompt file is configured.
const DefaultPrompt = `You are translating a markdown document. Translate every piece of human-readable prose into the target language. Keep all markdown structure exactly as it is: headings keep their level, links keep their targets, code blocks and inline code stay untranslated, and metadata keys are never translated. Return only the translated document, with no commentary before or after it.`

// DefaultBaseURL is the production Anthropic API root.
const DefaultBaseURL = "https://api.anthropic.com/v1"

// ClientConfig carries the knobs for one AnthropicClient.
type ClientConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Prompt    string
	Timeout   time.Duration
}

// AnthropicClient calls the Anthropic messages API. It performs exactly one
// request per Translate call; retries are the caller's business, via the
// ledger.
type AnthropicClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	prompt     string
}

var _ Translator = (*AnthropicClient)(nil)

// NewAnthropicClient creates a client. Zero-value fields fall back to the
// package defaults.
func NewAnthropicClient(cfg ClientConfig) *AnthropicClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &AnthropicClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		prompt:     cfg.Prompt,
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

// Translate sends one messages request and returns the text of the reply.
func (c *AnthropicClient) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	userPrompt := c.prompt +
		"\n\nTarget language: " + targetLanguage +
		"\n\nMarkdown content to translate:\n\n" + text

	payload, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return "", fmt.Errorf("translator: encode request: %w", err)
	}

	url := strings.TrimRight(c.baseURL, "/") + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("translator: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translator: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("translator: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translator: API returned status %d: %s", resp.StatusCode, truncate(string(body), 500))
	}
	return extractText(body)
}

// extractText pulls the first text block out of a messages API response.
func extractText(body []byte) (string, error) {
	var raw struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Error *struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("translator: decode response: %w", err)
	}
	if raw.Error != nil {
		return "", fmt.Errorf("translator: API error: %s", raw.Error.Message)
	}
	for _, block := range raw.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("translator: no text content in response")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
