// Package llm calls an OpenAI-compatible chat-completions server for
// digest generation.
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

	"NewsCapsule/internal/config"
	"NewsCapsule/internal/ports"
)

// Client implements ports.Generator against a local or remote model server.
type Client struct {
	endpoint    string
	model       string
	apiKey      string
	maxTokens   int
	temperature float64
	http        *http.Client
}

var _ ports.Generator = (*Client)(nil)

// NewClient builds a generator client from configuration.
func NewClient(cfg config.LLMConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &Client{
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		http:        &http.Client{Timeout: timeout},
	}
}

// Generate posts the prompt as a single user message. Transport and status
// failures surface as errors; a successful response in an unrecognized
// shape decodes to the empty string rather than an error.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("generator endpoint not configured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
		"stream":      false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal generation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("generator error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generation response: %w", err)
	}

	return DecodeContent(payload), nil
}

// DecodeContent extracts generated text from the known response shapes,
// tried in priority order: chat choices with a message, completion choices
// with bare text, then single-text-field payloads. Anything else decodes
// to the empty string.
func DecodeContent(payload []byte) string {
	var chat struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			Text string `json:"text"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &chat); err == nil && len(chat.Choices) > 0 {
		if content := strings.TrimSpace(chat.Choices[0].Message.Content); content != "" {
			return content
		}
		if text := strings.TrimSpace(chat.Choices[0].Text); text != "" {
			return text
		}
	}

	var single struct {
		Text     string `json:"text"`
		Content  string `json:"content"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(payload, &single); err == nil {
		for _, candidate := range []string{single.Text, single.Content, single.Response} {
			if content := strings.TrimSpace(candidate); content != "" {
				return content
			}
		}
	}

	return ""
}
