// Package vision calls a vision-capable language model to identify the
// physical items visible in a photo of an open box.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-3-haiku-20240307"
	apiVersion     = "2023-06-01"
	maxTokens      = 1000
)

const itemsPrompt = "Identify items in this image that would be packed in a moving box. " +
	"Only include actual physical items. Format your response as a plain list with each " +
	"item on a new line starting with an asterisk (*). Don't include any other text, " +
	"explanations or comments. Just the list of items."

type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

type Option func(*Client)

// WithBaseURL points the client at a different API endpoint, used by
// tests and proxy setups.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    defaultBaseURL,
		model:      defaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// DetectItems sends the JPEG to the model and returns the item names it
// lists. The API key is passed per call because it lives in the
// application settings and can change at runtime.
func (c *Client) DetectItems(ctx context.Context, apiKey string, imageJPEG []byte) ([]string, error) {
	payload := messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{
					Type: "image",
					Source: &imageSource{
						Type:      "base64",
						MediaType: "image/jpeg",
						Data:      base64.StdEncoding.EncodeToString(imageJPEG),
					},
				},
				{Type: "text", Text: itemsPrompt},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read vision response: %w", err)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode vision response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, fmt.Errorf("vision API %s: %s", parsed.Error.Type, parsed.Error.Message)
		}
		return nil, fmt.Errorf("vision API returned status %d", resp.StatusCode)
	}

	for _, block := range parsed.Content {
		if block.Type == "text" {
			return ParseItemList(block.Text), nil
		}
	}

	return nil, nil
}

// ParseItemList turns the model's bulleted response into bare item
// names, tolerating "-" bullets and blank lines.
func ParseItemList(text string) []string {
	lines := strings.Split(text, "\n")
	items := make([]string, 0, len(lines))

	for _, line := range lines {
		item := strings.TrimSpace(line)
		item = strings.TrimPrefix(item, "*")
		item = strings.TrimPrefix(item, "-")
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}

	return items
}
