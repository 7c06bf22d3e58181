package vlm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// defaultBaseURL is the default OpenAI-compatible API base URL.
const defaultBaseURL = "https://api.openai.com/v1"

// defaultModel is the model used when none is configured.
const defaultModel = "gpt-4o-mini"

// HTTPDoer abstracts HTTP clients used by the model client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls an OpenAI-compatible chat completions API.
type Client struct {
	APIKey  string
	BaseURL string
	Model   string
	HTTP    HTTPDoer
}

// ClientFromEnv builds a client using environment configuration.
func ClientFromEnv(client HTTPDoer) (*Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("LLM_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}
	model := strings.TrimSpace(os.Getenv("LLM_MODEL"))
	baseURL := strings.TrimSpace(os.Getenv("LLM_BASE_URL"))
	return NewClient(model, apiKey, baseURL, client)
}

// NewClient constructs a model client with explicit settings.
func NewClient(model, apiKey, baseURL string, client HTTPDoer) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		HTTP:    client,
	}, nil
}

// CompletionRequest describes one schema-constrained completion call.
type CompletionRequest struct {
	System string
	User   []ContentPart
	Format ResponseFormat
}

// Completion carries the structured content and usage of one model call.
type Completion struct {
	Content string
	Usage   Usage
}

// Complete sends a deterministic (temperature zero) chat completion request
// and returns the structured message content with token usage.
func (c *Client) Complete(ctx context.Context, request CompletionRequest) (Completion, error) {
	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(request.System) != "" {
		messages = append(messages, chatMessage{
			Role:    "system",
			Content: []ContentPart{TextPart(request.System)},
		})
	}
	if len(request.User) == 0 {
		return Completion{}, fmt.Errorf("user content is required")
	}
	messages = append(messages, chatMessage{Role: "user", Content: request.User})

	requestBody := chatRequest{
		Model:       c.Model,
		Messages:    messages,
		Temperature: 0,
	}
	if request.Format.Name != "" {
		requestBody.ResponseFormat = &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaFormat{
				Name:   request.Format.Name,
				Strict: true,
				Schema: json.RawMessage(request.Format.Schema),
			},
		}
	}
	payload, err := json.Marshal(requestBody)
	if err != nil {
		return Completion{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Completion{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Completion{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Completion{}, fmt.Errorf("model api error: %s", strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Completion{}, fmt.Errorf("parse response: %w", err)
	}
	if parsed.Error != nil {
		return Completion{}, fmt.Errorf("model api error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return Completion{}, fmt.Errorf("empty response from model")
	}
	return Completion{
		Content: parsed.Choices[0].Message.Content,
		Usage:   parsed.Usage,
	}, nil
}
