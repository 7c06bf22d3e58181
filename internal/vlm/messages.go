package vlm

import "encoding/json"

// chatRequest is the JSON payload sent to the chat completions endpoint.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// chatMessage represents a single chat message with content blocks.
type chatMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart is one block of user content, either text or an inline image.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL references an image by URL or data URI.
type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// TextPart builds a text content block.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart builds an inline image content block tagged for low-detail
// viewing to keep the vision token cost bounded.
func ImagePart(dataURI string) ContentPart {
	return ContentPart{
		Type:     "image_url",
		ImageURL: &ImageURL{URL: dataURI, Detail: "low"},
	}
}

// ResponseFormat names a strict JSON schema the model output must satisfy.
type ResponseFormat struct {
	Name   string
	Schema string
}

// responseFormat is the wire shape of a json_schema response format.
type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

// jsonSchemaFormat is the schema envelope for constrained decoding.
type jsonSchemaFormat struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

// chatResponse is the JSON payload returned by the endpoint.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
	Error   *apiError    `json:"error,omitempty"`
}

// chatChoice is one completion candidate.
type chatChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// apiError is the error envelope some providers return with 200 responses.
type apiError struct {
	Message string `json:"message"`
}

// Usage records token consumption reported for one completion call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
