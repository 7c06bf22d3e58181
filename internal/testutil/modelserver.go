package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// ModelCall summarizes one chat completion request received by the stub.
type ModelCall struct {
	Model      string
	SchemaName string
	System     string
	UserText   string
	HasImage   bool
}

// StubCompletion is the scripted reply for one model call.
type StubCompletion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	StatusCode       int
}

// ModelServer is a stub OpenAI-compatible chat completions server.
type ModelServer struct {
	*httptest.Server
	calls atomic.Int64
}

// Calls returns how many completion requests the stub has served.
func (s *ModelServer) Calls() int {
	return int(s.calls.Load())
}

// NewModelServer starts a stub model API whose replies are scripted by
// respond. The server is closed with the test.
func NewModelServer(t testing.TB, respond func(call ModelCall) StubCompletion) *ModelServer {
	t.Helper()
	server := &ModelServer{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.calls.Add(1)
		call, err := parseModelCall(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reply := respond(call)
		if reply.StatusCode != 0 && reply.StatusCode != http.StatusOK {
			w.WriteHeader(reply.StatusCode)
			_, _ = w.Write([]byte(`{"error": {"message": "stub failure"}}`))
			return
		}
		payload := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": reply.Content}},
			},
			"usage": map[string]int{
				"prompt_tokens":     reply.PromptTokens,
				"completion_tokens": reply.CompletionTokens,
				"total_tokens":      reply.TotalTokens,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

// parseModelCall extracts the interesting parts of a completion request.
func parseModelCall(r *http.Request) (ModelCall, error) {
	var request struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
		ResponseFormat struct {
			JSONSchema struct {
				Name string `json:"name"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return ModelCall{}, err
	}
	call := ModelCall{
		Model:      request.Model,
		SchemaName: request.ResponseFormat.JSONSchema.Name,
	}
	for _, message := range request.Messages {
		var texts []string
		for _, part := range message.Content {
			switch part.Type {
			case "text":
				texts = append(texts, part.Text)
			case "image_url":
				call.HasImage = true
			}
		}
		joined := strings.Join(texts, "\n")
		switch message.Role {
		case "system":
			call.System = joined
		case "user":
			call.UserText = joined
		}
	}
	return call, nil
}
