package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"examsolver/internal/solver"
	"examsolver/internal/vlm"
)

// stubModel returns canned completions keyed by schema name.
type stubModel struct {
	err error
}

func (m *stubModel) Complete(ctx context.Context, request vlm.CompletionRequest) (vlm.Completion, error) {
	if m.err != nil {
		return vlm.Completion{}, m.err
	}
	content := `{"option_index": 1}`
	if request.Format.Name == "text_answer" {
		content = `{"text_answer": "42"}`
	}
	return vlm.Completion{
		Content: content,
		Usage:   vlm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func withStubModel(t *testing.T, model solver.ModelClient) {
	t.Helper()
	original := newModelClient
	newModelClient = func() (solver.ModelClient, error) { return model, nil }
	t.Cleanup(func() { newModelClient = original })
}

func writeQuestionsFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleQuestions = `{
  "version": 1,
  "questions": [
    {"question_id": "q1", "question_type": "mcq", "question_text": "Pick one.", "options": ["a", "b"]},
    {"question_id": "q2", "question_type": "numerical", "question_text": "How many?"}
  ]
}`

func TestSolveWritesResults(t *testing.T) {
	withStubModel(t, &stubModel{})
	path := writeQuestionsFile(t, sampleQuestions)
	outPath := filepath.Join(t.TempDir(), "results.json")

	var stdout, stderr bytes.Buffer
	code := Run([]string{"solve", "--questions", path, "--ui", "plain", "-o", outPath}, &stdout, &stderr)
	if code != ExitOK {
		t.Fatalf("exit = %d, stderr = %q", code, stderr.String())
	}

	payload, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var result struct {
		Results []struct {
			QuestionID string `json:"question_id"`
		} `json:"results"`
		TokenSummary struct {
			TotalQuestions int `json:"total_questions"`
			TotalTokens    int `json:"total_tokens"`
		} `json:"token_summary"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		t.Fatalf("results not valid JSON: %v", err)
	}
	if len(result.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(result.Results))
	}
	if result.Results[0].QuestionID != "q1" || result.Results[1].QuestionID != "q2" {
		t.Fatalf("results out of order: %+v", result.Results)
	}
	if result.TokenSummary.TotalQuestions != 2 || result.TokenSummary.TotalTokens != 30 {
		t.Fatalf("summary = %+v", result.TokenSummary)
	}
	if !strings.Contains(stderr.String(), "Solved 2 questions (0 failed)") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestSolveStdoutWhenNoOutputPath(t *testing.T) {
	withStubModel(t, &stubModel{})
	path := writeQuestionsFile(t, sampleQuestions)

	var stdout, stderr bytes.Buffer
	code := Run([]string{"solve", "--questions", path, "--ui", "plain"}, &stdout, &stderr)
	if code != ExitOK {
		t.Fatalf("exit = %d, stderr = %q", code, stderr.String())
	}
	if !json.Valid(stdout.Bytes()) {
		t.Fatalf("stdout is not JSON: %q", stdout.String())
	}
}

func TestSolveModelFailureExitsNonZero(t *testing.T) {
	withStubModel(t, &stubModel{err: errors.New("boom")})
	path := writeQuestionsFile(t, sampleQuestions)

	var stdout, stderr bytes.Buffer
	code := Run([]string{"solve", "--questions", path, "--ui", "plain"}, &stdout, &stderr)
	if code != ExitError {
		t.Fatalf("exit = %d, want %d", code, ExitError)
	}
	if !strings.Contains(stdout.String(), "VLM processing failed") {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

func TestSolveRequiresQuestionsFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"solve"}, &stdout, &stderr)
	if code != ExitUsage {
		t.Fatalf("exit = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "--questions is required") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestSolveLiveRequiresOutputPath(t *testing.T) {
	original := isTerminal
	isTerminal = func(io.Writer) bool { return true }
	t.Cleanup(func() { isTerminal = original })

	path := writeQuestionsFile(t, sampleQuestions)
	var stdout, stderr bytes.Buffer
	code := Run([]string{"solve", "--questions", path, "--ui", "live"}, &stdout, &stderr)
	if code != ExitUsage {
		t.Fatalf("exit = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "-o is required") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}
