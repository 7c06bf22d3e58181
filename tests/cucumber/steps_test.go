package cucumber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"examsolver/internal/api"
	"examsolver/internal/imagefetch"
	"examsolver/internal/solver"
	"examsolver/internal/testutil"
	"examsolver/internal/vlm"
)

// featureState holds scenario state for the HTTP feature suite.
type featureState struct {
	t       testing.TB
	model   *testutil.ModelServer
	service *httptest.Server
	status  int
	body    []byte
}

// resultRecord decodes one entry of the results array for assertions.
type resultRecord struct {
	QuestionID    string `json:"question_id"`
	QuestionType  string `json:"question_type"`
	OptionIndices []int  `json:"option_indices"`
	TextAnswer    string `json:"text_answer"`
	Error         string `json:"error"`
}

// batchRecord decodes the whole solve response for assertions.
type batchRecord struct {
	Results      []resultRecord `json:"results"`
	TokenSummary struct {
		TotalQuestions int `json:"total_questions"`
		TotalTokens    int `json:"total_tokens"`
	} `json:"token_summary"`
}

// InitializeScenario wires the feature steps to fresh scenario state.
func InitializeScenario(t testing.TB, ctx *godog.ScenarioContext) {
	state := &featureState{t: t}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		state.stopService()
		return ctx, nil
	})

	ctx.Step(`^a running exam solving service$`, state.aRunningService)
	ctx.Step(`^I POST the following payload to /api/solve:$`, state.iPostPayload)
	ctx.Step(`^the response status is (\d+)$`, state.theResponseStatusIs)
	ctx.Step(`^the response body equals:$`, state.theResponseBodyEquals)
	ctx.Step(`^the model was called (\d+) times?$`, state.theModelWasCalled)
	ctx.Step(`^result (\d+) answers question "([^"]+)" with options \[([\d, ]*)\]$`, state.resultAnswersWithOptions)
	ctx.Step(`^result (\d+) answers question "([^"]+)" with text "([^"]+)"$`, state.resultAnswersWithText)
	ctx.Step(`^result (\d+) has error "([^"]+)"$`, state.resultHasError)
	ctx.Step(`^the token summary counts (\d+) questions and (\d+) tokens$`, state.tokenSummaryCounts)
}

// reset clears response state before each scenario.
func (s *featureState) reset() {
	s.status = 0
	s.body = nil
}

// stopService shuts down the scenario's servers.
func (s *featureState) stopService() {
	if s.service != nil {
		s.service.Close()
		s.service = nil
	}
	s.model = nil
}

// aRunningService starts a stub model API and the solve service on top.
func (s *featureState) aRunningService() error {
	s.model = testutil.NewModelServer(s.t, func(call testutil.ModelCall) testutil.StubCompletion {
		content := `{"option_index": 1}`
		switch call.SchemaName {
		case "msq_answer":
			content = `{"option_indices": [0, 2]}`
		case "text_answer":
			content = `{"text_answer": "4"}`
		}
		return testutil.StubCompletion{
			Content:          content,
			PromptTokens:     10,
			CompletionTokens: 5,
			TotalTokens:      15,
		}
	})

	client, err := vlm.NewClient("stub-model", "test-key", s.model.URL, nil)
	if err != nil {
		return err
	}
	logger := log.New(io.Discard, "", 0)
	evaluator := solver.NewEvaluator(client, imagefetch.New(nil, 2*time.Second), logger)
	batchSolver := solver.New(solver.Config{Evaluator: evaluator, Logger: logger})
	s.service = httptest.NewServer(api.NewHandler(api.Config{Solver: batchSolver, Logger: logger}))
	return nil
}

// iPostPayload sends the docstring body to the solve endpoint.
func (s *featureState) iPostPayload(payload *godog.DocString) error {
	if s.service == nil {
		return fmt.Errorf("service is not running")
	}
	ctx := testutil.Context(s.t, 30*time.Second)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.service.URL+"/api/solve", strings.NewReader(payload.Content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	s.status = resp.StatusCode
	s.body = body
	return nil
}

func (s *featureState) theResponseStatusIs(want int) error {
	if s.status != want {
		return fmt.Errorf("status = %d, want %d (body: %s)", s.status, want, s.body)
	}
	return nil
}

// theResponseBodyEquals compares JSON bodies structurally.
func (s *featureState) theResponseBodyEquals(expected *godog.DocString) error {
	var want, got any
	if err := json.Unmarshal([]byte(expected.Content), &want); err != nil {
		return fmt.Errorf("expected body is not JSON: %w", err)
	}
	if err := json.Unmarshal(s.body, &got); err != nil {
		return fmt.Errorf("response body is not JSON: %w (body: %s)", err, s.body)
	}
	if !reflect.DeepEqual(want, got) {
		return fmt.Errorf("body = %s, want %s", s.body, bytes.TrimSpace([]byte(expected.Content)))
	}
	return nil
}

func (s *featureState) theModelWasCalled(want int) error {
	if s.model == nil {
		return fmt.Errorf("service is not running")
	}
	if got := s.model.Calls(); got != want {
		return fmt.Errorf("model calls = %d, want %d", got, want)
	}
	return nil
}

// result returns the 1-based result entry from the last response.
func (s *featureState) result(position int) (resultRecord, error) {
	var batch batchRecord
	if err := json.Unmarshal(s.body, &batch); err != nil {
		return resultRecord{}, fmt.Errorf("response body is not a batch: %w", err)
	}
	if position < 1 || position > len(batch.Results) {
		return resultRecord{}, fmt.Errorf("result %d out of range (%d results)", position, len(batch.Results))
	}
	return batch.Results[position-1], nil
}

func (s *featureState) resultAnswersWithOptions(position int, questionID, options string) error {
	record, err := s.result(position)
	if err != nil {
		return err
	}
	if record.QuestionID != questionID {
		return fmt.Errorf("question_id = %q, want %q", record.QuestionID, questionID)
	}
	if record.Error != "" {
		return fmt.Errorf("unexpected error %q", record.Error)
	}
	want, err := parseIntList(options)
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(record.OptionIndices, want) {
		return fmt.Errorf("option_indices = %v, want %v", record.OptionIndices, want)
	}
	return nil
}

func (s *featureState) resultAnswersWithText(position int, questionID, text string) error {
	record, err := s.result(position)
	if err != nil {
		return err
	}
	if record.QuestionID != questionID {
		return fmt.Errorf("question_id = %q, want %q", record.QuestionID, questionID)
	}
	if record.Error != "" {
		return fmt.Errorf("unexpected error %q", record.Error)
	}
	if record.TextAnswer != text {
		return fmt.Errorf("text_answer = %q, want %q", record.TextAnswer, text)
	}
	return nil
}

func (s *featureState) resultHasError(position int, message string) error {
	record, err := s.result(position)
	if err != nil {
		return err
	}
	if record.Error != message {
		return fmt.Errorf("error = %q, want %q", record.Error, message)
	}
	return nil
}

func (s *featureState) tokenSummaryCounts(questions, tokens int) error {
	var batch batchRecord
	if err := json.Unmarshal(s.body, &batch); err != nil {
		return fmt.Errorf("response body is not a batch: %w", err)
	}
	if batch.TokenSummary.TotalQuestions != questions {
		return fmt.Errorf("total_questions = %d, want %d", batch.TokenSummary.TotalQuestions, questions)
	}
	if batch.TokenSummary.TotalTokens != tokens {
		return fmt.Errorf("total_tokens = %d, want %d", batch.TokenSummary.TotalTokens, tokens)
	}
	return nil
}

// parseIntList parses a comma separated list of ints.
func parseIntList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []int{}, nil
	}
	parts := strings.Split(raw, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}
