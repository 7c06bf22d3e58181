package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"examsolver/internal/imagefetch"
	"examsolver/internal/question"
	"examsolver/internal/solver"
	"examsolver/internal/ui/live"
	"examsolver/internal/vlm"
)

// newModelClient builds the model client for the solve command.
// Replaced in tests.
var newModelClient = func() (solver.ModelClient, error) {
	return vlm.ClientFromEnv(nil)
}

// runSolve builds the handler for the solve command.
func runSolve(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		questionsPath := flags.String("questions", "", "Path to questions file (JSON or YAML)")
		workers := flags.Int("workers", 0, "Maximum concurrent model calls (0 = unbounded)")
		uiMode := flags.String("ui", "auto", "Progress UI mode: auto, live or plain")
		noColor := flags.Bool("no-color", false, "Disable colored output")
		outputPath := flags.String("o", "", "Write results to a file instead of stdout")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if flags.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if *questionsPath == "" {
			fmt.Fprintln(stderr, "--questions is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		batch, err := question.LoadBatch(*questionsPath)
		if err != nil {
			fmt.Fprintf(stderr, "questions error: %v\n", err)
			return ExitError
		}
		batch, err = question.NormalizeBatch(batch)
		if err != nil {
			fmt.Fprintf(stderr, "questions error:\n%s\n", err.Error())
			return ExitError
		}

		decision, err := resolveUIMode(*uiMode, stdout)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}
		// The live UI owns stdout, so results must go to a file then.
		if decision.useLive && *outputPath == "" {
			fmt.Fprintln(stderr, "-o is required with the live UI")
			return ExitUsage
		}

		model, err := newModelClient()
		if err != nil {
			fmt.Fprintf(stderr, "model client error: %v\n", err)
			return ExitError
		}

		// Workers and the logger both write progress to stderr.
		progress := &syncWriter{out: stderr}
		var logOutput io.Writer = progress
		var controller *live.Controller
		var observer solver.BatchObserver
		if decision.useLive {
			logOutput = io.Discard
			controller = live.Start(stdout, live.Options{NoColor: *noColor})
			observer = controller
		} else {
			observer = &plainObserver{out: progress}
		}
		logger := log.New(logOutput, "", log.LstdFlags)

		evaluator := solver.NewEvaluator(model, imagefetch.New(nil, 0), logger)
		batchSolver := solver.New(solver.Config{
			Evaluator: evaluator,
			Workers:   *workers,
			Observer:  observer,
			Logger:    logger,
		})
		result := batchSolver.SolveBatch(context.Background(), batch.Questions)
		if controller != nil {
			controller.Wait()
		}

		if err := writeResult(result, *outputPath, stdout); err != nil {
			fmt.Fprintf(stderr, "write error: %v\n", err)
			return ExitError
		}
		summary := result.TokenSummary
		fmt.Fprintf(stderr, "Solved %d questions (%d failed), %d tokens\n",
			summary.TotalQuestions, countFailed(result.Results), summary.TotalTokens)

		if countFailed(result.Results) > 0 {
			return ExitError
		}
		return ExitOK
	}
}

// writeResult serializes the batch result as indented JSON.
func writeResult(result solver.BatchResult, path string, stdout io.Writer) error {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	if path == "" {
		_, err = stdout.Write(payload)
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

// countFailed returns the number of error results in a batch.
func countFailed(results []solver.Result) int {
	failed := 0
	for _, item := range results {
		if item.Error != "" {
			failed++
		}
	}
	return failed
}

// syncWriter serializes writes from concurrent sources.
type syncWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.Write(p)
}

// plainObserver prints one progress line per terminal question event.
// Events arrive from worker goroutines, so writes are serialized.
type plainObserver struct {
	mu  sync.Mutex
	out io.Writer
}

func (o *plainObserver) OnBatchStart(batchID string, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.out, "Batch %s: %d questions\n", batchID, total)
}

func (o *plainObserver) OnQuestionEvent(event solver.QuestionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch event.Status {
	case solver.QuestionAnswered:
		fmt.Fprintf(o.out, "Q%d %s answered (%d tokens)\n", event.Index+1, event.QuestionID, event.Tokens)
	case solver.QuestionFailed:
		fmt.Fprintf(o.out, "Q%d %s failed: %s\n", event.Index+1, event.QuestionID, event.Error)
	}
}

func (o *plainObserver) OnBatchEnd(batchID string, result solver.BatchResult) {}
