package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"examsolver/internal/api"
	"examsolver/internal/imagefetch"
	"examsolver/internal/solver"
	"examsolver/internal/vlm"
)

// defaultConfigPath is used when no -config flag is given.
const defaultConfigPath = "config.yaml"

// main launches examsolverd.
func main() {
	os.Exit(run())
}

// run executes examsolverd and returns an exit code.
func run() int {
	configPath := flag.String("config", defaultConfigPath, "path to examsolverd config")
	flag.Parse()

	// Local .env files are a convenience; a missing file is fine.
	_ = godotenv.Load()

	explicit := *configPath != defaultConfigPath
	cfg, err := loadConfig(*configPath, explicit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	model, err := buildModelClient(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "model client error: %v\n", err)
		return 1
	}
	images := imagefetch.New(nil, imageTimeout(cfg))
	evaluator := solver.NewEvaluator(model, images, logger)
	batchSolver := solver.New(solver.Config{
		Evaluator: evaluator,
		Workers:   cfg.Solver.Workers,
		Logger:    logger,
	})

	handler := api.NewHandler(api.Config{
		Solver: batchSolver,
		Logger: logger,
	})
	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	mux.Handle("/", handler)

	server := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: mux,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Printf("[examsolverd] listening on %s model=%s", cfg.Server.ListenAddr, model.Model)
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	return 0
}

// buildModelClient resolves model settings from the config file with
// environment variables taking precedence.
func buildModelClient(cfg config) (*vlm.Client, error) {
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}
	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = cfg.Model.Name
	}
	baseURL := os.Getenv("LLM_BASE_URL")
	if baseURL == "" {
		baseURL = cfg.Model.BaseURL
	}
	return vlm.NewClient(model, apiKey, baseURL, nil)
}
