package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jnolting/contentdigest/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Best-effort .env load so local runs need no exported environment.
	_ = godotenv.Load()

	var (
		urls          string
		issuesRepo    string
		issuesToken   string
		llmBase       string
		llmModel      string
		llmKey        string
		llmDeployment string
		llmAPIVersion string
		llmMaxTokens  int
		llmRetries    int
		weightsPath   string
		interests     string
		outDir        string
		formats       string
		workers       int
		articleWait   time.Duration
		binaryWait    time.Duration
		llmWait       time.Duration
		dryRun        bool
		verbose       bool
	)

	flag.StringVar(&urls, "urls", "", "Comma-separated URLs to digest directly (skips the issues source)")
	flag.StringVar(&issuesRepo, "issues.repo", os.Getenv("GITHUB_REPOSITORY"), "GitHub repository (owner/name) to read links from")
	flag.StringVar(&issuesToken, "issues.token", os.Getenv("GITHUB_TOKEN"), "GitHub token (optional)")
	flag.StringVar(&llmBase, "llm.base", envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"), "Completion service base URL")
	flag.StringVar(&llmModel, "llm.model", envOr("OPENAI_MODEL", "gpt-4o-mini"), "Model name (generic convention)")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("OPENAI_API_KEY"), "Completion service API key")
	flag.StringVar(&llmDeployment, "llm.deployment", os.Getenv("OPENAI_DEPLOYMENT"), "Deployment identifier (managed-cloud convention)")
	flag.StringVar(&llmAPIVersion, "llm.apiVersion", os.Getenv("OPENAI_API_VERSION"), "API version query parameter (managed-cloud convention)")
	flag.IntVar(&llmMaxTokens, "llm.maxTokens", 1200, "Token budget per summary")
	flag.IntVar(&llmRetries, "llm.retries", 4, "Max retries for transient completion failures")
	flag.StringVar(&weightsPath, "weights", envOr("SOURCE_WEIGHTS", "config/source_weights.yaml"), "Host credibility weights file (YAML/JSON)")
	flag.StringVar(&interests, "interests", os.Getenv("INTERESTS"), "Comma-separated interest keywords for topic matching")
	flag.StringVar(&outDir, "out", "reports", "Report output directory")
	flag.StringVar(&formats, "format", "json,md", "Report formats: json, md, pdf (comma-separated)")
	flag.IntVar(&workers, "workers", 4, "Concurrent items in flight")
	flag.DurationVar(&articleWait, "timeout.article", 45*time.Second, "Per-request timeout for page fetches")
	flag.DurationVar(&binaryWait, "timeout.document", 120*time.Second, "Per-request timeout for document payloads")
	flag.DurationVar(&llmWait, "timeout.completion", 2*time.Minute, "Per-attempt timeout for completion calls")
	flag.BoolVar(&dryRun, "dry-run", false, "Extract and score without calling the model")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		URLs:           splitList(urls),
		IssuesRepo:     issuesRepo,
		IssuesToken:    issuesToken,
		LLMBaseURL:     llmBase,
		LLMModel:       llmModel,
		LLMAPIKey:      llmKey,
		LLMDeployment:  llmDeployment,
		LLMAPIVersion:  llmAPIVersion,
		LLMMaxTokens:   llmMaxTokens,
		LLMMaxRetries:  llmRetries,
		CompletionWait: llmWait,
		WeightsPath:    weightsPath,
		Interests:      splitList(interests),
		OutputDir:      outDir,
		Formats:        splitList(formats),
		Workers:        workers,
		ArticleTimeout: articleWait,
		BinaryTimeout:  binaryWait,
		DryRun:         dryRun,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	if err := a.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
