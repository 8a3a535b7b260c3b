package app

import "time"

// Config holds runtime configuration for one digest run. Constructed once
// in main, immutable thereafter.
type Config struct {
	// URLs, when non-empty, is processed directly instead of the issues
	// source.
	URLs []string

	// Issues source
	IssuesRepo  string
	IssuesToken string

	// Completion service
	LLMBaseURL     string
	LLMModel       string
	LLMAPIKey      string
	LLMDeployment  string
	LLMAPIVersion  string
	LLMMaxTokens   int
	LLMMaxRetries  int
	LLMBaseDelay   time.Duration
	CompletionWait time.Duration

	// Scoring
	WeightsPath string
	Interests   []string

	// Output
	OutputDir string
	// Formats is any of "json", "md", "pdf".
	Formats []string

	// Behavior
	Workers        int
	ArticleTimeout time.Duration
	BinaryTimeout  time.Duration
	DryRun         bool
}
