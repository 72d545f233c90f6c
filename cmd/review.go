package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saishankar404/tidy/pkg/analyzer"
	"github.com/saishankar404/tidy/pkg/formatter"
	"github.com/saishankar404/tidy/pkg/llm"
	"github.com/saishankar404/tidy/pkg/model"
	"github.com/saishankar404/tidy/pkg/review"
	"github.com/saishankar404/tidy/pkg/workspace"
)

var (
	provider       string
	modelName      string
	outputFormat   string
	analyzerNames  []string
	timeout        time.Duration
	concurrency    int
	noSuggestions  bool
	verbose        bool
)

func NewReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review FILE",
		Short: "Review a source file with AI assistance",
		Long: `Run the analysis pipeline against a single source file and print
a structured review with issues, suggestions, and per-category scores.

Examples:
  # Review a file with every analyzer
  tidy review src/app.ts

  # Run only the security and performance analyzers
  tidy review src/app.ts -a security -a performance

  # Get machine-readable output
  tidy review src/app.ts -o json`,
		Args: cobra.ExactArgs(1),
		RunE: runReview,
	}

	// Flags
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (gemini, openai); defaults to LLM_PROVIDER or gemini")
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "Model override for the selected provider")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().StringSliceVarP(&analyzerNames, "analyzers", "a", []string{}, "Analyzers to run (security, quality, performance, maintainability, testing, documentation)")
	cmd.Flags().DurationVar(&timeout, "timeout", 45*time.Second, "Per-analyzer timeout")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Concurrent analyzer calls")
	cmd.Flags().BoolVar(&noSuggestions, "no-suggestions", false, "Skip improvement suggestions")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	return cmd
}

func runReview(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	cfg := model.DefaultAnalysisConfig()
	cfg.Timeout = timeout
	cfg.MaxConcurrency = concurrency
	cfg.IncludeSuggestions = !noSuggestions

	if len(analyzerNames) > 0 {
		kinds := make([]model.AnalyzerKind, 0, len(analyzerNames))
		for _, name := range analyzerNames {
			kind, ok := model.ParseKind(name)
			if !ok {
				return fmt.Errorf("unknown analyzer %q", name)
			}
			kinds = append(kinds, kind)
		}
		cfg.EnabledAnalyzers = kinds
	}

	printHeader(filePath, cfg.EnabledAnalyzers)

	// Create spinner for visual feedback
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " Reading workspace..."
	s.Start()

	cctx, err := workspace.Gather(filePath)
	if err != nil {
		s.Stop()
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	s.Stop()
	printSuccess(fmt.Sprintf("Loaded %s (%s, %d lines)", filePath, cctx.Language, model.CountLines(cctx.Content)))

	client, err := llm.CreateFromEnv(provider, modelName)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if verbose {
		if dev, err := zap.NewDevelopment(); err == nil {
			log = dev
		}
	}

	gateway := llm.NewGatewayWithWidth(client, cfg.MaxConcurrency)
	orch := analyzer.NewOrchestrator(gateway, cfg, log)

	s.Suffix = " Analyzing..."
	s.Start()

	run, err := orch.Analyze(cmd.Context(), cctx, func(p model.AnalysisProgress) {
		if p.Status == model.StatusRunning {
			s.Suffix = fmt.Sprintf(" Analyzing %s (%d/%d)...", p.CurrentAnalyzer, p.Current, p.Total)
		}
	})
	if err != nil {
		s.Stop()
		return fmt.Errorf("analysis failed: %w", err)
	}

	s.Stop()
	printSuccess(fmt.Sprintf("Analysis complete (%d analyzers, %d LLM calls)", len(run.Results), gateway.TotalCalls()))
	if orch.IsOffline() {
		printError("Provider quota exhausted; remaining analyzers used offline heuristics")
	}

	report := &formatter.Report{
		Results: run.Results,
		Summary: run.Summary,
		Review:  review.Transform(run.Results, cctx.FilePath, cctx.Content),
		Offline: orch.IsOffline(),
	}

	return formatter.DisplayResults(report, outputFormat)
}

func printHeader(filePath string, kinds []model.AnalyzerKind) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Println()
	cyan.Println("🧹 Tidy Code Review")
	fmt.Printf("📝 File: %s\n", filePath)

	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = string(kind)
	}
	fmt.Printf("📊 Analyzers: %s\n", strings.Join(names, ", "))
	fmt.Println()
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Printf("✓ %s\n", msg)
}

func printError(msg string) {
	red := color.New(color.FgRed)
	red.Printf("✗ %s\n", msg)
}
