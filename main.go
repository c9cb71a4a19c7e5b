package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/kamilpajak/ciscope/internal/analyzer"
	"github.com/kamilpajak/ciscope/internal/collector"
	"github.com/kamilpajak/ciscope/internal/config"
	"github.com/kamilpajak/ciscope/internal/database"
	"github.com/kamilpajak/ciscope/internal/llm"
	"github.com/kamilpajak/ciscope/internal/playwright"
	"github.com/kamilpajak/ciscope/internal/report"
	"github.com/kamilpajak/ciscope/pkg/models"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// exitError carries a process exit code without an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// app holds the process collaborators so commands can run against fakes.
type app struct {
	getenv     func(string) string
	stdout     io.Writer
	stderr     io.Writer
	runner     collector.Runner
	newClient  func(llm.Options) (llm.Client, error)
	now        func() time.Time
	screenshot func(html []byte, outPath string) error
}

func newApp() *app {
	return &app{
		getenv:     os.Getenv,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		runner:     collector.ExecRunner{},
		newClient:  llm.NewClient,
		now:        time.Now,
		screenshot: playwright.ScreenshotHTML,
	}
}

type rootFlags struct {
	configPath string
	provider   string
	model      string
	verbose    bool
	jsonOutput bool
	screenshot string
}

func newRootCmd(a *app) *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "ciscope",
		Short: "AI-assisted CI pipeline analysis",
		Long: `Collects git changes and pytest results from the working tree, asks a hosted
model for a risk assessment, and writes an HTML report plus a Markdown job summary.

Exits 1 when any test failed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd.Context(), f)
		},
	}

	cmd.PersistentFlags().StringVarP(&f.configPath, "config", "c", config.DefaultPath, "Config file")
	cmd.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().StringVar(&f.provider, "provider", "", "Model provider: anthropic, openai or google")
	cmd.Flags().StringVar(&f.model, "model", "", "Model name (default depends on provider)")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Print the analysis outcome as JSON")
	cmd.Flags().StringVar(&f.screenshot, "screenshot", "", "Save a PNG of the HTML report to this path")

	cmd.AddCommand(newSummaryCmd(a, &f))
	cmd.AddCommand(newHistoryCmd(a, &f))
	cmd.AddCommand(newMigrateCmd(a, &f))
	cmd.AddCommand(newVersionCmd(a))
	return cmd
}

func main() {
	err := newRootCmd(newApp()).ExecuteContext(context.Background())
	if err == nil {
		return
	}
	var ee *exitError
	if errors.As(err, &ee) {
		os.Exit(ee.code)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func (a *app) loadConfig(f rootFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath, a.getenv)
	if err != nil {
		return nil, err
	}
	if f.provider != "" {
		cfg.Provider = f.provider
	}
	if f.model != "" {
		cfg.Model = f.model
	}
	if f.screenshot != "" {
		cfg.ScreenshotPath = f.screenshot
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) runAnalyze(ctx context.Context, f rootFlags) error {
	cfg, err := a.loadConfig(f)
	if err != nil {
		return err
	}

	// Fails before any collection or network call.
	apiKey, err := cfg.APIKey(a.getenv)
	if err != nil {
		return err
	}

	logger := newLogger(a.stderr, f.verbose)
	emitter := llm.NewTextEmitter(a.stderr)
	defer emitter.Close()

	printBanner(a.stderr, "🔍 CI/CD LLM Analysis")
	fmt.Fprintln(a.stderr)
	emitter.Emit(llm.ProgressEvent{Type: "info", Message: "📊 Gathering pipeline data..."})

	col := collector.New(logger, cfg.RepoDir, a.runner)
	facts, err := col.Collect(ctx, collector.Paths{
		Results:  cfg.ResultsPath,
		Output:   cfg.OutputPath,
		Coverage: cfg.CoveragePath,
	})
	if err != nil {
		return err
	}
	printFacts(a.stderr, facts)

	opts, err := cfg.LLMOptions(apiKey)
	if err != nil {
		return err
	}
	client, err := a.newClient(opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stderr)
	outcome := analyzer.New(client, emitter, logger).Analyze(ctx, analyzer.Input{
		Git:     facts.Git,
		Results: facts.Results,
		Output:  facts.Output,
	})
	emitter.Close()

	if f.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcome); err != nil {
			return fmt.Errorf("failed to encode outcome: %w", err)
		}
	} else {
		printAnalysis(a.stderr, outcome)
	}

	renderer := report.NewRenderer(outcome.Model, cfg.CoverageThreshold)
	renderer.Now = a.now
	in := report.Input{
		Git:         facts.Git,
		Results:     facts.Results,
		Coverage:    facts.Coverage,
		Analysis:    &outcome.Result,
		RawAnalysis: outcome.Raw,
	}
	html, err := renderer.WriteHTML(cfg.ReportPath, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "\n📄 HTML Report saved to: %s\n", cfg.ReportPath)

	if !f.jsonOutput {
		fmt.Fprint(a.stdout, report.RenderMarkdown(facts.Results, facts.Coverage, cfg.CoverageThreshold))
	}

	if cfg.DatabaseURL != "" {
		a.recordRun(ctx, logger, cfg, facts, outcome)
	}
	if cfg.ScreenshotPath != "" {
		if err := a.screenshot(html, cfg.ScreenshotPath); err != nil {
			logger.Warn().Err(err).Msg("Failed to capture report screenshot")
		} else {
			fmt.Fprintf(a.stderr, "🖼  Screenshot saved to: %s\n", cfg.ScreenshotPath)
		}
	}

	if code := report.ExitCode(facts.Results); code != 0 {
		_, _ = color.New(color.FgRed).Fprintf(a.stderr, "\n❌ Pipeline has %d failed test(s)\n", facts.Results.Summary.Failed)
		return &exitError{code: code}
	}
	_, _ = color.New(color.FgGreen).Fprintln(a.stderr, "\n✅ Analysis complete")
	return nil
}

// recordRun stores the run in the history database. Failures only warn.
func (a *app) recordRun(ctx context.Context, logger zerolog.Logger, cfg *config.Config, facts *collector.Facts, outcome *analyzer.Outcome) {
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn().Err(err).Msg("Run history unavailable")
		return
	}
	defer db.Close()

	run, err := db.CreateRun(ctx, database.CreateRunParams{
		Git:      facts.Git,
		Results:  facts.Results,
		Coverage: facts.Coverage,
		Status:   report.Status(facts.Results, facts.Coverage, cfg.CoverageThreshold).Text,
		Source:   string(outcome.Source),
		Model:    outcome.Model,
		Analysis: &outcome.Result,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to record run")
		return
	}
	logger.Debug().Str("id", run.ID.String()).Msg("Recorded run")
}

func printBanner(w io.Writer, title string) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	_, _ = color.New(color.Bold).Fprintln(w, title)
	fmt.Fprintln(w, rule)
}

func printFacts(w io.Writer, facts *collector.Facts) {
	found := "Not found"
	if facts.Results != nil {
		found = "Found"
	}
	fmt.Fprintf(w, "  - Branch: %s\n", facts.Git.Branch)
	fmt.Fprintf(w, "  - Author: %s\n", facts.Git.Author)
	fmt.Fprintf(w, "  - Commit: %s...\n", analyzer.Head(facts.Git.CommitMessage, 50))
	fmt.Fprintf(w, "  - Changed files: %d\n", len(facts.Git.ChangedFiles))
	fmt.Fprintf(w, "  - Test results: %s\n", found)
	if facts.Coverage != nil {
		fmt.Fprintf(w, "  - Coverage: %.1f%%\n", facts.Coverage.Percent())
	}
}

func printAnalysis(w io.Writer, o *analyzer.Outcome) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	fmt.Fprintln(w)
	printBanner(w, "📋 ANALYSIS RESULTS")

	fmt.Fprintf(w, "\nSummary: %s\n", o.Result.Summary)
	fmt.Fprint(w, "\nRisk Level: ")
	_, _ = riskColor(o.Result.RiskLevel).Fprintln(w, o.Result.RiskLevel)
	fmt.Fprintf(w, "\nRegression: %s\n", o.Result.RegressionCheck)

	if !o.Parsed() {
		fmt.Fprintln(w)
		if o.Cause != "" {
			_, _ = color.New(color.FgYellow).Fprintf(w, "Model request failed: %s\n", o.Cause)
		} else {
			_, _ = color.New(color.FgYellow).Fprintln(w, "Model reply was not valid JSON; showing fallback analysis")
		}
	}
	if o.InputTokens+o.OutputTokens > 0 {
		fmt.Fprintln(w)
		_, _ = dim.Fprintf(w, "%s · %s in / %s out tokens · %s\n",
			o.Model,
			formatCount(o.InputTokens), formatCount(o.OutputTokens),
			(time.Duration(o.ElapsedMs) * time.Millisecond).String())
	}
	_, _ = bold.Fprintln(w, strings.Repeat("=", 60))
}

func riskColor(level models.RiskLevel) *color.Color {
	switch level {
	case models.RiskLow:
		return color.New(color.FgGreen, color.Bold)
	case models.RiskHigh:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgYellow, color.Bold)
	}
}

func formatCount(n int) string {
	s := fmt.Sprint(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
