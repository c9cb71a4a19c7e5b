package main

import (
	"fmt"

	"github.com/kamilpajak/ciscope/internal/collector"
	"github.com/kamilpajak/ciscope/internal/report"
	"github.com/spf13/cobra"
)

// newSummaryCmd prints the Markdown job summary without contacting a model.
func newSummaryCmd(a *app, f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the Markdown job summary of the test results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSummary(*f)
		},
	}
}

func (a *app) runSummary(f rootFlags) error {
	cfg, err := a.loadConfig(f)
	if err != nil {
		return err
	}

	col := collector.New(newLogger(a.stderr, f.verbose), cfg.RepoDir, a.runner)
	results, err := col.ReadTestResults(cfg.ResultsPath)
	if err != nil {
		return err
	}
	coverage := col.ReadCoverage(cfg.CoveragePath)

	fmt.Fprint(a.stdout, report.RenderMarkdown(results, coverage, cfg.CoverageThreshold))
	return nil
}
