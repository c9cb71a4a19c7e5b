package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/kamilpajak/ciscope/internal/analyzer"
	"github.com/kamilpajak/ciscope/internal/database"
	"github.com/kamilpajak/ciscope/internal/report"
	"github.com/kamilpajak/ciscope/pkg/models"
	"github.com/spf13/cobra"
)

var errNoDatabase = errors.New("no database configured (set CISCOPE_DATABASE_URL or database_url)")

func newHistoryCmd(a *app, f *rootFlags) *cobra.Command {
	var (
		branch string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recently analyzed runs, or show one stored analysis",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id uuid.UUID
			if len(args) == 1 {
				parsed, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid run id %q: %w", args[0], err)
				}
				id = parsed
			}

			cfg, err := a.loadConfig(*f)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errNoDatabase
			}

			db, err := database.New(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if id != uuid.Nil {
				run, err := db.GetRun(cmd.Context(), id)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", id)
				}
				printRun(a.stdout, run)
				return nil
			}

			runs, err := db.ListRuns(cmd.Context(), branch, limit)
			if err != nil {
				return err
			}
			printRuns(a, runs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Only list runs of this branch")
	cmd.Flags().IntVarP(&limit, "limit", "n", database.DefaultListLimit, "Maximum number of runs")
	return cmd
}

func printRuns(a *app, runs []database.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(a.stderr, "No runs recorded")
		return
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tBRANCH\tSTATUS\tTESTS\tRISK\tCOMMIT")
	for _, r := range runs {
		commitLine, _, _ := strings.Cut(r.CommitMessage, "\n")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
			r.Branch,
			r.Status,
			r.Passed, r.Total,
			r.RiskLevel,
			analyzer.Head(commitLine, 50),
		)
	}
	_ = tw.Flush()
}

// printRun shows one stored run with its analysis.
func printRun(w io.Writer, r *database.Run) {
	fmt.Fprintf(w, "Run:      %s\n", r.ID)
	fmt.Fprintf(w, "Created:  %s\n", r.CreatedAt.UTC().Format(report.TimestampLayout))
	fmt.Fprintf(w, "Branch:   %s\n", r.Branch)
	fmt.Fprintf(w, "Author:   %s\n", r.Author)
	fmt.Fprintf(w, "Commit:   %s\n", analyzer.Head(r.CommitMessage, report.CommitChars))
	fmt.Fprint(w, "Status:   ")
	_, _ = statusColor(r.Status).Fprintln(w, r.Status)
	fmt.Fprintf(w, "Tests:    %d total, %d passed, %d failed (%.2fs)\n", r.Total, r.Passed, r.Failed, r.Duration)
	if r.LineRate != nil {
		fmt.Fprintf(w, "Coverage: %.1f%%\n", *r.LineRate*100)
	}
	fmt.Fprintf(w, "Analysis: %s", r.Source)
	if r.Model != "" {
		fmt.Fprintf(w, " (%s)", r.Model)
	}
	fmt.Fprintln(w)

	fmt.Fprint(w, "\nRisk Level: ")
	_, _ = riskColor(models.RiskLevel(r.RiskLevel)).Fprintln(w, r.RiskLevel)
	if r.Analysis == nil {
		return
	}
	fmt.Fprintf(w, "\nSummary: %s\n", r.Analysis.Summary)
	printList(w, "Risk factors", r.Analysis.RiskReasons)
	fmt.Fprintf(w, "\nRegression: %s\n", r.Analysis.RegressionCheck)
	printList(w, "Recommendations", r.Analysis.Recommendations)
	printList(w, "Quick fixes", r.Analysis.QuickFixes)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func statusColor(status string) *color.Color {
	switch status {
	case report.BadgePassed.Text:
		return color.New(color.FgGreen, color.Bold)
	case report.BadgeFailed.Text:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgYellow, color.Bold)
	}
}

func newMigrateCmd(a *app, f *rootFlags) *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the run history schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(*f)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errNoDatabase
			}

			if down {
				if err := database.MigrateDown(cfg.DatabaseURL); err != nil {
					return err
				}
				fmt.Fprintln(a.stderr, "Migrations rolled back")
				return nil
			}
			if err := database.Migrate(cfg.DatabaseURL); err != nil {
				return err
			}
			version, _, err := database.SchemaVersion(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			_, _ = color.New(color.FgGreen).Fprintf(a.stderr, "Migrations complete (schema version %d)\n", version)
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "Roll back all migrations")
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "ciscope %s\n", version)
			fmt.Fprintf(a.stdout, "  commit: %s\n", commit)
			fmt.Fprintf(a.stdout, "  built:  %s\n", date)
		},
	}
}
