package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/kamilpajak/ciscope/pkg/models"
)

// Display limits.
const (
	CommitChars  = 100
	FailureChars = 150
)

// TimestampLayout formats the generation time in the report footer.
const TimestampLayout = "2006-01-02 15:04:05 UTC"

// Input is everything a report shows.
type Input struct {
	Git      models.GitContext
	Results  *models.TestResults
	Coverage *models.CoverageInfo
	// Analysis is the structured analysis. When nil, RawAnalysis is shown verbatim.
	Analysis    *models.AnalysisResult
	RawAnalysis string
}

// Renderer turns an Input into a self-contained HTML document.
type Renderer struct {
	Now       func() time.Time
	Model     string
	Threshold float64
}

// NewRenderer creates a Renderer using the wall clock.
func NewRenderer(model string, threshold float64) *Renderer {
	return &Renderer{Now: time.Now, Model: model, Threshold: threshold}
}

var reportTemplate = template.Must(template.New("report").Parse(htmlTemplate))

type failedView struct {
	Name    string
	Path    string
	Message string
}

type htmlData struct {
	Branch      string
	Author      string
	StatusText  string
	StatusColor template.CSS
	Commit      string

	Total  int
	Passed int
	Failed int

	HasCoverage    bool
	CoveragePct    string
	CoverageFailed bool
	ThresholdPct   string

	Structured      bool
	RawAnalysis     string
	Summary         string
	RiskLevel       string
	RiskColor       template.CSS
	RiskReasons     []string
	FailureAnalysis string
	Regression      string
	Recommendations []string
	QuickFixes      []string

	HasResults  bool
	FailedTests []failedView
	Churn       []models.FileChurn

	GeneratedAt string
	Model       string
}

// RenderHTML renders the report. Identical inputs and clock give identical bytes.
func (r *Renderer) RenderHTML(in Input) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, r.data(in)); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML renders the report to path, replacing any existing file, and
// returns the rendered bytes.
func (r *Renderer) WriteHTML(path string, in Input) ([]byte, error) {
	html, err := r.RenderHTML(in)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return html, nil
}

func (r *Renderer) data(in Input) htmlData {
	badge := Status(in.Results, in.Coverage, r.Threshold)

	d := htmlData{
		Branch:      in.Git.Branch,
		Author:      in.Git.Author,
		StatusText:  badge.Text,
		StatusColor: template.CSS(badge.Color),
		Commit:      truncate(in.Git.CommitMessage, CommitChars),
		HasResults:  in.Results != nil,
		Churn:       in.Git.Churn,
		Model:       r.Model,
	}
	if d.Commit == "" {
		d.Commit = "No commit message"
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	d.GeneratedAt = now().UTC().Format(TimestampLayout)

	if in.Results != nil {
		d.Total = in.Results.Summary.Total
		d.Passed = in.Results.Summary.Passed
		d.Failed = in.Results.Summary.Failed
		if in.Results.HasFailures() {
			for _, tc := range in.Results.FailedTests() {
				d.FailedTests = append(d.FailedTests, failedView{
					Name:    tc.Name(),
					Path:    tc.FilePath(),
					Message: truncate(tc.CrashMessage, FailureChars),
				})
			}
		}
	}

	if in.Coverage != nil {
		d.HasCoverage = true
		d.CoveragePct = fmt.Sprintf("%.1f", in.Coverage.Percent())
		d.CoverageFailed = in.Coverage.Below(r.Threshold)
		d.ThresholdPct = fmt.Sprintf("%.1f", r.Threshold*100)
	}

	if a := in.Analysis; a != nil {
		d.Structured = true
		d.Summary = orDefault(a.Summary, "No summary available")
		level := a.RiskLevel
		if level == "" {
			level = models.RiskMedium
		}
		d.RiskLevel = string(level)
		d.RiskColor = template.CSS(RiskColor(level))
		d.RiskReasons = a.RiskReasons
		d.FailureAnalysis = a.FailedTestsAnalysis
		d.Regression = orDefault(a.RegressionCheck, "No regression analysis available")
		d.Recommendations = a.Recommendations
		d.QuickFixes = a.QuickFixes
	} else {
		d.RawAnalysis = orDefault(in.RawAnalysis, "No analysis available")
		d.RiskColor = template.CSS(ColorAmber)
	}
	return d
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
