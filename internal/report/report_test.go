package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kamilpajak/ciscope/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) }

func passingResults() *models.TestResults {
	return &models.TestResults{
		Summary: models.TestRunSummary{Total: 5, Passed: 5, Failed: 0, Duration: 1.2},
		Tests: []models.TestCaseResult{
			{NodeID: "tests/test_unit.py::test_add", Outcome: models.OutcomePassed},
		},
	}
}

func failingResults() *models.TestResults {
	return &models.TestResults{
		Summary: models.TestRunSummary{Total: 3, Passed: 2, Failed: 1, Duration: 0.4},
		Tests: []models.TestCaseResult{
			{NodeID: "tests/test_x.py::TestA::test_a", Outcome: models.OutcomePassed},
			{NodeID: "tests/test_x.py::TestA::test_b", Outcome: models.OutcomeFailed, CrashMessage: "AssertionError: assert 1 == 2"},
		},
	}
}

func analysis() *models.AnalysisResult {
	return &models.AnalysisResult{
		Summary:         "One regression.",
		RiskLevel:       models.RiskHigh,
		RiskReasons:     []string{"Calculator changed"},
		RegressionCheck: "Existing regression test",
		Recommendations: []string{"Revert"},
		QuickFixes:      []string{"src/calculator.py: return a + b"},
	}
}

func newTestRenderer() *Renderer {
	return &Renderer{Now: fixedNow, Model: "claude-3-5-haiku-20241022", Threshold: models.DefaultCoverageThreshold}
}

func TestStatus(t *testing.T) {
	th := models.DefaultCoverageThreshold
	assert.Equal(t, BadgeUnknown, Status(nil, nil, th))
	assert.Equal(t, BadgePassed, Status(passingResults(), nil, th))
	assert.Equal(t, BadgeFailed, Status(failingResults(), nil, th))
	assert.Equal(t, BadgeFailed, Status(passingResults(), &models.CoverageInfo{LineRate: 0.69}, th))
	assert.Equal(t, BadgePassed, Status(passingResults(), &models.CoverageInfo{LineRate: 0.70}, th))

	assert.Equal(t, ColorGreen, BadgePassed.Color)
	assert.Equal(t, ColorRed, BadgeFailed.Color)
	assert.Equal(t, ColorAmber, BadgeUnknown.Color)
}

func TestRiskColor(t *testing.T) {
	assert.Equal(t, "#22c55e", RiskColor(models.RiskLow))
	assert.Equal(t, "#f59e0b", RiskColor(models.RiskMedium))
	assert.Equal(t, "#ef4444", RiskColor(models.RiskHigh))
	assert.Equal(t, "#f59e0b", RiskColor("CRITICAL"))
	assert.Equal(t, "#f59e0b", RiskColor(""))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 0, ExitCode(passingResults()))
	assert.Equal(t, 1, ExitCode(failingResults()))
	// coverage never changes the exit code
	assert.Equal(t, 0, ExitCode(&models.TestResults{Summary: models.TestRunSummary{Total: 1, Passed: 1}}))
}

func TestRenderHTML_Passed(t *testing.T) {
	html, err := newTestRenderer().RenderHTML(Input{
		Git:      models.GitContext{CommitMessage: "Fix add", Branch: "main", Author: "Jane"},
		Results:  passingResults(),
		Analysis: analysis(),
	})
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, `<span class="status-badge">PASSED</span>`)
	assert.Contains(t, out, "background: #22c55e;")
	assert.Contains(t, out, "✓ All tests passed successfully")
	assert.Contains(t, out, "Generated: 2025-03-14 09:26:53 UTC")
	assert.Contains(t, out, "Model: claude-3-5-haiku-20241022")
	assert.NotContains(t, out, "Coverage")
}

func TestRenderHTML_FailedTest(t *testing.T) {
	html, err := newTestRenderer().RenderHTML(Input{Results: failingResults(), Analysis: analysis()})
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, `<span class="status-badge">FAILED</span>`)
	assert.Contains(t, out, "<strong>test_b</strong>")
	assert.Contains(t, out, "📁 tests/test_x.py</div>")
	assert.Contains(t, out, "AssertionError: assert 1 == 2")
	assert.Contains(t, out, `<span class="risk-badge">HIGH</span>`)
	assert.Contains(t, out, "background: #ef4444;")
}

func TestRenderHTML_FailedCountWithoutEntries(t *testing.T) {
	results := &models.TestResults{
		Summary: models.TestRunSummary{Total: 3, Passed: 2, Failed: 1},
		Tests:   []models.TestCaseResult{},
	}
	html, err := newTestRenderer().RenderHTML(Input{Results: results, Analysis: analysis()})
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, `<span class="status-badge">FAILED</span>`)
	assert.Contains(t, out, "1 failed, failure details unavailable")
	assert.NotContains(t, out, "All tests passed successfully")
}

func TestRenderHTML_Unknown(t *testing.T) {
	html, err := newTestRenderer().RenderHTML(Input{Analysis: analysis()})
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, `<span class="status-badge">UNKNOWN</span>`)
	assert.Contains(t, out, "background: #f59e0b;")
	assert.Contains(t, out, "No test results found")
	assert.Contains(t, out, "📝 No commit message")
}

func TestRenderHTML_EmptyListsRenderPlaceholders(t *testing.T) {
	fallback := &models.AnalysisResult{
		Summary:             "raw reply",
		RiskLevel:           models.RiskMedium,
		FailedTestsAnalysis: "See raw output",
		RegressionCheck:     "Manual review required",
		QuickFixes:          []string{},
	}
	html, err := newTestRenderer().RenderHTML(Input{Results: passingResults(), Analysis: fallback})
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, "No risk factors identified")
	assert.Contains(t, out, "No recommendations")
	assert.Contains(t, out, "No quick fixes suggested")
	assert.Contains(t, out, "See raw output")
}

func TestRenderHTML_RawAnalysis(t *testing.T) {
	html, err := newTestRenderer().RenderHTML(Input{Results: passingResults(), RawAnalysis: "free-form reply"})
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, "free-form reply")
	assert.NotContains(t, out, "Risk Assessment")
	assert.NotContains(t, out, "Quick Fixes")
}

func TestRenderHTML_Truncation(t *testing.T) {
	results := failingResults()
	results.Tests[1].CrashMessage = strings.Repeat("m", 400)
	html, err := newTestRenderer().RenderHTML(Input{
		Git:      models.GitContext{CommitMessage: strings.Repeat("c", 300)},
		Results:  results,
		Analysis: analysis(),
	})
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, "📝 "+strings.Repeat("c", 100)+"</div>")
	assert.NotContains(t, out, strings.Repeat("c", 101))
	assert.Contains(t, out, "💬 "+strings.Repeat("m", 150)+"</div>")
	assert.NotContains(t, out, strings.Repeat("m", 151))
}

func TestRenderHTML_Coverage(t *testing.T) {
	r := newTestRenderer()

	low, err := r.RenderHTML(Input{Results: passingResults(), Coverage: &models.CoverageInfo{LineRate: 0.69}, Analysis: analysis()})
	require.NoError(t, err)
	assert.Contains(t, string(low), "69.0%")
	assert.Contains(t, string(low), "Coverage Below Threshold")
	assert.Contains(t, string(low), `<span class="status-badge">FAILED</span>`)

	ok, err := r.RenderHTML(Input{Results: passingResults(), Coverage: &models.CoverageInfo{LineRate: 0.70}, Analysis: analysis()})
	require.NoError(t, err)
	assert.Contains(t, string(ok), "70.0%")
	assert.NotContains(t, string(ok), "Coverage Below Threshold")
	assert.Contains(t, string(ok), `<span class="status-badge">PASSED</span>`)
}

func TestRenderHTML_EscapesModelOutput(t *testing.T) {
	a := analysis()
	a.Summary = "<script>alert(1)</script>"
	html, err := newTestRenderer().RenderHTML(Input{Results: passingResults(), Analysis: a})
	require.NoError(t, err)

	assert.NotContains(t, string(html), "<script>alert(1)</script>")
	assert.Contains(t, string(html), "&lt;script&gt;")
}

func TestRenderHTML_Churn(t *testing.T) {
	html, err := newTestRenderer().RenderHTML(Input{
		Git:      models.GitContext{Churn: []models.FileChurn{{Path: "src/calculator.py", Added: 2, Deleted: 1}}},
		Results:  passingResults(),
		Analysis: analysis(),
	})
	require.NoError(t, err)
	assert.Contains(t, string(html), "<code>src/calculator.py</code>")
	assert.Contains(t, string(html), "+2")
}

func TestWriteHTML_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis-report.html")
	in := Input{Git: models.GitContext{CommitMessage: "Fix add"}, Results: failingResults(), Analysis: analysis()}
	r := newTestRenderer()

	first, err := r.WriteHTML(path, in)
	require.NoError(t, err)
	second, err := r.WriteHTML(path, in)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, second, onDisk)
}

func TestWriteHTML_BadPath(t *testing.T) {
	_, err := newTestRenderer().WriteHTML(filepath.Join(t.TempDir(), "missing", "report.html"), Input{})
	require.Error(t, err)
}

func TestRenderMarkdown_NoResults(t *testing.T) {
	assert.Equal(t, "No test results found\n", RenderMarkdown(nil, nil, models.DefaultCoverageThreshold))
}

func TestRenderMarkdown_Passed(t *testing.T) {
	md := RenderMarkdown(passingResults(), nil, models.DefaultCoverageThreshold)

	expected := "## ✅ PASSED - CI/CD Analysis Report\n\n" +
		"| Metric | Count |\n" +
		"|--------|-------|\n" +
		"| 📊 Total Tests | 5 |\n" +
		"| ✅ Passed | 5 |\n" +
		"| ❌ Failed | 0 |\n" +
		"\n" +
		"---\n" +
		ArtifactsPointer + "\n"
	assert.Equal(t, expected, md)
}

func TestRenderMarkdown_Failed(t *testing.T) {
	results := failingResults()
	results.Tests = append(results.Tests, models.TestCaseResult{NodeID: "test_flat", Outcome: models.OutcomeFailed})
	results.Summary.Failed = 2

	md := RenderMarkdown(results, nil, models.DefaultCoverageThreshold)

	assert.True(t, strings.HasPrefix(md, "## ❌ FAILED - CI/CD Analysis Report\n"))
	assert.Contains(t, md, "### ❌ Failed Tests\n\n")
	assert.Contains(t, md, "- **test_b**\n  - 📁 `tests/test_x.py`\n  - 💬 `AssertionError: assert 1 == 2`\n\n")
	assert.Contains(t, md, "- **test_flat**\n  - 📁 ``\n\n")
	assert.NotContains(t, md, "test_a")
}

func TestRenderMarkdown_Coverage(t *testing.T) {
	low := RenderMarkdown(passingResults(), &models.CoverageInfo{LineRate: 0.69}, 0.70)
	assert.Contains(t, low, "## ❌ FAILED")
	assert.Contains(t, low, "| 📈 Coverage | 69.0% |\n")
	assert.Contains(t, low, "Line coverage 69.0% is below the required 70.0%.")

	ok := RenderMarkdown(passingResults(), &models.CoverageInfo{LineRate: 0.70}, 0.70)
	assert.Contains(t, ok, "## ✅ PASSED")
	assert.Contains(t, ok, "| 📈 Coverage | 70.0% |\n")
	assert.NotContains(t, ok, "below the required")
}
