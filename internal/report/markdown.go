package report

import (
	"fmt"
	"strings"

	"github.com/kamilpajak/ciscope/pkg/models"
)

// ArtifactsPointer closes every Markdown summary.
const ArtifactsPointer = "📎 Download full HTML report from **Artifacts** section above"

// RenderMarkdown renders the CI job summary: a metrics table followed by the
// failed tests grouped by file.
func RenderMarkdown(results *models.TestResults, coverage *models.CoverageInfo, threshold float64) string {
	if results == nil {
		return "No test results found\n"
	}

	var sb strings.Builder
	s := results.Summary

	badge := Status(results, coverage, threshold)
	status := "✅ PASSED"
	if badge == BadgeFailed {
		status = "❌ FAILED"
	}

	fmt.Fprintf(&sb, "## %s - CI/CD Analysis Report\n\n", status)
	sb.WriteString("| Metric | Count |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| 📊 Total Tests | %d |\n", s.Total)
	fmt.Fprintf(&sb, "| ✅ Passed | %d |\n", s.Passed)
	fmt.Fprintf(&sb, "| ❌ Failed | %d |\n", s.Failed)
	if coverage != nil {
		fmt.Fprintf(&sb, "| 📈 Coverage | %.1f%% |\n", coverage.Percent())
	}
	sb.WriteString("\n")

	if coverage.Below(threshold) {
		sb.WriteString("### ⚠️ Coverage below threshold\n\n")
		fmt.Fprintf(&sb, "Line coverage %.1f%% is below the required %.1f%%.\n\n", coverage.Percent(), threshold*100)
	}

	if results.HasFailures() {
		sb.WriteString("### ❌ Failed Tests\n\n")
		for _, tc := range results.FailedTests() {
			fmt.Fprintf(&sb, "- **%s**\n", tc.Name())
			fmt.Fprintf(&sb, "  - 📁 `%s`\n", tc.FilePath())
			if msg := truncate(tc.CrashMessage, FailureChars); msg != "" {
				fmt.Fprintf(&sb, "  - 💬 `%s`\n", msg)
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("---\n")
	sb.WriteString(ArtifactsPointer + "\n")
	return sb.String()
}
