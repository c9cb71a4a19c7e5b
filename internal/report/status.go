// Package report renders the HTML report and the Markdown job summary of a run.
package report

import "github.com/kamilpajak/ciscope/pkg/models"

// Badge colors.
const (
	ColorGreen = "#22c55e"
	ColorRed   = "#ef4444"
	ColorAmber = "#f59e0b"
)

// Badge is the overall status shown at the top of a report.
type Badge struct {
	Text  string
	Color string
}

var (
	BadgePassed  = Badge{Text: "PASSED", Color: ColorGreen}
	BadgeFailed  = Badge{Text: "FAILED", Color: ColorRed}
	BadgeUnknown = Badge{Text: "UNKNOWN", Color: ColorAmber}
)

// Status derives the run badge. Without a results document the run is UNKNOWN.
// Failed tests or coverage under threshold make it FAILED.
func Status(results *models.TestResults, coverage *models.CoverageInfo, threshold float64) Badge {
	switch {
	case results == nil:
		return BadgeUnknown
	case results.HasFailures(), coverage.Below(threshold):
		return BadgeFailed
	default:
		return BadgePassed
	}
}

// RiskColor maps a risk level to its badge color. Unknown levels are amber.
func RiskColor(level models.RiskLevel) string {
	switch level {
	case models.RiskLow:
		return ColorGreen
	case models.RiskHigh:
		return ColorRed
	default:
		return ColorAmber
	}
}

// ExitCode is 1 when any test failed and 0 otherwise.
func ExitCode(results *models.TestResults) int {
	if results.HasFailures() {
		return 1
	}
	return 0
}
