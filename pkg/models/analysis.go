package models

// RiskLevel represents the risk the model assigns to a change
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// AnalysisResult is the structured analysis returned by the model.
// Field names match the JSON shape requested in the prompt.
type AnalysisResult struct {
	Summary             string    `json:"summary"`
	RiskLevel           RiskLevel `json:"risk_level"`
	RiskReasons         []string  `json:"risk_reasons"`
	FailedTestsAnalysis string    `json:"failed_tests_analysis"`
	RegressionCheck     string    `json:"regression_check"`
	Recommendations     []string  `json:"recommendations"`
	QuickFixes          []string  `json:"quick_fixes"`
}
