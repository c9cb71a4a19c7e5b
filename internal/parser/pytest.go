package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kamilpajak/ciscope/pkg/models"
)

// PytestParser parses pytest-json-report documents
type PytestParser struct{}

// pytestReport represents the raw pytest-json-report structure
type pytestReport struct {
	Duration float64       `json:"duration"`
	Summary  pytestSummary `json:"summary"`
	Tests    []pytestTest  `json:"tests"`
}

type pytestSummary struct {
	Total     int     `json:"total"`
	Passed    int     `json:"passed"`
	Failed    int     `json:"failed"`
	Collected int     `json:"collected"`
	Duration  float64 `json:"duration"`
}

type pytestTest struct {
	NodeID  string      `json:"nodeid"`
	Outcome string      `json:"outcome"`
	Call    *pytestCall `json:"call"`
}

type pytestCall struct {
	Outcome  string          `json:"outcome"`
	LongRepr json.RawMessage `json:"longrepr"`
	Crash    *pytestCrash    `json:"crash"`
}

type pytestCrash struct {
	Path    string `json:"path"`
	LineNo  int    `json:"lineno"`
	Message string `json:"message"`
}

// Parse reads and parses a pytest JSON report file
func (p *PytestParser) Parse(path string) (*models.TestResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	return p.ParseBytes(data)
}

// ParseBytes parses pytest JSON from raw bytes
func (p *PytestParser) ParseBytes(data []byte) (*models.TestResults, error) {
	var raw pytestReport
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return p.normalize(raw), nil
}

func (p *PytestParser) normalize(raw pytestReport) *models.TestResults {
	// pytest-json-report puts duration at the top level; CI wrappers often copy it into summary
	duration := raw.Summary.Duration
	if duration == 0 {
		duration = raw.Duration
	}

	results := &models.TestResults{
		Summary: models.TestRunSummary{
			Total:    raw.Summary.Total,
			Passed:   raw.Summary.Passed,
			Failed:   raw.Summary.Failed,
			Duration: duration,
		},
		Tests: make([]models.TestCaseResult, 0, len(raw.Tests)),
	}

	for _, t := range raw.Tests {
		results.Tests = append(results.Tests, p.normalizeTest(t))
	}

	return results
}

func (p *PytestParser) normalizeTest(raw pytestTest) models.TestCaseResult {
	tc := models.TestCaseResult{
		NodeID:  raw.NodeID,
		Outcome: models.Outcome(raw.Outcome),
	}

	if raw.Call != nil {
		tc.LongRepr = rawText(raw.Call.LongRepr)
		if raw.Call.Crash != nil {
			tc.CrashMessage = raw.Call.Crash.Message
		}
	}

	return tc
}

// rawText returns a JSON string value unquoted, and any other value as its JSON text.
func rawText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}
