package models

import "strings"

// Outcome is the result of a single test case as reported by pytest.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// NodeIDSeparator joins the segments of a pytest node id.
const NodeIDSeparator = "::"

// DefaultCoverageThreshold is the minimum line rate before coverage counts as failing.
const DefaultCoverageThreshold = 0.70

// TestRunSummary holds the aggregate counts of a test run.
type TestRunSummary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Duration float64 `json:"duration"` // seconds
}

// TestCaseResult represents a single test from the results document.
type TestCaseResult struct {
	NodeID       string  `json:"nodeid"`
	Outcome      Outcome `json:"outcome"`
	LongRepr     string  `json:"longrepr,omitempty"`      // call.longrepr
	CrashMessage string  `json:"crash_message,omitempty"` // call.crash.message
}

// Name returns the last node id segment, or the whole id when it has no segments.
func (t TestCaseResult) Name() string {
	parts := strings.Split(t.NodeID, NodeIDSeparator)
	if len(parts) > 1 {
		return parts[len(parts)-1]
	}
	return t.NodeID
}

// FilePath returns the grouping path of the test: the file segment of the node id.
func (t TestCaseResult) FilePath() string {
	parts := strings.Split(t.NodeID, NodeIDSeparator)
	if len(parts) > 1 {
		return parts[0]
	}
	return ""
}

// IsFailed reports whether the test failed.
func (t TestCaseResult) IsFailed() bool {
	return t.Outcome == OutcomeFailed
}

// TestResults is the normalized test-results document.
type TestResults struct {
	Summary TestRunSummary   `json:"summary"`
	Tests   []TestCaseResult `json:"tests"`
}

// HasFailures returns true if the summary reports any failed test.
func (r *TestResults) HasFailures() bool {
	return r != nil && r.Summary.Failed > 0
}

// FailedTests returns all failed test cases in document order.
func (r *TestResults) FailedTests() []TestCaseResult {
	if r == nil {
		return nil
	}
	var failed []TestCaseResult
	for _, tc := range r.Tests {
		if tc.IsFailed() {
			failed = append(failed, tc)
		}
	}
	return failed
}

// CoverageInfo is the overall line coverage of a Cobertura report.
type CoverageInfo struct {
	LineRate float64 `json:"line_rate"` // 0..1
}

// Percent returns the line rate as a percentage.
func (c *CoverageInfo) Percent() float64 {
	if c == nil {
		return 0
	}
	return c.LineRate * 100
}

// Below reports whether coverage is under threshold. Missing coverage never fails.
func (c *CoverageInfo) Below(threshold float64) bool {
	return c != nil && c.LineRate < threshold
}

// FileChurn counts the lines added and deleted in one changed file.
type FileChurn struct {
	Path    string `json:"path"`
	Added   int    `json:"added"`
	Deleted int    `json:"deleted"`
}

// GitContext is the git metadata of the commit under test.
type GitContext struct {
	CommitMessage string      `json:"commit_message"`
	DiffStat      string      `json:"diff_stat"`
	ChangedFiles  []string    `json:"changed_files"`
	Branch        string      `json:"branch"`
	Author        string      `json:"author"`
	Churn         []FileChurn `json:"churn,omitempty"`
}
