package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kamilpajak/ciscope/pkg/models"
)

// OutputTailChars is how much of the raw test output the prompt carries.
const OutputTailChars = 2000

const promptTemplate = `You are a DevOps assistant analyzing CI/CD pipeline results.
Provide a concise, actionable analysis for the engineering team.

## Git Changes
Commit message: %s

Files changed:
%s

Changed files list: %s

## Test Results
- Total tests: %d
- Passed: %d
- Failed: %d
- Duration: %.2fs

## Failed Tests Details
%s

## Raw Test Output (last 2000 chars)
%s
%s
---

Please provide your analysis in the following JSON format (respond ONLY with valid JSON, no markdown):
{
    "summary": "2-3 sentence summary of what changed and overall test status",
    "risk_level": "LOW|MEDIUM|HIGH",
    "risk_reasons": ["reason 1", "reason 2"],
    "failed_tests_analysis": "Analysis of why tests failed and correlation with changes (or 'No failures detected' if all passed)",
    "regression_check": "Whether failures are in new tests or existing regression tests",
    "recommendations": ["recommendation 1", "recommendation 2"],
    "quick_fixes": ["file: fix description", "file: fix description"]
}

Keep it concise and actionable. No fluff.`

type failedTest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// BuildPrompt renders the analysis request. The output depends only on its inputs.
func BuildPrompt(in Input) string {
	changed := "None detected"
	if len(in.Git.ChangedFiles) > 0 {
		changed = strings.Join(in.Git.ChangedFiles, ", ")
	}

	var summary models.TestRunSummary
	if in.Results != nil {
		summary = in.Results.Summary
	}

	output := "No output"
	if in.Output != "" {
		output = Tail(in.Output, OutputTailChars)
	}

	return fmt.Sprintf(promptTemplate,
		in.Git.CommitMessage,
		in.Git.DiffStat,
		changed,
		summary.Total, summary.Passed, summary.Failed, summary.Duration,
		failedTestsJSON(in.Results),
		output,
		churnSection(in.Git.Churn),
	)
}

func failedTestsJSON(results *models.TestResults) string {
	failed := results.FailedTests()
	if len(failed) == 0 {
		return "No failures"
	}

	list := make([]failedTest, 0, len(failed))
	for _, tc := range failed {
		msg := tc.LongRepr
		if msg == "" {
			msg = "No details"
		}
		list = append(list, failedTest{Name: tc.NodeID, Message: msg})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		return "No failures"
	}
	return strings.TrimRight(buf.String(), "\n")
}

// churnSection lists per-file line churn when the diff could be parsed.
func churnSection(churn []models.FileChurn) string {
	if len(churn) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n## Line Churn\n")
	for _, fc := range churn {
		fmt.Fprintf(&sb, "- %s: +%d -%d\n", fc.Path, fc.Added, fc.Deleted)
	}
	sb.WriteString("\n")
	return sb.String()
}

// Tail returns the last n runes of s.
func Tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// Head returns the first n runes of s.
func Head(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
