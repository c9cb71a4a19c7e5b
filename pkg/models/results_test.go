package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestCaseResult_NameAndFilePath(t *testing.T) {
	tests := []struct {
		nodeID   string
		name     string
		filePath string
	}{
		{"tests/test_x.py::TestA::test_b", "test_b", "tests/test_x.py"},
		{"tests/test_unit.py::test_add", "test_add", "tests/test_unit.py"},
		{"test_standalone", "test_standalone", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.nodeID, func(t *testing.T) {
			tc := TestCaseResult{NodeID: tt.nodeID}
			assert.Equal(t, tt.name, tc.Name())
			assert.Equal(t, tt.filePath, tc.FilePath())
		})
	}
}

func TestTestResults_FailedTests(t *testing.T) {
	r := &TestResults{
		Summary: TestRunSummary{Total: 3, Passed: 1, Failed: 1},
		Tests: []TestCaseResult{
			{NodeID: "a::one", Outcome: OutcomePassed},
			{NodeID: "a::two", Outcome: OutcomeFailed},
			{NodeID: "a::three", Outcome: OutcomeSkipped},
		},
	}

	failed := r.FailedTests()
	assert.Len(t, failed, 1)
	assert.Equal(t, "two", failed[0].Name())
	assert.True(t, r.HasFailures())
}

func TestTestResults_NilSafe(t *testing.T) {
	var r *TestResults
	assert.False(t, r.HasFailures())
	assert.Nil(t, r.FailedTests())
}

func TestCoverageInfo_Below(t *testing.T) {
	assert.True(t, (&CoverageInfo{LineRate: 0.69}).Below(DefaultCoverageThreshold))
	assert.False(t, (&CoverageInfo{LineRate: 0.70}).Below(DefaultCoverageThreshold))
	assert.False(t, (&CoverageInfo{LineRate: 0.95}).Below(DefaultCoverageThreshold))

	var missing *CoverageInfo
	assert.False(t, missing.Below(DefaultCoverageThreshold))
	assert.Equal(t, 0.0, missing.Percent())
}

func TestCoverageInfo_Percent(t *testing.T) {
	assert.InDelta(t, 82.5, (&CoverageInfo{LineRate: 0.825}).Percent(), 0.0001)
}
