// Package collector gathers git metadata and test artifacts from the working tree.
//
// Collection is best-effort: unavailable git data and missing artifacts degrade
// to sentinel values. The only error surfaced is a malformed test-results document.
package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kamilpajak/ciscope/internal/parser"
	"github.com/kamilpajak/ciscope/pkg/models"
	"github.com/rs/zerolog"
)

// NoTestOutput is returned when the raw test output file is absent.
const NoTestOutput = "No test output available"

// Paths locates the test artifacts of a run.
type Paths struct {
	Results  string
	Output   string
	Coverage string // empty skips coverage
}

// Facts is everything collected for one pipeline run.
type Facts struct {
	Git      models.GitContext
	Results  *models.TestResults  // nil when no results document exists
	Output   string
	Coverage *models.CoverageInfo // nil when no coverage report exists
}

// Collector reads git history through a Runner and artifacts from disk.
type Collector struct {
	repoDir  string
	runner   Runner
	logger   zerolog.Logger
	pytest   parser.PytestParser
	coverage parser.CoberturaParser
}

// New creates a Collector for the repository at repoDir.
func New(logger zerolog.Logger, repoDir string, runner Runner) *Collector {
	if runner == nil {
		runner = ExecRunner{}
	}
	if repoDir == "" {
		repoDir = "."
	}
	return &Collector{repoDir: repoDir, runner: runner, logger: logger}
}

// Collect gathers git context and test artifacts.
func (c *Collector) Collect(ctx context.Context, paths Paths) (*Facts, error) {
	results, err := c.ReadTestResults(paths.Results)
	if err != nil {
		return nil, err
	}

	facts := &Facts{
		Git:     c.CollectGit(ctx),
		Results: results,
		Output:  c.ReadTestOutput(paths.Output),
	}
	if paths.Coverage != "" {
		facts.Coverage = c.ReadCoverage(paths.Coverage)
	}
	return facts, nil
}

// ReadTestResults parses the pytest JSON document at path.
// A missing file yields nil without error; a malformed one is an error.
func (c *Collector) ReadTestResults(path string) (*models.TestResults, error) {
	if !exists(path) {
		c.logger.Debug().Str("path", path).Msg("No test results document")
		return nil, nil
	}

	results, err := c.pytest.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return results, nil
}

// ReadTestOutput returns the raw test log, or NoTestOutput when absent.
func (c *Collector) ReadTestOutput(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn().Err(err).Str("path", path).Msg("Failed to read test output")
		}
		return NoTestOutput
	}
	return string(data)
}

// ReadCoverage parses a Cobertura report. Missing or unreadable coverage yields nil.
func (c *Collector) ReadCoverage(path string) *models.CoverageInfo {
	if !exists(path) {
		return nil
	}

	cov, err := c.coverage.Parse(path)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("Ignoring coverage report")
		return nil
	}
	return cov
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
