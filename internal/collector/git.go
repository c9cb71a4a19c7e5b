package collector

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/kamilpajak/ciscope/pkg/models"
)

// Sentinels substituted when git metadata is unavailable.
const (
	NoDiff          = "No diff available"
	NoCommitMessage = "No commit message"
	Unknown         = "unknown"
)

// Runner executes an external command in dir and returns its stdout.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args. A non-zero exit is returned as an error carrying stderr.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(out), nil
}

func (c *Collector) git(ctx context.Context, args ...string) (string, error) {
	c.logger.Debug().
		Str("dir", c.repoDir).
		Str("cmd", shellescape.QuoteCommand(append([]string{"git"}, args...))).
		Msg("Running git")

	out, err := c.runner.Run(ctx, c.repoDir, "git", args...)
	if err != nil {
		c.logger.Warn().Err(err).Strs("args", args).Msg("git command failed")
		return "", err
	}
	return out, nil
}

// CollectDiffStatAndCommitMessage returns the diff stat against the previous
// revision and the last commit subject and body.
func (c *Collector) CollectDiffStatAndCommitMessage(ctx context.Context) (diffStat, commitMessage string) {
	diffStat, err := c.git(ctx, "diff", "HEAD~1", "--stat")
	if err != nil {
		diffStat = NoDiff
	}

	commitMessage, err = c.git(ctx, "log", "-1", "--pretty=format:%s%n%b")
	if err != nil {
		commitMessage = NoCommitMessage
	}
	return diffStat, strings.TrimRight(commitMessage, "\n")
}

// CollectChangedFiles lists files changed since the previous revision in git order.
func (c *Collector) CollectChangedFiles(ctx context.Context) []string {
	out, err := c.git(ctx, "diff", "HEAD~1", "--name-only")
	if err != nil {
		return []string{}
	}

	files := []string{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files
}

// CollectBranchAndAuthor returns the current branch and the last commit author.
// Each falls back to "unknown" independently.
func (c *Collector) CollectBranchAndAuthor(ctx context.Context) (branch, author string) {
	branch, author = Unknown, Unknown

	if out, err := c.git(ctx, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		if s := strings.TrimSpace(out); s != "" {
			branch = s
		}
	}
	if out, err := c.git(ctx, "log", "-1", "--pretty=format:%an"); err == nil {
		if s := strings.TrimSpace(out); s != "" {
			author = s
		}
	}
	return branch, author
}

// CollectDiffChurn counts added and deleted lines per file in the last commit.
func (c *Collector) CollectDiffChurn(ctx context.Context) []models.FileChurn {
	out, err := c.git(ctx, "diff", "HEAD~1")
	if err != nil {
		return nil
	}

	files, _, err := gitdiff.Parse(strings.NewReader(out))
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to parse diff")
		return nil
	}

	churn := make([]models.FileChurn, 0, len(files))
	for _, f := range files {
		fc := models.FileChurn{Path: f.NewName}
		if f.IsDelete || fc.Path == "" {
			fc.Path = f.OldName
		}
		for _, frag := range f.TextFragments {
			fc.Added += int(frag.LinesAdded)
			fc.Deleted += int(frag.LinesDeleted)
		}
		churn = append(churn, fc)
	}
	return churn
}

// CollectGit gathers the full git context of the commit under test.
func (c *Collector) CollectGit(ctx context.Context) models.GitContext {
	diffStat, commitMessage := c.CollectDiffStatAndCommitMessage(ctx)
	branch, author := c.CollectBranchAndAuthor(ctx)
	return models.GitContext{
		CommitMessage: commitMessage,
		DiffStat:      diffStat,
		ChangedFiles:  c.CollectChangedFiles(ctx),
		Branch:        branch,
		Author:        author,
		Churn:         c.CollectDiffChurn(ctx),
	}
}
