package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kamilpajak/ciscope/pkg/models"
)

// DefaultListLimit caps ListRuns when no limit is given.
const DefaultListLimit = 20

// Run is one analyzed pipeline run.
type Run struct {
	ID            uuid.UUID
	Branch        string
	Author        string
	CommitMessage string
	Status        string
	Total         int
	Passed        int
	Failed        int
	Duration      float64
	LineRate      *float64
	RiskLevel     string
	Source        string
	Model         string
	Analysis      *models.AnalysisResult
	CreatedAt     time.Time
}

// CreateRunParams contains parameters for recording a run.
type CreateRunParams struct {
	Git      models.GitContext
	Results  *models.TestResults
	Coverage *models.CoverageInfo
	Status   string
	Source   string
	Model    string
	Analysis *models.AnalysisResult
}

const runColumns = `id, branch, author, commit_message, status, total, passed, failed,
	duration_seconds, line_rate, risk_level, source, model, analysis, created_at`

func scanRun(row pgx.Row) (*Run, error) {
	var r Run
	var analysisJSON []byte
	err := row.Scan(
		&r.ID, &r.Branch, &r.Author, &r.CommitMessage, &r.Status, &r.Total, &r.Passed, &r.Failed,
		&r.Duration, &r.LineRate, &r.RiskLevel, &r.Source, &r.Model, &analysisJSON, &r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if analysisJSON != nil {
		r.Analysis = &models.AnalysisResult{}
		if err := json.Unmarshal(analysisJSON, r.Analysis); err != nil {
			return nil, fmt.Errorf("failed to decode analysis: %w", err)
		}
	}
	return &r, nil
}

// CreateRun stores a run and returns it as persisted.
func (db *DB) CreateRun(ctx context.Context, params CreateRunParams) (*Run, error) {
	var analysisJSON []byte
	risk := string(models.RiskMedium)
	if params.Analysis != nil {
		var err error
		analysisJSON, err = json.Marshal(params.Analysis)
		if err != nil {
			return nil, fmt.Errorf("failed to encode analysis: %w", err)
		}
		if params.Analysis.RiskLevel != "" {
			risk = string(params.Analysis.RiskLevel)
		}
	}

	var summary models.TestRunSummary
	if params.Results != nil {
		summary = params.Results.Summary
	}
	var lineRate *float64
	if params.Coverage != nil {
		rate := params.Coverage.LineRate
		lineRate = &rate
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO analysis_runs (id, branch, author, commit_message, status, total, passed, failed,
		 duration_seconds, line_rate, risk_level, source, model, analysis)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+runColumns,
		uuid.New(), params.Git.Branch, params.Git.Author, params.Git.CommitMessage, params.Status,
		summary.Total, summary.Passed, summary.Failed, summary.Duration, lineRate,
		risk, params.Source, params.Model, analysisJSON,
	)
	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// GetRun returns a run by ID, or nil if it does not exist.
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM analysis_runs WHERE id = $1`, id)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first. An empty branch lists all branches.
func (db *DB) ListRuns(ctx context.Context, branch string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM analysis_runs
		 WHERE $1 = '' OR branch = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		branch, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}
