package database

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/kamilpajak/ciscope/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// testDatabaseURL returns DATABASE_URL, or starts a throwaway Postgres container.
// Tests are skipped when neither is available.
func testDatabaseURL(t *testing.T) string {
	t.Helper()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	if testing.Short() {
		t.Skip("DATABASE_URL not set")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("ciscope"),
		postgres.WithUsername("ciscope"),
		postgres.WithPassword("ciscope"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dbURL, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dbURL
}

// testDB returns a migrated, connected DB.
func testDB(t *testing.T) *DB {
	t.Helper()
	dbURL := testDatabaseURL(t)

	db, err := Open(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrations(t *testing.T) {
	dbURL := testDatabaseURL(t)

	// Up twice is a no-op the second time
	require.NoError(t, Migrate(dbURL))
	require.NoError(t, Migrate(dbURL))

	version, dirty, err := SchemaVersion(dbURL)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, MigrateDown(dbURL))
	version, _, err = SchemaVersion(dbURL)
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, Migrate(dbURL))
}

func TestOpen_MigratesFreshDatabase(t *testing.T) {
	dbURL := testDatabaseURL(t)
	require.NoError(t, MigrateDown(dbURL))

	db, err := Open(context.Background(), dbURL)
	require.NoError(t, err)
	defer db.Close()

	version, _, err := SchemaVersion(dbURL)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	runs, err := db.ListRuns(context.Background(), "", 1)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(runs), 1)
}

func TestRunCRUD(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	branch := "feature-" + uuid.New().String()[:8]

	analysis := &models.AnalysisResult{
		Summary:     "One regression.",
		RiskLevel:   models.RiskHigh,
		RiskReasons: []string{"Calculator changed"},
		QuickFixes:  []string{},
	}
	run, err := db.CreateRun(ctx, CreateRunParams{
		Git:      models.GitContext{Branch: branch, Author: "Jane", CommitMessage: "Fix add"},
		Results:  &models.TestResults{Summary: models.TestRunSummary{Total: 3, Passed: 2, Failed: 1, Duration: 0.4}},
		Coverage: &models.CoverageInfo{LineRate: 0.69},
		Status:   "FAILED",
		Source:   "parsed",
		Model:    "claude-3-5-haiku-20241022",
		Analysis: analysis,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, "HIGH", run.RiskLevel)
	assert.Equal(t, 1, run.Failed)
	require.NotNil(t, run.LineRate)
	assert.InDelta(t, 0.69, *run.LineRate, 1e-9)
	require.NotNil(t, run.Analysis)
	assert.Equal(t, "One regression.", run.Analysis.Summary)

	found, err := db.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, run.ID, found.ID)
	assert.Equal(t, "Fix add", found.CommitMessage)

	missing, err := db.GetRun(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	second, err := db.CreateRun(ctx, CreateRunParams{
		Git:    models.GitContext{Branch: branch, Author: "Jane", CommitMessage: "No results"},
		Status: "UNKNOWN",
		Source: "fallback",
	})
	require.NoError(t, err)
	assert.Equal(t, "MEDIUM", second.RiskLevel)
	assert.Nil(t, second.LineRate)
	assert.Nil(t, second.Analysis)

	runs, err := db.ListRuns(ctx, branch, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, run.ID, runs[1].ID)

	limited, err := db.ListRuns(ctx, branch, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := db.ListRuns(ctx, "no-such-branch-"+uuid.New().String(), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
