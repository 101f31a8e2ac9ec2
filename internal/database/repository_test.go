package database

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/actionsum/activitymon/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Connect(filepath.Join(t.TempDir(), "diagnostics.db"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db, zap.NewNop())
}

func TestRecordAndRecent(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	repo.Record(models.SourceProbe, "", fmt.Errorf("no foreground window"))
	repo.Record(models.SourceReport, "session-1", fmt.Errorf("remote rejected: 401"))
	repo.Record(models.SourceReport, "session-1", nil)

	logs, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, models.SourceReport, logs[0].Source)
	assert.Equal(t, "session-1", logs[0].SessionID)
	assert.Equal(t, "remote rejected: 401", logs[0].ErrorMsg)
	assert.Equal(t, models.SourceProbe, logs[1].Source)
	assert.Empty(t, logs[1].SessionID)

	logs, err = repo.Recent(1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestCountAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	old := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateErrorLog(&models.ErrorLog{Timestamp: old, Source: models.SourceProbe, ErrorMsg: "old"}))
	require.NoError(t, repo.CreateErrorLog(&models.ErrorLog{Timestamp: recent, Source: models.SourceProbe, ErrorMsg: "new"}))

	count, err := repo.CountSince(recent.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	deleted, err := repo.DeleteOlderThan(recent.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	logs, err := repo.Recent(0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "new", logs[0].ErrorMsg)
}

func TestClear(t *testing.T) {
	repo := newTestRepo(t)
	repo.Record(models.SourceProbe, "", fmt.Errorf("boom"))

	require.NoError(t, repo.Clear())
	logs, err := repo.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestRecordSwallowsWriteFailure(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.db.Close())

	assert.NotPanics(t, func() {
		repo.Record(models.SourceProbe, "", fmt.Errorf("boom"))
	})
}
