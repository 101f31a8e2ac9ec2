package database

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/activitymon/internal/models"
)

// DefaultRecentLimit caps Recent when the caller passes a non-positive limit.
const DefaultRecentLimit = 50

// Repository is the diagnostics journal. It stores probe and report
// failures so they can be inspected after the fact.
type Repository struct {
	db     *DB
	logger *zap.Logger
	now    func() time.Time
}

// NewRepository creates a new repository instance
func NewRepository(db *DB, logger *zap.Logger) *Repository {
	return &Repository{db: db, logger: logger, now: time.Now}
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// Record journals err under source. Failures to write are logged and
// otherwise swallowed; the journal never affects the caller's outcome.
func (r *Repository) Record(source, sessionID string, err error) {
	if err == nil {
		return
	}
	entry := &models.ErrorLog{
		Timestamp: r.now(),
		Source:    source,
		SessionID: sessionID,
		ErrorMsg:  err.Error(),
	}
	if dbErr := r.CreateErrorLog(entry); dbErr != nil {
		r.logger.Warn("failed to journal error",
			zap.String("source", source),
			zap.NamedError("original", err),
			zap.Error(dbErr))
	}
}

// Recent returns up to limit journal entries, newest first.
func (r *Repository) Recent(limit int) ([]models.ErrorLog, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	var logs []models.ErrorLog
	result := r.db.Order("timestamp DESC").Order("id DESC").Limit(limit).Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// CountSince returns how many errors were journaled at or after since.
func (r *Repository) CountSince(since time.Time) (int64, error) {
	var count int64
	result := r.db.Model(&models.ErrorLog{}).Where("timestamp >= ?", since).Count(&count)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to count error logs")
	}
	return count, nil
}

// DeleteOlderThan removes entries recorded before the cutoff.
func (r *Repository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Unscoped().Where("timestamp < ?", before).Delete(&models.ErrorLog{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old error logs")
	}
	return result.RowsAffected, nil
}

// Clear removes all journal entries
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM error_logs")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear error logs")
	}
	return nil
}
