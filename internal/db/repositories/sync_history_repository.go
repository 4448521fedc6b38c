package repositories

import (
	"context"
	"errors"
	"time"

	"fleet-analytics/modernity/internal/constants"
	"fleet-analytics/modernity/internal/models/gorm"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// SyncHistoryRepo records warehouse loads
type SyncHistoryRepo struct {
	db *gormlib.DB
}

func NewSyncHistoryRepo(db *gormlib.DB) *SyncHistoryRepo {
	return &SyncHistoryRepo{db: db}
}

// Migrate creates the history table.
func (r *SyncHistoryRepo) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&gorm.SyncHistory{})
}

// Start inserts a RUNNING entry and returns its id.
func (r *SyncHistoryRepo) Start(ctx context.Context, source string) (string, error) {
	entry := gorm.SyncHistory{
		ID:        uuid.NewString(),
		Source:    source,
		Status:    constants.SyncStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return "", err
	}
	return entry.ID, nil
}

// Finish closes an entry as OK, or FAILED when runErr is set.
func (r *SyncHistoryRepo) Finish(ctx context.Context, id string, rows int, runErr error) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":      constants.SyncStatusOK,
		"rows_loaded": rows,
		"finished_at": &now,
		"error":       "",
	}
	if runErr != nil {
		updates["status"] = constants.SyncStatusFailed
		updates["error"] = runErr.Error()
	}
	return r.db.WithContext(ctx).
		Model(&gorm.SyncHistory{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// LastSuccess returns the finish time of the latest OK load, or nil.
func (r *SyncHistoryRepo) LastSuccess(ctx context.Context) (*time.Time, error) {
	var entry gorm.SyncHistory
	err := r.db.WithContext(ctx).
		Where("status = ?", constants.SyncStatusOK).
		Order("finished_at DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry.FinishedAt, nil
}
