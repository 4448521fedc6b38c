package gorm

import "time"

// SyncHistory records one warehouse load.
type SyncHistory struct {
	ID         string     `gorm:"column:id;primaryKey;type:varchar(36)"`
	Source     string     `gorm:"column:source;type:varchar(32);not null"`
	Status     string     `gorm:"column:status;type:varchar(16);not null"`
	RowsLoaded int        `gorm:"column:rows_loaded"`
	Error      string     `gorm:"column:error;type:text"`
	StartedAt  time.Time  `gorm:"column:started_at;not null"`
	FinishedAt *time.Time `gorm:"column:finished_at"`
}

// TableName specifies the table name for GORM
func (SyncHistory) TableName() string {
	return "warehouse_sync_history"
}
