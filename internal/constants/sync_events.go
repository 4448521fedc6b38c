package constants

// Sources recorded in warehouse_sync_history
const (
	SyncSourcePipeline  = "PIPELINE"
	SyncSourceScheduled = "SCHEDULED"
	SyncSourceStartup   = "STARTUP"
)

const (
	SyncStatusRunning = "RUNNING"
	SyncStatusOK      = "OK"
	SyncStatusFailed  = "FAILED"
)
