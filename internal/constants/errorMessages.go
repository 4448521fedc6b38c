package constants

const (
	MsgDatabaseError    = "database error"
	MsgInvalidClusterID = "cluster_id must be an integer"
	MsgInvalidLimit     = "limit must be a positive integer"
	MsgServiceAlive     = "airlines API is alive"
	MsgServiceDegraded  = "airlines API is up but the warehouse is unreachable"
)
