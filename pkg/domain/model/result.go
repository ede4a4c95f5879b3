package model

// BackupStatus tracks how far a target progressed through the pipeline
type BackupStatus string

const (
	StatusPending    BackupStatus = "pending"
	StatusFetched    BackupStatus = "fetched"
	StatusSkipped    BackupStatus = "skipped"
	StatusCollecting BackupStatus = "collecting"
	StatusArchiving  BackupStatus = "archiving"
	StatusPublishing BackupStatus = "publishing"
	StatusDone       BackupStatus = "done"
	StatusFailed     BackupStatus = "failed"
)

// BackupResult records the outcome of processing one target in one run
type BackupResult struct {
	Target    Target
	Status    BackupStatus
	BackupTag string
	// OriginalTag is the upstream release tag, when one was found
	OriginalTag string
	// AssetCount is the number of assets successfully collected
	AssetCount int
	// Err is set when Status is StatusFailed
	Err error
}
