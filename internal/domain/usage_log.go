package domain

import "time"

// UsageLogStatus enumerates occupancy record states.
type UsageLogStatus string

const (
	UsageLogStatusNotStarted UsageLogStatus = "not-started"
	UsageLogStatusInProgress UsageLogStatus = "in-progress"
	UsageLogStatusCompleted  UsageLogStatus = "completed"
)

// Snapshot source markers stamped onto usage logs when billing values freeze.
const (
	SnapshotSourceLive     = "live"
	SnapshotSourceBackfill = "backfill"
)

// UsageLog records an asset's occupancy over an interval, possibly open-ended.
// The snapshot columns are written at most once; first write wins.
type UsageLog struct {
	ID        string
	AssetID   string
	Status    UsageLogStatus
	StartTime time.Time
	EndTime   *time.Time
	CreatedAt time.Time

	HourlyRateCentsSnapshot *int64
	BillableHoursSnapshot   *int64
	CostCentsSnapshot       *int64
	SnapshotAt              *time.Time
	SnapshotSource          *string
}

// OccupiesAt reports whether the log spans the given instant. Future-dated
// start times never occupy (clock-skew guard).
func (l *UsageLog) OccupiesAt(now time.Time) bool {
	if l.Status == UsageLogStatusCompleted {
		return false
	}
	if l.StartTime.After(now) {
		return false
	}
	return l.EndTime == nil || l.EndTime.After(now)
}

// Snapshotted reports whether every snapshot column is already populated.
func (l *UsageLog) Snapshotted() bool {
	return l.HourlyRateCentsSnapshot != nil &&
		l.BillableHoursSnapshot != nil &&
		l.CostCentsSnapshot != nil
}
