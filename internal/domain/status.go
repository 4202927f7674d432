package domain

import "time"

// ResolveAssetStatus derives an asset's status from its open repair tickets
// and non-completed usage logs. Any open ticket forces maintenance; it
// dominates whatever the logs say. Otherwise the asset is in-use while any
// log spans now, else available.
//
// Both writers of Asset.status (the reconciliation engine and the ticket
// machine) consult this single function so the two code paths cannot
// silently diverge.
func ResolveAssetStatus(tickets []RepairTicket, logs []UsageLog, now time.Time) AssetStatus {
	for i := range tickets {
		if tickets[i].Open() {
			return AssetStatusMaintenance
		}
	}
	for i := range logs {
		if logs[i].OccupiesAt(now) {
			return AssetStatusInUse
		}
	}
	return AssetStatusAvailable
}
