// Package billing holds the cost snapshot calculator. It is the single
// source of truth for billing math, shared by the live usage-log completion
// path and the batch backfill job.
package billing

import (
	"math"
	"time"
)

const millisPerHour = 3_600_000

// Input describes one completed occupancy interval to price.
type Input struct {
	StartISO        string
	EndISO          string
	HourlyRateCents float64
}

// Snapshot is the frozen billing result for an interval.
type Snapshot struct {
	BillableHours int64
	CostCents     int64
}

// Compute prices an interval. It returns nil when either timestamp fails to
// parse, and a zero snapshot when the duration is not positive. Elapsed time
// is always rounded up to whole hours, so any positive duration bills at
// least one hour. The rate is clamped to >= 0 and rounded to the nearest
// integer before multiplying.
//
// Pure and deterministic: identical inputs yield identical outputs.
func Compute(in Input) *Snapshot {
	start, err := time.Parse(time.RFC3339, in.StartISO)
	if err != nil {
		return nil
	}
	end, err := time.Parse(time.RFC3339, in.EndISO)
	if err != nil {
		return nil
	}

	durMs := end.Sub(start).Milliseconds()
	if durMs <= 0 {
		return &Snapshot{}
	}

	hours := (durMs + millisPerHour - 1) / millisPerHour

	rate := math.Round(in.HourlyRateCents)
	if rate < 0 {
		rate = 0
	}

	return &Snapshot{
		BillableHours: hours,
		CostCents:     hours * int64(rate),
	}
}
