package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRoundsUpToWholeHours(t *testing.T) {
	// One hour and one second bills as two hours.
	snapshot := Compute(Input{
		StartISO:        "2026-01-01T00:00:00.000Z",
		EndISO:          "2026-01-01T01:00:01.000Z",
		HourlyRateCents: 1234,
	})
	require.NotNil(t, snapshot)
	assert.Equal(t, int64(2), snapshot.BillableHours)
	assert.Equal(t, int64(2468), snapshot.CostCents)
}

func TestComputeMinimumOneHour(t *testing.T) {
	snapshot := Compute(Input{
		StartISO:        "2026-01-01T00:00:00Z",
		EndISO:          "2026-01-01T00:00:01Z",
		HourlyRateCents: 100,
	})
	require.NotNil(t, snapshot)
	assert.Equal(t, int64(1), snapshot.BillableHours)
	assert.Equal(t, int64(100), snapshot.CostCents)
}

func TestComputeExactHourDoesNotRoundUp(t *testing.T) {
	snapshot := Compute(Input{
		StartISO:        "2026-01-01T00:00:00Z",
		EndISO:          "2026-01-01T03:00:00Z",
		HourlyRateCents: 250,
	})
	require.NotNil(t, snapshot)
	assert.Equal(t, int64(3), snapshot.BillableHours)
	assert.Equal(t, int64(750), snapshot.CostCents)
}

func TestComputeNonPositiveDurationIsZero(t *testing.T) {
	for name, in := range map[string]Input{
		"equal": {
			StartISO:        "2026-01-01T00:00:00Z",
			EndISO:          "2026-01-01T00:00:00Z",
			HourlyRateCents: 500,
		},
		"reversed": {
			StartISO:        "2026-01-02T00:00:00Z",
			EndISO:          "2026-01-01T00:00:00Z",
			HourlyRateCents: 500,
		},
	} {
		t.Run(name, func(t *testing.T) {
			snapshot := Compute(in)
			require.NotNil(t, snapshot)
			assert.Equal(t, int64(0), snapshot.BillableHours)
			assert.Equal(t, int64(0), snapshot.CostCents)
		})
	}
}

func TestComputeUnparseableDatesReturnNil(t *testing.T) {
	assert.Nil(t, Compute(Input{StartISO: "not-a-date", EndISO: "2026-01-01T00:00:00Z"}))
	assert.Nil(t, Compute(Input{StartISO: "2026-01-01T00:00:00Z", EndISO: ""}))
}

func TestComputeRateClampAndRounding(t *testing.T) {
	negative := Compute(Input{
		StartISO:        "2026-01-01T00:00:00Z",
		EndISO:          "2026-01-01T02:00:00Z",
		HourlyRateCents: -50,
	})
	require.NotNil(t, negative)
	assert.Equal(t, int64(0), negative.CostCents)

	fractional := Compute(Input{
		StartISO:        "2026-01-01T00:00:00Z",
		EndISO:          "2026-01-01T01:00:00Z",
		HourlyRateCents: 99.6,
	})
	require.NotNil(t, fractional)
	assert.Equal(t, int64(100), fractional.CostCents)
}

func TestComputeIsDeterministic(t *testing.T) {
	in := Input{
		StartISO:        "2026-03-15T08:30:00Z",
		EndISO:          "2026-03-15T11:45:00Z",
		HourlyRateCents: 777,
	}
	first := Compute(in)
	second := Compute(in)
	require.NotNil(t, first)
	assert.Equal(t, first, second)
}
