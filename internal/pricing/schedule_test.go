package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandScheduleSingleDate(t *testing.T) {
	windows, err := ExpandSchedule(ScheduleInput{
		Mode: SelectSingle,
		Date: "2025-03-10",
		Time: TimePair{Start: "09:00", End: "13:00"},
	}, time.UTC)
	require.NoError(t, err)
	require.Len(t, windows, 1)

	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), windows[0].StartsAt)
	assert.Equal(t, time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC), windows[0].EndsAt)
	assert.Equal(t, 4*time.Hour, windows[0].Duration())
}

func TestExpandScheduleRangeSameForAll(t *testing.T) {
	windows, err := ExpandSchedule(ScheduleInput{
		Mode:      SelectRange,
		StartDate: "2025-03-10",
		EndDate:   "2025-03-12",
		TimeMode:  TimeSameForAll,
		Time:      TimePair{Start: "09:00", End: "11:00"},
	}, time.UTC)
	require.NoError(t, err)
	require.Len(t, windows, 3, "inclusive range must expand to one window per day")

	for i, day := range []int{10, 11, 12} {
		assert.Equal(t, time.Date(2025, 3, day, 9, 0, 0, 0, time.UTC), windows[i].StartsAt)
		assert.Equal(t, 2*time.Hour, windows[i].Duration())
	}
}

func TestExpandScheduleMultiplePerEntry(t *testing.T) {
	windows, err := ExpandSchedule(ScheduleInput{
		Mode:     SelectMultiple,
		Dates:    []string{"2025-03-14", "2025-03-10"},
		TimeMode: TimePerEntry,
		Times: []TimePair{
			{Start: "14:00", End: "16:30"},
			{Start: "09:00", End: "10:00"},
		},
	}, time.UTC)
	require.NoError(t, err)
	require.Len(t, windows, 2)

	// Output is chronological regardless of input order.
	assert.True(t, windows[0].StartsAt.Before(windows[1].StartsAt))
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), windows[0].StartsAt)
}

func TestExpandSchedulePerEntryCountMismatch(t *testing.T) {
	_, err := ExpandSchedule(ScheduleInput{
		Mode:     SelectMultiple,
		Dates:    []string{"2025-03-10", "2025-03-11"},
		TimeMode: TimePerEntry,
		Times:    []TimePair{{Start: "09:00", End: "10:00"}},
	}, time.UTC)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "requires 2 time pairs")
}

func TestExpandScheduleRejectsInvertedRange(t *testing.T) {
	_, err := ExpandSchedule(ScheduleInput{
		Mode:      SelectRange,
		StartDate: "2025-03-12",
		EndDate:   "2025-03-10",
		Time:      TimePair{Start: "09:00", End: "10:00"},
	}, time.UTC)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestExpandScheduleRejectsEndBeforeStartTime(t *testing.T) {
	_, err := ExpandSchedule(ScheduleInput{
		Mode: SelectSingle,
		Date: "2025-03-10",
		Time: TimePair{Start: "13:00", End: "09:00"},
	}, time.UTC)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestExpandScheduleDeduplicatesIdenticalWindows(t *testing.T) {
	windows, err := ExpandSchedule(ScheduleInput{
		Mode:     SelectMultiple,
		Dates:    []string{"2025-03-10", "2025-03-10"},
		TimeMode: TimeSameForAll,
		Time:     TimePair{Start: "09:00", End: "10:00"},
	}, time.UTC)
	require.NoError(t, err)
	assert.Len(t, windows, 1)
}

func TestExpandScheduleRejectsOverlap(t *testing.T) {
	_, err := ExpandSchedule(ScheduleInput{
		Mode:     SelectMultiple,
		Dates:    []string{"2025-03-10", "2025-03-10"},
		TimeMode: TimePerEntry,
		Times: []TimePair{
			{Start: "09:00", End: "12:00"},
			{Start: "11:00", End: "13:00"},
		},
	}, time.UTC)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "overlap")
}

func TestExpandScheduleAllowsAdjacentWindows(t *testing.T) {
	windows, err := ExpandSchedule(ScheduleInput{
		Mode:     SelectMultiple,
		Dates:    []string{"2025-03-10", "2025-03-10"},
		TimeMode: TimePerEntry,
		Times: []TimePair{
			{Start: "09:00", End: "11:00"},
			{Start: "11:00", End: "13:00"},
		},
	}, time.UTC)
	require.NoError(t, err)
	assert.Len(t, windows, 2)
}

func TestExpandScheduleInvalidInputs(t *testing.T) {
	cases := []struct {
		name string
		in   ScheduleInput
	}{
		{"unknown mode", ScheduleInput{Mode: "WEEKLY"}},
		{"missing single date", ScheduleInput{Mode: SelectSingle}},
		{"bad date format", ScheduleInput{Mode: SelectSingle, Date: "03/10/2025", Time: TimePair{Start: "09:00", End: "10:00"}}},
		{"bad time format", ScheduleInput{Mode: SelectSingle, Date: "2025-03-10", Time: TimePair{Start: "9am", End: "10:00"}}},
		{"empty dates list", ScheduleInput{Mode: SelectMultiple}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExpandSchedule(tc.in, time.UTC)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}
