package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayDelta(t *testing.T) {
	today := time.Date(2024, time.December, 11, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		want int
	}{
		{"two weeks out", "2024-12-25", 14},
		{"same day", "2024-12-11", 0},
		{"already passed", "2024-12-01", -10},
		{"across year boundary", "2025-01-01", 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Holiday{Date: tt.date}
			day, err := h.Day()
			require.NoError(t, err)
			assert.Equal(t, tt.want, DayDelta(day, today))
		})
	}
}

func TestToday_LocalDayDiffersFromUTC(t *testing.T) {
	// 23:30 UTC on Dec 10 is already Dec 11 in Tashkent (UTC+5).
	now := time.Date(2024, time.December, 10, 23, 30, 0, 0, time.UTC)

	tashkent, err := time.LoadLocation("Asia/Tashkent")
	require.NoError(t, err)

	assert.Equal(t, "2024-12-11", Today(now, tashkent).Format(DateLayout))
	assert.Equal(t, "2024-12-10", Today(now, time.UTC).Format(DateLayout))
}

func TestDedupKey(t *testing.T) {
	key := DedupKey(42, "DE", ModeCustom, "2024-12-25", 14)
	assert.Equal(t, "42-DE-custom-2024-12-25-14", key)

	// Modes alert independently for the same occurrence.
	assert.NotEqual(t, key, DedupKey(42, "DE", ModeBusiness, "2024-12-25", 14))
}

func TestUser_MutedOn(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse(DateLayout, s)
		require.NoError(t, err)
		return d
	}

	until := day("2024-06-10")
	u := &User{MuteUntil: &until}

	assert.True(t, u.MutedOn(day("2024-06-09")))
	assert.True(t, u.MutedOn(day("2024-06-10")), "mute window is inclusive")
	assert.False(t, u.MutedOn(day("2024-06-11")))
	assert.False(t, (&User{}).MutedOn(day("2024-06-10")))
}

func TestUser_Location_FallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, (&User{TZ: "Mars/Olympus"}).Location())
	assert.Equal(t, "Europe/Berlin", (&User{TZ: "Europe/Berlin"}).Location().String())
}

func TestPresetDays(t *testing.T) {
	assert.Equal(t, []int{14, 7, 3, 1}, PresetDays(PresetStandard))
	assert.Equal(t, []int{7, 1}, PresetDays(PresetWeekly))
	assert.Equal(t, []int{1}, PresetDays(PresetEve))
	assert.Equal(t, []int{14, 7, 3, 1}, PresetDays(""), "empty preset falls back to standard")
	assert.Equal(t, []int{14, 7, 3, 1}, PresetDays("bogus"))
}
