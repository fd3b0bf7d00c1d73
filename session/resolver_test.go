package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jan112121/attendance-backend/models"
)

func defaultTimes() Times {
	return Times{
		MorningOpen:            "06:00",
		MorningLateAfter:       "07:00",
		MorningTimeoutEarliest: "11:30",
		MorningClose:           "12:00",

		AfternoonOpen:            "12:30",
		AfternoonLateAfter:       "13:00",
		AfternoonTimeoutEarliest: "17:30",
		AfternoonClose:           "18:00",
	}
}

func manila(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	return loc
}

func at(loc *time.Location, hour, min int) time.Time {
	return time.Date(2025, 3, 3, hour, min, 0, 0, loc)
}

func TestResolveMorningWindow(t *testing.T) {
	loc := manila(t)
	r, err := New(loc, defaultTimes())
	require.NoError(t, err)

	win, ok := r.Resolve(at(loc, 6, 55))
	require.True(t, ok)
	assert.Equal(t, models.SessionMorning, win.Session)
	assert.Equal(t, at(loc, 7, 0), win.LateAfter)
	assert.Equal(t, at(loc, 11, 30), win.EarliestOut)
	assert.Equal(t, at(loc, 12, 0), win.Close)
}

func TestResolveAfternoonWindow(t *testing.T) {
	loc := manila(t)
	r, err := New(loc, defaultTimes())
	require.NoError(t, err)

	win, ok := r.Resolve(at(loc, 14, 10))
	require.True(t, ok)
	assert.Equal(t, models.SessionAfternoon, win.Session)
	assert.Equal(t, at(loc, 13, 0), win.LateAfter)
	assert.Equal(t, at(loc, 17, 30), win.EarliestOut)
}

func TestResolveClosed(t *testing.T) {
	loc := manila(t)
	r, err := New(loc, defaultTimes())
	require.NoError(t, err)

	for _, tc := range []struct {
		name string
		when time.Time
	}{
		{"before morning open", at(loc, 5, 59)},
		{"between sessions", at(loc, 12, 15)},
		{"after afternoon close", at(loc, 18, 0)},
		{"late night", at(loc, 23, 30)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := r.Resolve(tc.when)
			assert.False(t, ok)
		})
	}
}

func TestResolveBoundaries(t *testing.T) {
	loc := manila(t)
	r, err := New(loc, defaultTimes())
	require.NoError(t, err)

	// Open boundary is inclusive, close boundary exclusive.
	win, ok := r.Resolve(at(loc, 6, 0))
	require.True(t, ok)
	assert.Equal(t, models.SessionMorning, win.Session)

	_, ok = r.Resolve(at(loc, 12, 0))
	assert.False(t, ok)

	win, ok = r.Resolve(at(loc, 12, 30))
	require.True(t, ok)
	assert.Equal(t, models.SessionAfternoon, win.Session)
}

func TestResolveConvertsForeignTimezone(t *testing.T) {
	loc := manila(t)
	r, err := New(loc, defaultTimes())
	require.NoError(t, err)

	// 22:55 UTC the previous day is 06:55 in Manila.
	utc := time.Date(2025, 3, 2, 22, 55, 0, 0, time.UTC)
	win, ok := r.Resolve(utc)
	require.True(t, ok)
	assert.Equal(t, models.SessionMorning, win.Session)
	assert.Equal(t, "2025-03-03", r.Date(utc))
	assert.Equal(t, "06:55:00", r.Clock(utc))
}

func TestNewRejectsBadConfig(t *testing.T) {
	loc := manila(t)

	bad := defaultTimes()
	bad.MorningLateAfter = "05:00" // before open
	_, err := New(loc, bad)
	assert.Error(t, err)

	bad = defaultTimes()
	bad.AfternoonOpen = "11:00" // overlaps morning
	_, err = New(loc, bad)
	assert.Error(t, err)

	bad = defaultTimes()
	bad.MorningOpen = "6am"
	_, err = New(loc, bad)
	assert.Error(t, err)
}
