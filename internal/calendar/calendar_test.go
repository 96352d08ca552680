package calendar

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const holidayYAML = `country: ID
holidays:
  - date: 2026-01-01
    name: New Year's Day
  - date: 2026-08-17
    name: Independence Day
  - date: 2027-08-17
    name: Independence Day
  - date: 2025-12-25
    name: Christmas Day
`

var now = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

func TestResolver_IsNonWorkingDay(t *testing.T) {
	r, err := Parse(strings.NewReader(holidayYAML), "ID", now)
	require.NoError(t, err)
	assert.False(t, r.Degraded())
	assert.Equal(t, 3, r.HolidayCount(), "holidays outside the current and next year are dropped")

	tests := []struct {
		when time.Time
		name string
		want bool
	}{
		{name: "monday", when: time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC), want: false},
		{name: "saturday", when: time.Date(2026, time.October, 24, 9, 0, 0, 0, time.UTC), want: true},
		{name: "sunday", when: time.Date(2026, time.October, 25, 23, 59, 0, 0, time.UTC), want: true},
		{name: "weekday holiday", when: time.Date(2026, time.August, 17, 8, 0, 0, 0, time.UTC), want: true},
		{name: "next year holiday", when: time.Date(2027, time.August, 17, 8, 0, 0, 0, time.UTC), want: true},
		{name: "holiday outside window", when: time.Date(2025, time.December, 25, 8, 0, 0, 0, time.UTC), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsNonWorkingDay(tt.when))
		})
	}

	name, ok := r.HolidayName(time.Date(2026, time.August, 17, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, "Independence Day", name)
}

func TestResolver_UsesWallClockDate(t *testing.T) {
	r, err := New("ID", now, []Holiday{{Date: "2026-08-17", Name: "Independence Day"}})
	require.NoError(t, err)

	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 00:30 local on the holiday is still 16 August in UTC.
	assert.True(t, r.IsNonWorkingDay(time.Date(2026, time.August, 17, 0, 30, 0, 0, jakarta)))
}

func TestLoad_Degrades(t *testing.T) {
	t.Run("no file configured", func(t *testing.T) {
		r, err := Load("", "ID", now)
		assert.ErrorIs(t, err, ErrNoHolidaySource)
		require.NotNil(t, r)
		assert.True(t, r.Degraded())
		assert.True(t, r.IsNonWorkingDay(time.Date(2026, time.October, 24, 0, 0, 0, 0, time.UTC)))
		assert.False(t, r.IsNonWorkingDay(time.Date(2026, time.August, 17, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("missing file", func(t *testing.T) {
		r, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), "ID", now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
		assert.True(t, r.Degraded())
	})

	t.Run("wrong country", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "holidays.yaml")
		require.NoError(t, os.WriteFile(path, []byte(holidayYAML), 0o600))

		r, err := Load(path, "SG", now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected \"SG\"")
		assert.True(t, r.Degraded())
	})

	t.Run("bad date", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "holidays.yaml")
		require.NoError(t, os.WriteFile(path, []byte("holidays:\n  - date: 17/08/2026\n"), 0o600))

		r, err := Load(path, "ID", now)
		require.Error(t, err)
		assert.True(t, r.Degraded())
	})
}

func TestLoad_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.yaml")
	require.NoError(t, os.WriteFile(path, []byte(holidayYAML), 0o600))

	r, err := Load(path, "id", now)
	require.NoError(t, err)
	assert.False(t, r.Degraded())
	assert.Equal(t, "ID", r.Country())
}
